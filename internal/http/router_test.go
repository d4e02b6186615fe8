package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/nrjbwj/postforge/internal/cache"
	"github.com/nrjbwj/postforge/internal/config"
	"github.com/nrjbwj/postforge/internal/domain"
	"github.com/nrjbwj/postforge/internal/query"
	"github.com/nrjbwj/postforge/internal/services"
	"github.com/nrjbwj/postforge/internal/upstream"
)

// --- test DB helper (pure-Go sqlite, no CGO) ---
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:routerdb_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.Activity{}, &domain.Idempotency{}); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newTestDeps(db *gorm.DB) Deps {
	store := upstream.NewMemoryStore([]domain.Post{
		{ID: 1, Title: "hello world", Body: "first", UserID: 1},
		{ID: 2, Title: "second post", Body: "say hello", UserID: 1},
		{ID: 3, Title: "third", Body: "unrelated", UserID: 2},
	})
	svc := &services.PostService{
		Client:   store,
		Cache:    cache.New(time.Minute),
		Activity: services.NewActivityLog(50, db),
	}
	return Deps{Posts: svc, Activity: svc.Activity, DB: db}
}

func testConfig() config.Config {
	return config.Config{
		APIBasePath:    "/api/v1",
		PageSize:       10,
		DefaultUserID:  1,
		RateRPS:        100,
		RateBurst:      50,
		IdempotencyTTL: time.Hour,
		CORS:           config.CORSConfig{AllowedOrigins: nil}, // AllowAllOrigins branch
		Security:       config.SecurityConfig{EnableHSTS: false},
		OTEL:           config.OTELConfig{ServiceName: "test-svc"},
	}
}

func TestRegisterRoutes_Health_Metrics_Fallbacks(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, newTestDeps(nil), testConfig())

	// /health works
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	// CORS (AllowAllOrigins) → header "*"
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("AllowAllOrigins expected '*', got %q", got)
	}

	// /metrics is wired
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/metrics", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK || w.Body.Len() == 0 {
		t.Fatalf("GET /metrics bad: code=%d len=%d", w.Code, w.Body.Len())
	}

	// NoRoute → 404
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/nope", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("GET /nope expected 404, got %d", w.Code)
	}

	// NoMethod → 405 (POST /health)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/health", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("POST /health expected 405, got %d", w.Code)
	}
}

func TestRegisterRoutes_CORSWithOrigins_HeaderEcho(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cfg := testConfig()
	cfg.CORS.AllowedOrigins = []string{"http://example.com"}
	RegisterRoutes(r, newTestDeps(nil), cfg)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://example.com")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health = %d", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://example.com" {
		t.Fatalf("origin echo = %q", got)
	}
}

func TestRegisterRoutes_PostsEndToEnd(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	db := newTestDB(t)
	RegisterRoutes(r, newTestDeps(db), testConfig())

	// List through the full stack.
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/posts?q=hello", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("GET /api/v1/posts = %d body=%s", w.Code, w.Body.String())
	}
	var page query.Page
	if err := json.Unmarshal(w.Body.Bytes(), &page); err != nil {
		t.Fatalf("json: %v", err)
	}
	if page.Total != 2 {
		t.Fatalf("filtered total = %d", page.Total)
	}

	// Create with an idempotency key, then replay it.
	body := `{"title":"router","body":"end to end","userId":1}`
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/posts", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "router-key-1")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create = %d body=%s", w.Code, w.Body.String())
	}
	var created domain.Post
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("json: %v", err)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/posts", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotency-Key", "router-key-1")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("replay = %d body=%s", w.Code, w.Body.String())
	}
	if w.Header().Get("Idempotency-Replayed") != "true" {
		t.Fatalf("missing replay header")
	}
	var replayed domain.Post
	if err := json.Unmarshal(w.Body.Bytes(), &replayed); err != nil {
		t.Fatalf("json: %v", err)
	}
	if replayed.ID != created.ID {
		t.Fatalf("replay id = %d, want %d", replayed.ID, created.ID)
	}

	// Journal is visible and persisted.
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/v1/activity", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("activity = %d", w.Code)
	}
	var entries []domain.Activity
	if err := db.Order("created_at desc").Find(&entries).Error; err != nil {
		t.Fatalf("journal query: %v", err)
	}
	if len(entries) != 1 || entries[0].Type != domain.ActivityCreate {
		t.Fatalf("persisted journal: %+v", entries)
	}
}

func TestRegisterRoutes_RateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	cfg := testConfig()
	cfg.RateRPS = 0 // no refill: only the initial burst is served
	cfg.RateBurst = 1
	RegisterRoutes(r, newTestDeps(nil), cfg)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("first request = %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("second request = %d, want 429", w.Code)
	}
	if w.Header().Get("Retry-After") == "" {
		t.Fatalf("missing Retry-After")
	}
}
