// Post HTTP handlers.
//
// This file exposes the REST endpoints for the post collection:
//   - GET    /posts                (filtered, paginated view of the cache)
//   - POST   /posts                (create, idempotency-key aware)
//   - GET    /posts/{id}           (detail)
//   - PUT    /posts/{id}           (full replacement)
//   - DELETE /posts/{id}           (delete)
//   - GET    /posts/{id}/comments  (read-only pass-through)
//
// Handlers are transport-thin: they validate input, call the post service,
// and translate results into HTTP responses. Filtering and pagination are
// applied here, over the service's cached list, so the view parameters never
// leak into the cache layer.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nrjbwj/postforge/internal/domain"
	"github.com/nrjbwj/postforge/internal/http/middleware"
	"github.com/nrjbwj/postforge/internal/query"
	"github.com/nrjbwj/postforge/internal/repo"
	"github.com/nrjbwj/postforge/internal/services"
	"github.com/nrjbwj/postforge/internal/upstream"
	"github.com/nrjbwj/postforge/internal/utils"
)

//
// Service contracts (context-aware)
//

// PostService defines the post operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type PostService interface {
	// List returns the post collection, served from cache when possible.
	List(ctx context.Context) ([]domain.Post, error)
	// Get returns one post by id, served from cache when possible.
	Get(ctx context.Context, id int) (*domain.Post, error)
	// Comments returns the comments for a post (never cached).
	Comments(ctx context.Context, postID int) ([]domain.Comment, error)
	// Create makes a new post and records it in cache and journal.
	Create(ctx context.Context, in upstream.CreatePostInput) (*domain.Post, error)
	// Update replaces a post and records it in cache and journal.
	Update(ctx context.Context, in upstream.UpdatePostInput) (*domain.Post, error)
	// Delete removes a post from the store, cache, and records the event.
	Delete(ctx context.Context, id int) error
}

// ActivityService exposes the mutation journal to read endpoints.
type ActivityService interface {
	// List returns journal entries, newest first.
	List() []domain.Activity
	// Len reports the number of retained entries.
	Len() int
}

//
// Handler wiring
//

// Options carries handler-level tunables resolved from configuration.
type Options struct {
	// PageSize is the default list page size when the client omits one.
	PageSize int
	// DefaultUserID is assigned to created posts without an explicit author.
	DefaultUserID int
	// IdempotencyDB enables durable create deduplication when non-nil.
	IdempotencyDB *gorm.DB
	// IdempotencyTTL bounds how long a recorded create is replayable.
	IdempotencyTTL time.Duration
}

// Handlers groups the HTTP endpoints for posts and the activity journal.
// It depends on abstract service interfaces to keep transport concerns
// separate from the coordination logic.
type Handlers struct {
	posts    PostService
	activity ActivityService
	opt      Options
}

// New constructs a Handlers instance bound to the given services.
func New(posts PostService, activity ActivityService, opt Options) *Handlers {
	if opt.PageSize < 1 {
		opt.PageSize = query.DefaultPageSize
	}
	if opt.DefaultUserID < 1 {
		opt.DefaultUserID = 1
	}
	if opt.IdempotencyTTL <= 0 {
		opt.IdempotencyTTL = 24 * time.Hour
	}
	return &Handlers{posts: posts, activity: activity, opt: opt}
}

//
// DTOs
//

// PostPayload is the JSON body for create and update requests.
type PostPayload struct {
	// Title is the post headline. Required, non-blank.
	Title string `json:"title" example:"hello world"`
	// Body is the post text. Required, non-blank.
	Body string `json:"body" example:"first!"`
	// UserID is the author; a server-side default applies when omitted.
	UserID int `json:"userId" example:"1"`
}

//
// Helpers
//

// maxPageSize caps client-requested page sizes.
const maxPageSize = 100

// postID parses the :id path parameter. A non-integer id is a client error,
// reported before any service call.
func postID(c *gin.Context) (int, bool) {
	id := utils.AtoiDefault(c.Param("id"), 0)
	if id < 1 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "post id must be a positive integer")
		return 0, false
	}
	return id, true
}

// failService translates service and upstream errors into HTTP responses:
// validation sentinels become 400s, a missing post a 404, and everything
// else a 502 because the authoritative store could not confirm the request.
func failService(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyTitle),
		errors.Is(err, services.ErrEmptyBody),
		errors.Is(err, services.ErrInvalidUserID):
		fail(c, http.StatusBadRequest, ErrCodeValidationFailed, err.Error())
	case errors.Is(err, upstream.ErrNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "post not found")
	default:
		fail(c, http.StatusBadGateway, ErrCodeUpstreamFailed, err.Error())
	}
}

//
// Handlers
//

// ListPosts returns the filtered, paginated post view.
//
// Query parameters: q (case-insensitive substring over title, body, and id),
// page (1-based), page_size. A page past the end of the filtered sequence is
// a valid, empty page.
func (h *Handlers) ListPosts(c *gin.Context) {
	posts, err := h.posts.List(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}

	filtered := query.Filter(posts, c.Query("q"))
	page := utils.AtoiDefault(c.Query("page"), 1)
	pageSize := utils.ClampInt(utils.AtoiDefault(c.Query("page_size"), h.opt.PageSize), 1, maxPageSize)

	ok(c, http.StatusOK, query.Paginate(filtered, page, pageSize))
}

// GetPost returns one post by id.
func (h *Handlers) GetPost(c *gin.Context) {
	id, valid := postID(c)
	if !valid {
		return
	}
	p, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, p)
}

// ListComments returns the comments for a post.
func (h *Handlers) ListComments(c *gin.Context) {
	id, valid := postID(c)
	if !valid {
		return
	}
	comments, err := h.posts.Comments(c.Request.Context(), id)
	if err != nil {
		failService(c, err)
		return
	}
	if comments == nil {
		comments = []domain.Comment{}
	}
	ok(c, http.StatusOK, comments)
}

// CreatePost creates a post. When the request carries an Idempotency-Key
// already recorded for this user, the stored result is replayed with a 200
// instead of re-running the mutation.
func (h *Handlers) CreatePost(c *gin.Context) {
	ctx := c.Request.Context()

	if replayed := h.tryReplay(c); replayed {
		return
	}

	var req PostPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == 0 {
		req.UserID = h.opt.DefaultUserID
	}

	created, err := h.posts.Create(ctx, upstream.CreatePostInput{
		Title:  req.Title,
		Body:   req.Body,
		UserID: req.UserID,
	})
	if err != nil {
		failService(c, err)
		return
	}

	h.recordIdempotency(c, created.ID, http.StatusCreated)
	ok(c, http.StatusCreated, created)
}

// tryReplay serves a previously recorded create for the same idempotency key
// and reports whether it did. Lookup failures fall through to a normal
// create; deduplication is best-effort, the mutation path stays available.
func (h *Handlers) tryReplay(c *gin.Context) bool {
	if h.opt.IdempotencyDB == nil || !middleware.IsReplay(c) {
		return false
	}
	key, hasKey := middleware.GetIdempotencyKey(c)
	if !hasKey {
		return false
	}

	ctx := c.Request.Context()
	rec, err := repo.GetIdempotency(ctx, h.opt.IdempotencyDB, userID(c), key, time.Now().UTC())
	if err != nil {
		return false
	}
	p, err := h.posts.Get(ctx, rec.PostID)
	if err != nil {
		return false
	}

	c.Header("Idempotency-Replayed", "true")
	ok(c, http.StatusOK, p)
	return true
}

// recordIdempotency persists the create result for future replays. Failures
// (including a concurrent duplicate) are logged, never surfaced: the post
// was created, the response must say so.
func (h *Handlers) recordIdempotency(c *gin.Context, createdID, status int) {
	if h.opt.IdempotencyDB == nil {
		return
	}
	key, hasKey := middleware.GetIdempotencyKey(c)
	if !hasKey {
		return
	}
	_, err := repo.CreateIdempotency(c.Request.Context(), h.opt.IdempotencyDB,
		userID(c), key, createdID, status, h.opt.IdempotencyTTL)
	if err != nil && !errors.Is(err, repo.ErrDuplicate) {
		middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency record failed")
	}
}

// UpdatePost replaces a post with the full payload.
func (h *Handlers) UpdatePost(c *gin.Context) {
	id, valid := postID(c)
	if !valid {
		return
	}

	var req PostPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	if req.UserID == 0 {
		req.UserID = h.opt.DefaultUserID
	}

	updated, err := h.posts.Update(c.Request.Context(), upstream.UpdatePostInput{
		ID:     id,
		Title:  req.Title,
		Body:   req.Body,
		UserID: req.UserID,
	})
	if err != nil {
		failService(c, err)
		return
	}
	ok(c, http.StatusOK, updated)
}

// DeletePost removes a post.
func (h *Handlers) DeletePost(c *gin.Context) {
	id, valid := postID(c)
	if !valid {
		return
	}
	if err := h.posts.Delete(c.Request.Context(), id); err != nil {
		failService(c, err)
		return
	}
	noContent(c)
}

// userID extracts the user identity set by upstream middleware, falling back
// to the "X-User-ID" header (tests use it) and finally to "demo-user".
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := c.GetHeader("X-User-ID"); h != "" {
			return h
		}
	}
	return "demo-user"
}
