package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/nrjbwj/postforge/internal/domain"
)

func newClient(t *testing.T, h http.Handler) (*HTTPClient, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL, 5*time.Second, 1), srv
}

func TestHTTPClient_ListPosts(t *testing.T) {
	want := []domain.Post{{ID: 1, Title: "a", Body: "b", UserID: 1}}
	c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/posts" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		json.NewEncoder(w).Encode(want)
	}))

	got, err := c.ListPosts(context.Background())
	if err != nil {
		t.Fatalf("ListPosts: %v", err)
	}
	if len(got) != 1 || got[0] != want[0] {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestHTTPClient_GetPost_NotFound(t *testing.T) {
	c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))

	_, err := c.GetPost(context.Background(), 99)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHTTPClient_GetPost_RetriesOn5xx(t *testing.T) {
	var hits int32
	c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(domain.Post{ID: 7, Title: "t", Body: "b", UserID: 1})
	}))

	got, err := c.GetPost(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetPost after retry: %v", err)
	}
	if got.ID != 7 {
		t.Fatalf("got %+v", got)
	}
	if n := atomic.LoadInt32(&hits); n != 2 {
		t.Fatalf("expected 2 attempts, got %d", n)
	}
}

func TestHTTPClient_CreatePost_NoRetry(t *testing.T) {
	var hits int32
	c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := c.CreatePost(context.Background(), CreatePostInput{Title: "t", Body: "b", UserID: 1})
	var se *StatusError
	if !errors.As(err, &se) || se.Code != http.StatusInternalServerError {
		t.Fatalf("expected StatusError 500, got %v", err)
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("mutation retried: %d attempts", n)
	}
}

func TestHTTPClient_UpdatePost_SendsFullPayload(t *testing.T) {
	c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut || r.URL.Path != "/posts/3" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		var in UpdatePostInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Errorf("decode body: %v", err)
		}
		if in.ID != 3 || in.Title != "new" {
			t.Errorf("payload %+v", in)
		}
		json.NewEncoder(w).Encode(domain.Post{ID: in.ID, Title: in.Title, Body: in.Body, UserID: in.UserID})
	}))

	got, err := c.UpdatePost(context.Background(), UpdatePostInput{ID: 3, Title: "new", Body: "b", UserID: 2})
	if err != nil {
		t.Fatalf("UpdatePost: %v", err)
	}
	if got.Title != "new" {
		t.Fatalf("got %+v", got)
	}
}

func TestHTTPClient_DeletePost(t *testing.T) {
	c, _ := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/posts/4" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusOK)
	}))

	if err := c.DeletePost(context.Background(), 4); err != nil {
		t.Fatalf("DeletePost: %v", err)
	}
}

func TestMemoryStore_CreateAssignsMaxPlusOne(t *testing.T) {
	m := NewMemoryStore([]domain.Post{{ID: 5, Title: "a", Body: "b", UserID: 1}, {ID: 2, Title: "c", Body: "d", UserID: 1}})

	p, err := m.CreatePost(context.Background(), CreatePostInput{Title: "new", Body: "nb", UserID: 1})
	if err != nil {
		t.Fatalf("CreatePost: %v", err)
	}
	if p.ID != 6 {
		t.Fatalf("id = %d, want 6 (max+1)", p.ID)
	}
}

func TestMemoryStore_FailNext(t *testing.T) {
	m := NewMemoryStore(nil)
	boom := errors.New("boom")
	m.FailNext(boom)

	if _, err := m.ListPosts(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected injected failure, got %v", err)
	}
	// Failure is consumed; next call succeeds.
	if _, err := m.ListPosts(context.Background()); err != nil {
		t.Fatalf("second call: %v", err)
	}
	if m.Calls("ListPosts") != 2 {
		t.Fatalf("call count = %d, want 2", m.Calls("ListPosts"))
	}
}

func TestMemoryStore_UpdateDeleteNotFound(t *testing.T) {
	m := NewMemoryStore(nil)
	if _, err := m.UpdatePost(context.Background(), UpdatePostInput{ID: 1, Title: "t", Body: "b", UserID: 1}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("update: expected ErrNotFound, got %v", err)
	}
	if err := m.DeletePost(context.Background(), 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("delete: expected ErrNotFound, got %v", err)
	}
}
