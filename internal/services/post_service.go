// Package services – PostService
//
// This file implements PostService, the mutation coordinator and read-through
// layer over the entity cache. It is the only component that calls
// create/update/delete against the upstream store, and the only component
// that writes cache entries as a result.
//
// Ordering guarantee: for a single mutation, the cache transaction and the
// journal append run only after upstream confirmation, under one mutex, so
// no reader observes a list updated without its detail entry (or vice
// versa). Concurrent mutations on the same id are resolved last-response-
// wins by completion order; there is no per-entity version guard.
//
// Reads are stale-while-revalidate: a stale cache hit is returned
// immediately and a refetch runs in the background. A failed refetch leaves
// the cached value intact and is only logged.
//
// Observability: public methods are OpenTelemetry-instrumented; spans carry
// post identifiers where applicable.
package services

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog/log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/nrjbwj/postforge/internal/cache"
	"github.com/nrjbwj/postforge/internal/domain"
	"github.com/nrjbwj/postforge/internal/upstream"
)

// PostService coordinates reads and mutations of the post collection.
type PostService struct {
	Client   upstream.Client
	Cache    *cache.Store
	Activity *ActivityLog

	// ListKey names the cache slot for the full collection; empty falls
	// back to cache.DefaultListKey.
	ListKey string

	// mu serializes every post-confirmation cache update + journal append.
	mu sync.Mutex

	listRefreshing   atomic.Bool
	detailRefreshing sync.Map // post id -> struct{}
}

func (s *PostService) listKey() string {
	if s.ListKey == "" {
		return cache.DefaultListKey
	}
	return s.ListKey
}

// validate rejects inputs before any network call.
func validate(title, body string, userID int) error {
	if strings.TrimSpace(title) == "" {
		return ErrEmptyTitle
	}
	if strings.TrimSpace(body) == "" {
		return ErrEmptyBody
	}
	if userID < 1 {
		return ErrInvalidUserID
	}
	return nil
}

// List returns the post collection. Fresh cache hits are served directly; a
// stale hit is served immediately while a background refetch refreshes the
// slot; a miss fetches synchronously.
func (s *PostService) List(ctx context.Context) ([]domain.Post, error) {
	tr := otel.Tracer("services/PostService")
	ctx, span := tr.Start(ctx, "List")
	defer span.End()

	posts, stale, ok := s.Cache.GetList(s.listKey())
	if ok {
		span.SetAttributes(attribute.Bool("cache.hit", true), attribute.Bool("cache.stale", stale))
		if stale {
			s.refreshListAsync(ctx)
		}
		return posts, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	fetched, err := s.Client.ListPosts(ctx)
	if err != nil {
		return nil, err
	}
	s.Cache.SetList(s.listKey(), fetched)
	return fetched, nil
}

// refreshListAsync refetches the list slot in the background. At most one
// refresh is in flight at a time; failures are logged and the previous
// value stays usable.
func (s *PostService) refreshListAsync(ctx context.Context) {
	if !s.listRefreshing.CompareAndSwap(false, true) {
		return
	}
	// Detach from the caller: the view that triggered the refresh may be
	// gone before it completes.
	bg := context.WithoutCancel(ctx)
	go func() {
		defer s.listRefreshing.Store(false)
		fetched, err := s.Client.ListPosts(bg)
		if err != nil {
			log.Warn().Err(err).Msg("background list refresh failed; serving stale cache")
			return
		}
		s.Cache.SetList(s.listKey(), fetched)
	}()
}

// Get returns one post by id, with the same cache semantics as List.
func (s *PostService) Get(ctx context.Context, id int) (*domain.Post, error) {
	tr := otel.Tracer("services/PostService")
	ctx, span := tr.Start(ctx, "Get", trace.WithAttributes(attribute.Int("post.id", id)))
	defer span.End()

	p, stale, ok := s.Cache.GetDetail(id)
	if ok {
		span.SetAttributes(attribute.Bool("cache.hit", true), attribute.Bool("cache.stale", stale))
		if stale {
			s.refreshDetailAsync(ctx, id)
		}
		return &p, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	fetched, err := s.Client.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	s.Cache.SetDetail(fetched.ID, *fetched)
	return fetched, nil
}

// refreshDetailAsync refetches one detail entry in the background, one
// in-flight refresh per id.
func (s *PostService) refreshDetailAsync(ctx context.Context, id int) {
	if _, loaded := s.detailRefreshing.LoadOrStore(id, struct{}{}); loaded {
		return
	}
	bg := context.WithoutCancel(ctx)
	go func() {
		defer s.detailRefreshing.Delete(id)
		fetched, err := s.Client.GetPost(bg, id)
		if err != nil {
			log.Warn().Err(err).Int("post_id", id).Msg("background detail refresh failed; serving stale cache")
			return
		}
		s.Cache.SetDetail(fetched.ID, *fetched)
	}()
}

// Comments fetches the comments for a post. Comments are read-only and not
// cached; this is a plain pass-through to the upstream store.
func (s *PostService) Comments(ctx context.Context, postID int) ([]domain.Comment, error) {
	tr := otel.Tracer("services/PostService")
	ctx, span := tr.Start(ctx, "Comments", trace.WithAttributes(attribute.Int("post.id", postID)))
	defer span.End()

	return s.Client.ListComments(ctx, postID)
}

// Create validates the input, creates the post upstream, and on success
// inserts it at the front of the cached list, syncs the detail entry, and
// journals a create event. On failure the cache and journal are untouched
// and the error is returned; the operation is not retried.
func (s *PostService) Create(ctx context.Context, in upstream.CreatePostInput) (*domain.Post, error) {
	tr := otel.Tracer("services/PostService")
	ctx, span := tr.Start(ctx, "Create", trace.WithAttributes(attribute.Int("user.id", in.UserID)))
	defer span.End()

	if err := validate(in.Title, in.Body, in.UserID); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Body = strings.TrimSpace(in.Body)

	created, err := s.Client.CreatePost(ctx, in)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.Cache.UpsertIntoList(s.listKey(), *created, cache.Front)
	s.Activity.Append(ctx, domain.ActivityCreate, created.ID, created.Title)
	s.mu.Unlock()

	span.SetAttributes(attribute.Int("post.id", created.ID))
	return created, nil
}

// Update validates the input, replaces the post upstream, and on success
// replaces the cached list entry in place (position preserved), syncs the
// detail entry, and journals an edit event carrying the returned title —
// the authoritative post-mutation state.
func (s *PostService) Update(ctx context.Context, in upstream.UpdatePostInput) (*domain.Post, error) {
	tr := otel.Tracer("services/PostService")
	ctx, span := tr.Start(ctx, "Update", trace.WithAttributes(attribute.Int("post.id", in.ID)))
	defer span.End()

	if err := validate(in.Title, in.Body, in.UserID); err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	in.Body = strings.TrimSpace(in.Body)

	updated, err := s.Client.UpdatePost(ctx, in)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.Cache.UpsertIntoList(s.listKey(), *updated, cache.InPlace)
	s.Activity.Append(ctx, domain.ActivityEdit, updated.ID, updated.Title)
	s.mu.Unlock()

	return updated, nil
}

// Delete captures the post's current title (so the journal keeps a readable
// name for an entity that is about to disappear), deletes upstream, and on
// success removes the list and detail entries and journals a delete event.
// On failure the captured title is discarded and the cache is untouched.
func (s *PostService) Delete(ctx context.Context, id int) error {
	tr := otel.Tracer("services/PostService")
	ctx, span := tr.Start(ctx, "Delete", trace.WithAttributes(attribute.Int("post.id", id)))
	defer span.End()

	title := s.captureTitle(ctx, id)

	if err := s.Client.DeletePost(ctx, id); err != nil {
		return err
	}

	s.mu.Lock()
	s.Cache.RemoveFromList(s.listKey(), id)
	s.Cache.RemoveDetail(id)
	s.Activity.Append(ctx, domain.ActivityDelete, id, title)
	s.mu.Unlock()

	return nil
}

// captureTitle resolves the current title of id: detail cache first, then
// the cached list, then a best-effort upstream lookup. An unresolvable
// title stays empty rather than blocking the delete.
func (s *PostService) captureTitle(ctx context.Context, id int) string {
	if p, _, ok := s.Cache.GetDetail(id); ok {
		return p.Title
	}
	if posts, _, ok := s.Cache.GetList(s.listKey()); ok {
		for _, p := range posts {
			if p.ID == id {
				return p.Title
			}
		}
	}
	if p, err := s.Client.GetPost(ctx, id); err == nil {
		return p.Title
	}
	return ""
}
