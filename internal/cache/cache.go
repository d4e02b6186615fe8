// Package cache implements the in-memory entity cache that reconciles the
// independently fetched list and detail views of the post collection. It is
// the single source of truth for what the dashboard currently believes about
// posts.
//
// The store keeps named list slots (e.g. "posts") and per-id detail entries,
// each with a freshness timestamp. A value older than the configured
// staleness threshold is still returned (stale-while-revalidate); deciding
// whether to refetch is the caller's concern. All methods are safe for
// concurrent use; writes take the lock for the full list+detail transaction
// so no reader observes a half-applied mutation.
package cache

import (
	"sync"
	"time"

	"github.com/nrjbwj/postforge/internal/domain"
)

// Position selects where UpsertIntoList places a post.
type Position int

const (
	// Front inserts a new post at the head of the list. Used for create,
	// which must change list order (newest first).
	Front Position = iota
	// InPlace replaces an existing entry without reordering. Used for
	// update, which must not move the post.
	InPlace
)

// DefaultListKey is the slot name under which the full post collection is
// cached.
const DefaultListKey = "posts"

type listEntry struct {
	posts     []domain.Post
	fetchedAt time.Time
}

type detailEntry struct {
	post      domain.Post
	fetchedAt time.Time
}

// Store is the entity cache. Construct with New; the zero value is not usable.
type Store struct {
	mu         sync.RWMutex
	staleAfter time.Duration
	now        func() time.Time

	lists   map[string]*listEntry
	details map[int]*detailEntry
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the time source. Tests use it to control freshness.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns an empty Store whose entries become stale after staleAfter.
// A non-positive staleAfter falls back to one minute.
func New(staleAfter time.Duration, opts ...Option) *Store {
	if staleAfter <= 0 {
		staleAfter = time.Minute
	}
	s := &Store{
		staleAfter: staleAfter,
		now:        time.Now,
		lists:      make(map[string]*listEntry),
		details:    make(map[int]*detailEntry),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// GetList returns the cached list under key. ok is false when the slot was
// never set; stale reports whether the entry has outlived the staleness
// threshold. The returned slice is a copy and safe to retain.
func (s *Store) GetList(key string) (posts []domain.Post, stale, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, found := s.lists[key]
	if !found {
		return nil, false, false
	}
	out := make([]domain.Post, len(e.posts))
	copy(out, e.posts)
	return out, s.now().Sub(e.fetchedAt) >= s.staleAfter, true
}

// GetDetail returns the cached snapshot for id, with the same stale/ok
// semantics as GetList.
func (s *Store) GetDetail(id int) (post domain.Post, stale, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, found := s.details[id]
	if !found {
		return domain.Post{}, false, false
	}
	return e.post, s.now().Sub(e.fetchedAt) >= s.staleAfter, true
}

// SetList unconditionally overwrites the list slot and refreshes its
// freshness timestamp. The input slice is copied.
func (s *Store) SetList(key string, posts []domain.Post) {
	cp := make([]domain.Post, len(posts))
	copy(cp, posts)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists[key] = &listEntry{posts: cp, fetchedAt: s.now()}
}

// SetDetail unconditionally overwrites the detail entry for post.ID and
// refreshes its freshness timestamp.
func (s *Store) SetDetail(id int, post domain.Post) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.details[id] = &detailEntry{post: post, fetchedAt: s.now()}
}

// UpsertIntoList inserts post into the list slot when its id is absent, or
// replaces the existing entry when present. Front inserts new posts at the
// head; a replace always preserves the entry's position regardless of pos.
// The detail entry for the id is set to the same snapshot so the list and
// detail views never diverge. A missing slot is created.
func (s *Store) UpsertIntoList(key string, post domain.Post, pos Position) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, found := s.lists[key]
	if !found {
		e = &listEntry{fetchedAt: s.now()}
		s.lists[key] = e
	}

	replaced := false
	for i := range e.posts {
		if e.posts[i].ID == post.ID {
			e.posts[i] = post
			replaced = true
			break
		}
	}
	if !replaced {
		switch pos {
		case InPlace:
			// Update of a post the list never held; append rather than
			// reorder the existing entries.
			e.posts = append(e.posts, post)
		default:
			e.posts = append([]domain.Post{post}, e.posts...)
		}
	}
	e.fetchedAt = s.now()

	s.details[post.ID] = &detailEntry{post: post, fetchedAt: s.now()}
}

// RemoveFromList deletes the entry with the given id from the list slot.
// Missing slot or id is a no-op.
func (s *Store) RemoveFromList(key string, id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, found := s.lists[key]
	if !found {
		return
	}
	for i := range e.posts {
		if e.posts[i].ID == id {
			e.posts = append(e.posts[:i], e.posts[i+1:]...)
			e.fetchedAt = s.now()
			return
		}
	}
}

// RemoveDetail deletes the detail entry for id. Missing id is a no-op.
func (s *Store) RemoveDetail(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.details, id)
}
