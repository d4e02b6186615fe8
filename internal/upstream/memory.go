// In-memory post store. Implements Client without network I/O, used when the
// service runs in mock mode (UPSTREAM_MODE=mock) and by service-layer tests.
// New ids follow the monotonic max-plus-one rule of the mock-data variant.
package upstream

import (
	"context"
	"sync"

	"github.com/nrjbwj/postforge/internal/domain"
)

// MemoryStore is a Client backed by process memory. The zero value is not
// usable; construct with NewMemoryStore.
//
// FailNext can be set by tests to make the next call return the given error
// without touching state. Calls counts every Client invocation by method
// name, which mutation tests use to assert "no network round-trip".
type MemoryStore struct {
	mu       sync.Mutex
	posts    []domain.Post
	comments map[int][]domain.Comment
	nextErr  error

	calls map[string]int
}

// NewMemoryStore seeds a store with the given posts.
func NewMemoryStore(seed []domain.Post) *MemoryStore {
	cp := make([]domain.Post, len(seed))
	copy(cp, seed)
	return &MemoryStore{
		posts:    cp,
		comments: make(map[int][]domain.Comment),
		calls:    make(map[string]int),
	}
}

// SeedComments attaches comments to a post id.
func (m *MemoryStore) SeedComments(postID int, cs []domain.Comment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comments[postID] = append([]domain.Comment(nil), cs...)
}

// FailNext makes the next Client call fail with err.
func (m *MemoryStore) FailNext(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextErr = err
}

// Calls reports how many times the named method was invoked.
func (m *MemoryStore) Calls(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[method]
}

// TotalCalls reports the number of Client invocations across all methods.
func (m *MemoryStore) TotalCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		n += c
	}
	return n
}

// enter records the call and consumes a pending injected failure.
func (m *MemoryStore) enter(method string) error {
	m.calls[method]++
	if err := m.nextErr; err != nil {
		m.nextErr = nil
		return err
	}
	return nil
}

// ListPosts returns a copy of all posts.
func (m *MemoryStore) ListPosts(ctx context.Context) ([]domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListPosts"); err != nil {
		return nil, err
	}
	out := make([]domain.Post, len(m.posts))
	copy(out, m.posts)
	return out, nil
}

// GetPost returns the post with the given id or ErrNotFound.
func (m *MemoryStore) GetPost(ctx context.Context, id int) (*domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("GetPost"); err != nil {
		return nil, err
	}
	for _, p := range m.posts {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

// ListComments returns the seeded comments for postID.
func (m *MemoryStore) ListComments(ctx context.Context, postID int) ([]domain.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListComments"); err != nil {
		return nil, err
	}
	return append([]domain.Comment(nil), m.comments[postID]...), nil
}

// CreatePost stores a new post with id = max existing id + 1.
func (m *MemoryStore) CreatePost(ctx context.Context, in CreatePostInput) (*domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreatePost"); err != nil {
		return nil, err
	}
	maxID := 0
	for _, p := range m.posts {
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	np := domain.Post{ID: maxID + 1, Title: in.Title, Body: in.Body, UserID: in.UserID}
	m.posts = append(m.posts, np)
	return &np, nil
}

// UpdatePost replaces the stored snapshot for in.ID or returns ErrNotFound.
func (m *MemoryStore) UpdatePost(ctx context.Context, in UpdatePostInput) (*domain.Post, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("UpdatePost"); err != nil {
		return nil, err
	}
	for i := range m.posts {
		if m.posts[i].ID == in.ID {
			m.posts[i] = domain.Post{ID: in.ID, Title: in.Title, Body: in.Body, UserID: in.UserID}
			cp := m.posts[i]
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

// DeletePost removes the post with the given id or returns ErrNotFound.
func (m *MemoryStore) DeletePost(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeletePost"); err != nil {
		return err
	}
	for i := range m.posts {
		if m.posts[i].ID == id {
			m.posts = append(m.posts[:i], m.posts[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
