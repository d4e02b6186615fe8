package upstream

import "github.com/nrjbwj/postforge/internal/domain"

// NewSampleStore returns a MemoryStore seeded with a small fixed dataset, the
// backing store for mock mode. Ids start at 1 so created posts continue the
// sequence.
func NewSampleStore() *MemoryStore {
	m := NewMemoryStore([]domain.Post{
		{ID: 1, UserID: 1, Title: "Welcome to the dashboard", Body: "Everything you see here is served from the in-process mock store."},
		{ID: 2, UserID: 1, Title: "Editing posts", Body: "Open a post and use the edit form; the list updates without a refetch."},
		{ID: 3, UserID: 2, Title: "About caching", Body: "Reads are cached and refreshed in the background once they go stale."},
		{ID: 4, UserID: 2, Title: "Activity journal", Body: "Creates, edits, and deletes land in the activity feed, newest first."},
		{ID: 5, UserID: 3, Title: "Offline development", Body: "Run with UPSTREAM_MODE=mock to work without the remote post store."},
	})
	m.SeedComments(1, []domain.Comment{
		{ID: 1, PostID: 1, Name: "Sam", Email: "sam@example.com", Body: "Nice to have seed data."},
		{ID: 2, PostID: 1, Name: "Alex", Email: "alex@example.com", Body: "Agreed."},
	})
	m.SeedComments(3, []domain.Comment{
		{ID: 3, PostID: 3, Name: "Robin", Email: "robin@example.com", Body: "How long until entries go stale?"},
	})
	return m
}
