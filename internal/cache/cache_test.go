package cache

import (
	"reflect"
	"testing"
	"time"

	"github.com/nrjbwj/postforge/internal/domain"
)

func p(id int, title string) domain.Post {
	return domain.Post{ID: id, Title: title, Body: "body " + title, UserID: 1}
}

func TestStore_GetList_MissingSlot(t *testing.T) {
	s := New(time.Minute)
	if _, _, ok := s.GetList(DefaultListKey); ok {
		t.Fatal("expected ok=false for never-set slot")
	}
}

func TestStore_SetList_GetList_Copies(t *testing.T) {
	s := New(time.Minute)
	in := []domain.Post{p(1, "a"), p(2, "b")}
	s.SetList(DefaultListKey, in)

	got, stale, ok := s.GetList(DefaultListKey)
	if !ok || stale {
		t.Fatalf("expected fresh hit, got ok=%v stale=%v", ok, stale)
	}
	if !reflect.DeepEqual(got, in) {
		t.Fatalf("got %+v, want %+v", got, in)
	}

	// Mutating the returned slice must not leak into the cache.
	got[0].Title = "mutated"
	again, _, _ := s.GetList(DefaultListKey)
	if again[0].Title != "a" {
		t.Fatal("cache entry mutated through returned slice")
	}
}

func TestStore_Staleness(t *testing.T) {
	now := time.Unix(1000, 0)
	clock := func() time.Time { return now }
	s := New(60*time.Second, WithClock(clock))

	s.SetList(DefaultListKey, []domain.Post{p(1, "a")})
	if _, stale, _ := s.GetList(DefaultListKey); stale {
		t.Fatal("fresh entry reported stale")
	}

	now = now.Add(59 * time.Second)
	if _, stale, _ := s.GetList(DefaultListKey); stale {
		t.Fatal("entry inside threshold reported stale")
	}

	now = now.Add(1 * time.Second)
	if _, stale, ok := s.GetList(DefaultListKey); !ok || !stale {
		t.Fatalf("expected stale hit, got ok=%v stale=%v", ok, stale)
	}
}

func TestStore_UpsertFront_InsertsOnceAtHead(t *testing.T) {
	s := New(time.Minute)
	s.SetList(DefaultListKey, []domain.Post{p(1, "a"), p(2, "b")})

	s.UpsertIntoList(DefaultListKey, p(3, "c"), Front)

	got, _, _ := s.GetList(DefaultListKey)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].ID != 3 {
		t.Fatalf("new post not at head: %+v", got)
	}
	seen := 0
	for _, q := range got {
		if q.ID == 3 {
			seen++
		}
	}
	if seen != 1 {
		t.Fatalf("post 3 appears %d times, want 1", seen)
	}
}

func TestStore_UpsertInPlace_ReplacesWithoutReorder(t *testing.T) {
	s := New(time.Minute)
	s.SetList(DefaultListKey, []domain.Post{p(1, "a"), p(2, "b"), p(3, "c")})

	updated := p(2, "b2")
	s.UpsertIntoList(DefaultListKey, updated, InPlace)

	got, _, _ := s.GetList(DefaultListKey)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[1] != updated {
		t.Fatalf("position 1 = %+v, want %+v", got[1], updated)
	}
	if got[0].ID != 1 || got[2].ID != 3 {
		t.Fatalf("neighbors changed: %+v", got)
	}
}

func TestStore_Upsert_SyncsDetail(t *testing.T) {
	s := New(time.Minute)
	s.SetList(DefaultListKey, []domain.Post{p(1, "a")})

	s.UpsertIntoList(DefaultListKey, p(1, "a2"), InPlace)

	d, _, ok := s.GetDetail(1)
	if !ok {
		t.Fatal("detail entry missing after upsert")
	}
	list, _, _ := s.GetList(DefaultListKey)
	if d != list[0] {
		t.Fatalf("detail %+v diverged from list entry %+v", d, list[0])
	}
}

func TestStore_Remove(t *testing.T) {
	s := New(time.Minute)
	s.SetList(DefaultListKey, []domain.Post{p(1, "a"), p(2, "b")})
	s.SetDetail(2, p(2, "b"))

	s.RemoveFromList(DefaultListKey, 2)
	s.RemoveDetail(2)

	got, _, _ := s.GetList(DefaultListKey)
	if len(got) != 1 || got[0].ID != 1 {
		t.Fatalf("unexpected list after remove: %+v", got)
	}
	if _, _, ok := s.GetDetail(2); ok {
		t.Fatal("detail entry survived RemoveDetail")
	}

	// Removing an absent id must be a no-op.
	s.RemoveFromList(DefaultListKey, 99)
	s.RemoveDetail(99)
}

func TestStore_SetDetail_RefreshesFreshness(t *testing.T) {
	now := time.Unix(1000, 0)
	clock := func() time.Time { return now }
	s := New(time.Minute, WithClock(clock))

	s.SetDetail(7, p(7, "x"))
	now = now.Add(2 * time.Minute)
	if _, stale, _ := s.GetDetail(7); !stale {
		t.Fatal("expected stale detail")
	}

	s.SetDetail(7, p(7, "y"))
	if d, stale, _ := s.GetDetail(7); stale || d.Title != "y" {
		t.Fatalf("overwrite did not refresh: stale=%v post=%+v", stale, d)
	}
}
