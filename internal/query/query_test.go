package query

import (
	"strconv"
	"testing"

	"github.com/nrjbwj/postforge/internal/domain"
)

func TestFilter_CaseInsensitiveTitleAndBody(t *testing.T) {
	posts := []domain.Post{
		{ID: 1, Title: "Hello", Body: "world"},
		{ID: 2, Title: "Foo", Body: "Hello bar"},
	}

	got := Filter(posts, "hello")
	if len(got) != 2 {
		t.Fatalf("query 'hello' matched %d posts, want 2", len(got))
	}
}

func TestFilter_MatchesIDSubstring(t *testing.T) {
	posts := []domain.Post{
		{ID: 1, Title: "Hello", Body: "world"},
		{ID: 2, Title: "Foo", Body: "Hello bar"},
	}

	got := Filter(posts, "2")
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("query '2' = %+v, want only id 2", got)
	}
}

func TestFilter_EmptyQueryReturnsAll(t *testing.T) {
	posts := []domain.Post{{ID: 1}, {ID: 2}, {ID: 3}}

	for _, q := range []string{"", "   ", "\t"} {
		if got := Filter(posts, q); len(got) != 3 {
			t.Fatalf("query %q matched %d posts, want 3", q, len(got))
		}
	}
}

func TestFilter_NoMatch(t *testing.T) {
	posts := []domain.Post{{ID: 1, Title: "alpha", Body: "beta"}}
	if got := Filter(posts, "zzz"); len(got) != 0 {
		t.Fatalf("expected no matches, got %+v", got)
	}
}

func TestPaginate_Boundaries(t *testing.T) {
	posts := make([]domain.Post, 25)
	for i := range posts {
		posts[i] = domain.Post{ID: i + 1, Title: "t" + strconv.Itoa(i+1)}
	}

	p3 := Paginate(posts, 3, 10)
	if len(p3.Items) != 5 {
		t.Fatalf("page 3 has %d items, want 5", len(p3.Items))
	}
	if p3.Items[0].ID != 21 || p3.Items[4].ID != 25 {
		t.Fatalf("page 3 window wrong: %+v", p3.Items)
	}
	if p3.HasNext {
		t.Fatal("page 3 of 3 reports has_next")
	}

	p4 := Paginate(posts, 4, 10)
	if p4.Items == nil || len(p4.Items) != 0 {
		t.Fatalf("page past end = %+v, want empty non-nil slice", p4.Items)
	}
	if p4.Total != 25 || p4.TotalPages != 3 {
		t.Fatalf("metadata wrong: %+v", p4)
	}
}

func TestPaginate_Defaults(t *testing.T) {
	posts := make([]domain.Post, 12)
	for i := range posts {
		posts[i] = domain.Post{ID: i + 1}
	}

	p := Paginate(posts, 0, 0)
	if p.Page != 1 || p.PageSize != DefaultPageSize {
		t.Fatalf("defaults not applied: %+v", p)
	}
	if len(p.Items) != 10 || !p.HasNext {
		t.Fatalf("first default page wrong: len=%d has_next=%v", len(p.Items), p.HasNext)
	}
}

func TestPaginate_ExactFit(t *testing.T) {
	posts := make([]domain.Post, 20)
	for i := range posts {
		posts[i] = domain.Post{ID: i + 1}
	}

	p2 := Paginate(posts, 2, 10)
	if len(p2.Items) != 10 || p2.HasNext || p2.TotalPages != 2 {
		t.Fatalf("exact fit page 2 wrong: %+v", p2)
	}
}
