// Package query computes the filtered, paginated view of the cached post
// list that the dashboard table renders. It is pure computation over a post
// slice plus transient view state (query string, page number); nothing here
// is stored or cached.
package query

import (
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"github.com/nrjbwj/postforge/internal/domain"
)

// DefaultPageSize is the page size used when the caller passes a
// non-positive value.
const DefaultPageSize = 10

// Page is one window of the filtered sequence together with pagination
// metadata for the view layer's page controls.
type Page struct {
	Items      []domain.Post `json:"items"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	Total      int           `json:"total"`
	TotalPages int           `json:"total_pages"`
	HasNext    bool          `json:"has_next"`
}

// Filter returns the posts matching q: a case-folded substring test against
// title, body, and the decimal form of the id. An empty or whitespace-only
// query returns the input unfiltered.
func Filter(posts []domain.Post, q string) []domain.Post {
	q = strings.TrimSpace(q)
	if q == "" {
		return posts
	}
	// Casers are stateful transformers; build one per call.
	fold := cases.Fold()
	needle := fold.String(q)

	out := make([]domain.Post, 0, len(posts))
	for _, p := range posts {
		if strings.Contains(fold.String(p.Title), needle) ||
			strings.Contains(fold.String(p.Body), needle) ||
			strings.Contains(strconv.Itoa(p.ID), needle) {
			out = append(out, p)
		}
	}
	return out
}

// Paginate slices posts into the 1-based page of the given size. Pages past
// the end yield an empty (non-nil) item slice; this is not an error and the
// computation never clamps the requested page. Non-positive page falls back
// to 1, non-positive pageSize to DefaultPageSize.
func Paginate(posts []domain.Post, page, pageSize int) Page {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}

	total := len(posts)
	totalPages := (total + pageSize - 1) / pageSize

	start := (page - 1) * pageSize
	end := start + pageSize
	items := []domain.Post{}
	if start < total {
		if end > total {
			end = total
		}
		items = append(items, posts[start:end]...)
	}

	return Page{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}
