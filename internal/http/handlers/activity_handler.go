// Activity and dashboard HTTP handlers.
//
// This file exposes the read-only endpoints over the mutation journal:
//   - GET /activity   (full journal, newest first)
//   - GET /dashboard  (summary metrics for the dashboard header)
//
// The dashboard summary is computed on demand from the cached post list and
// the journal; nothing is precomputed or stored.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nrjbwj/postforge/internal/domain"
)

// ActivityResponse wraps the journal entries and their count.
type ActivityResponse struct {
	Activities []domain.Activity `json:"activities"`
	Count      int               `json:"count"`
}

// DashboardResponse carries the summary metrics for the dashboard header.
type DashboardResponse struct {
	TotalPosts     int               `json:"total_posts"`
	DistinctUsers  int               `json:"distinct_users"`
	ActivityCount  int               `json:"activity_count"`
	RecentActivity []domain.Activity `json:"recent_activity"`
}

// recentActivityLimit caps the dashboard's activity excerpt.
const recentActivityLimit = 5

// ListActivity returns the journal, newest first.
func (h *Handlers) ListActivity(c *gin.Context) {
	entries := h.activity.List()
	if entries == nil {
		entries = []domain.Activity{}
	}
	ok(c, http.StatusOK, ActivityResponse{Activities: entries, Count: len(entries)})
}

// Dashboard returns summary metrics: post count, distinct author count, and
// the most recent journal entries. The post list comes from the cache-aware
// service, so a fresh cache makes this endpoint free of upstream calls.
func (h *Handlers) Dashboard(c *gin.Context) {
	posts, err := h.posts.List(c.Request.Context())
	if err != nil {
		failService(c, err)
		return
	}

	users := make(map[int]struct{}, len(posts))
	for _, p := range posts {
		users[p.UserID] = struct{}{}
	}

	entries := h.activity.List()
	recent := entries
	if len(recent) > recentActivityLimit {
		recent = recent[:recentActivityLimit]
	}
	if recent == nil {
		recent = []domain.Activity{}
	}

	ok(c, http.StatusOK, DashboardResponse{
		TotalPosts:     len(posts),
		DistinctUsers:  len(users),
		ActivityCount:  len(entries),
		RecentActivity: recent,
	})
}
