// Package services – ActivityLog
//
// This file implements the bounded, newest-first journal of mutation events.
// The journal exists for display purposes only; it is never authoritative
// for entity state. At most Max entries are kept, oldest evicted first.
//
// Durable variant: when constructed with a database handle, the journal is
// loaded from SQLite at startup and the full snapshot is rewritten after
// every append. Persistence failures are logged and swallowed — a broken
// journal store degrades to the in-memory behavior, it never fails a
// mutation that already succeeded upstream.
package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/nrjbwj/postforge/internal/domain"
	"github.com/nrjbwj/postforge/internal/repo"
)

// DefaultActivityMax is the journal cap used when Max is not positive.
const DefaultActivityMax = 50

// ActivityLog is a bounded most-recent-first journal of mutation events.
// It is safe for concurrent use.
type ActivityLog struct {
	mu      sync.Mutex
	max     int
	entries []domain.Activity // newest first

	db *gorm.DB // nil for the in-memory-only variant

	now   func() time.Time
	newID func() string
}

// NewActivityLog returns a journal capped at max entries. When db is
// non-nil, previously persisted entries are loaded; a load failure is logged
// and treated as an empty journal.
func NewActivityLog(max int, db *gorm.DB) *ActivityLog {
	if max < 1 {
		max = DefaultActivityMax
	}
	l := &ActivityLog{
		max:   max,
		db:    db,
		now:   time.Now,
		newID: uuid.NewString,
	}
	if db != nil {
		entries, err := repo.LoadActivities(context.Background(), db, max)
		if err != nil {
			log.Warn().Err(err).Msg("activity journal load failed; starting empty")
		} else {
			l.entries = entries
		}
	}
	return l
}

// Append records a mutation event at the head of the journal, evicting the
// oldest entry past the cap, and returns the new record. The persisted
// snapshot is refreshed best-effort when a database is configured.
func (l *ActivityLog) Append(ctx context.Context, typ domain.ActivityType, postID int, postTitle string) domain.Activity {
	l.mu.Lock()

	rec := domain.Activity{
		ID:        l.newID(),
		Type:      typ,
		PostID:    postID,
		PostTitle: postTitle,
		CreatedAt: l.now().UTC(),
	}
	l.entries = append([]domain.Activity{rec}, l.entries...)
	if len(l.entries) > l.max {
		l.entries = l.entries[:l.max]
	}

	var snapshot []domain.Activity
	if l.db != nil {
		snapshot = append([]domain.Activity(nil), l.entries...)
	}
	l.mu.Unlock()

	if l.db != nil {
		if err := repo.ReplaceActivities(ctx, l.db, snapshot); err != nil {
			log.Warn().Err(err).Msg("activity journal persist failed")
		}
	}
	return rec
}

// List returns a copy of the journal, newest first.
func (l *ActivityLog) List() []domain.Activity {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.Activity(nil), l.entries...)
}

// Len reports the current number of journal entries.
func (l *ActivityLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
