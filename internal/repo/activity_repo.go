// Package repo implements the SQLite persistence layer, backed by GORM.
// This file provides the durable activity journal: the in-memory journal is
// the source of truth at runtime, and the table mirrors its latest snapshot.
//
// Error semantics: persistence failures are returned to the caller, which is
// expected to log and continue — a broken journal store must never take the
// application down.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/nrjbwj/postforge/internal/domain"
)

// LoadActivities returns all journal entries newest-first, capped at limit.
// An empty table yields an empty slice. Order comes from the seq column, so
// reload is deterministic even for entries sharing a timestamp.
func LoadActivities(ctx context.Context, db *gorm.DB, limit int) ([]domain.Activity, error) {
	var out []domain.Activity
	q := db.WithContext(ctx).Order("seq asc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// ReplaceActivities rewrites the stored journal with the given snapshot in a
// single transaction. The snapshot is expected newest-first; each row is
// stamped with its position so load reconstructs the exact order.
func ReplaceActivities(ctx context.Context, db *gorm.DB, entries []domain.Activity) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&domain.Activity{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		rows := make([]domain.Activity, len(entries))
		copy(rows, entries)
		for i := range rows {
			rows[i].Seq = i
		}
		return tx.Create(rows).Error
	})
}
