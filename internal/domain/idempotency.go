// Package domain defines the core entities of the application. This file
// holds the Idempotency model backing the double-submit guard on unsafe
// endpoints.
package domain

import "time"

// Idempotency records the outcome of a previously processed unsafe request,
// keyed by (user_id, key). It lets a retried POST be recognized and served
// without re-executing the mutation against the upstream store.
type Idempotency struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	UserID    string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_key,priority:1"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_user_key,priority:2"`
	PostID    int       `gorm:"type:INTEGER NOT NULL"`
	Status    int       `gorm:"type:INTEGER NOT NULL"`
	CreatedAt time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
