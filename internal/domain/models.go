// Package domain defines the core entities exchanged with the upstream post
// store and recorded in the activity journal. Post and Comment mirror the
// upstream JSON wire format; Activity is additionally mapped with GORM for
// the durable journal variant.
package domain

import "time"

// Post is the core content entity. Posts are value snapshots: an update
// produces a new snapshot replacing the old one under the same ID.
//
// JSON field names follow the upstream wire format (camelCase userId).
type Post struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	UserID int    `json:"userId"`
}

// Comment is a read-only entity attached to a Post via PostID. Comments are
// fetched per detail view and never mutated or cached by this service.
type Comment struct {
	ID     int    `json:"id"`
	PostID int    `json:"postId"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Body   string `json:"body"`
}

// ActivityType tags an Activity with the kind of mutation it records.
type ActivityType string

// The closed set of activity types produced by the mutation coordinator.
const (
	ActivityCreate ActivityType = "create"
	ActivityEdit   ActivityType = "edit"
	ActivityDelete ActivityType = "delete"
)

// Activity is one journal entry describing a past successful mutation.
// PostTitle is a snapshot of the title at mutation time, not a live
// reference; for deletes it is the last title the post had before removal.
//
// The GORM tags map the entry to the "activities" table used by the durable
// journal variant. The in-memory journal uses the same type untagged.
type Activity struct {
	ID        string       `json:"id"        gorm:"type:char(36);primaryKey"`
	Type      ActivityType `json:"type"      gorm:"type:varchar(16);not null;check:type IN ('create','edit','delete')"`
	PostID    int          `json:"postId"    gorm:"not null;index"`
	PostTitle string       `json:"postTitle" gorm:"type:text;not null"`
	CreatedAt time.Time    `json:"timestamp" gorm:"not null;index"`

	// Seq is the entry's position in the persisted snapshot (0 = newest).
	// Timestamps alone cannot break ties between appends in the same tick.
	Seq int `json:"-" gorm:"not null;index"`
}

// TableName returns the database table name for Activity.
func (Activity) TableName() string { return "activities" }
