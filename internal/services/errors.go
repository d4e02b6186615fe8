// Package services defines the business logic for posts and the activity
// journal. This file centralizes common service-level error values so that
// they can be consistently returned by service methods and checked by
// callers with errors.Is.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import "errors"

// Validation errors. These are raised before any upstream call is made, so a
// rejected input never costs a network round-trip.
var (
	// ErrEmptyTitle is returned when a create/update title is empty after
	// trimming whitespace.
	ErrEmptyTitle = errors.New("title is empty")

	// ErrEmptyBody is returned when a create/update body is empty after
	// trimming whitespace.
	ErrEmptyBody = errors.New("body is empty")

	// ErrInvalidUserID is returned when the owning user id is below 1.
	ErrInvalidUserID = errors.New("user id must be >= 1")
)
