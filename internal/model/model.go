// Package model defines the domain types used across the application.
package model

import "time"

// Item is a single news story delivered by a feed.
// Items are passed by value and never modified after construction.
type Item struct {
	GUID        string
	Title       string
	Description string
	Link        string
	Published   time.Time
}

// Feed represents a registered feed source polled on every cycle.
type Feed struct {
	ID          int64
	Name        string
	URL         string
	IsActive    bool
	LastCheckAt *time.Time
	LastError   string
	CreatedAt   time.Time
}
