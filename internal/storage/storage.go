// Package storage defines the feed registry interface and its implementations.
package storage

import (
	"context"
	"errors"

	"newswatch/internal/model"
)

// ErrNotFound is returned when a feed does not exist.
var ErrNotFound = errors.New("feed not found")

// Storage is the interface for feed registry persistence.
type Storage interface {
	CreateFeed(ctx context.Context, feed *model.Feed) error
	EnsureFeed(ctx context.Context, url string) (*model.Feed, error)
	GetFeed(ctx context.Context, id int64) (*model.Feed, error)
	ListFeeds(ctx context.Context) ([]model.Feed, error)
	ListActiveFeeds(ctx context.Context) ([]model.Feed, error)
	UpdateFeed(ctx context.Context, feed *model.Feed) error
	DeleteFeed(ctx context.Context, id int64) error

	Close() error
}
