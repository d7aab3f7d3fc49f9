// Package scheduler runs the fixed-interval poll loop: fetch every active
// feed, filter the combined batch through the active rules and hand the
// matches to the configured sinks.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"newswatch/internal/fetcher"
	"newswatch/internal/model"
	"newswatch/internal/storage"
	"newswatch/internal/trigger"
)

const maxConcurrentFetches = 5

// Sink receives the items matched in one poll cycle.
type Sink interface {
	Notify(ctx context.Context, items []model.Item) error
}

// Rules provides the rule set for a cycle.
type Rules interface {
	Load() trigger.RuleSet
}

// Summary describes the outcome of one poll cycle.
type Summary struct {
	Feeds   int `json:"feeds"`
	Failed  int `json:"failed"`
	Items   int `json:"items"`
	Matched int `json:"matched"`
}

// Scheduler periodically polls feeds and reports matching items.
type Scheduler struct {
	store   storage.Storage
	fetcher *fetcher.Fetcher
	rules   Rules
	sinks   []Sink
	log     *slog.Logger
	tick    time.Duration

	mu sync.Mutex
}

// New creates a Scheduler with the default HTTP client.
func New(store storage.Storage, rules Rules, sinks []Sink, log *slog.Logger) *Scheduler {
	return NewWithFetcher(store, fetcher.New(http.DefaultClient), rules, sinks, log)
}

// NewWithFetcher creates a Scheduler with a custom fetcher (useful for testing).
func NewWithFetcher(store storage.Storage, f *fetcher.Fetcher, rules Rules, sinks []Sink, log *slog.Logger) *Scheduler {
	return &Scheduler{
		store:   store,
		fetcher: f,
		rules:   rules,
		sinks:   sinks,
		log:     log,
		tick:    2 * time.Minute,
	}
}

// SetTickInterval overrides the default 2-minute poll interval.
func (s *Scheduler) SetTickInterval(d time.Duration) {
	s.tick = d
}

// AddSink registers another consumer of matched items. It must be called
// before Run.
func (s *Scheduler) AddSink(sink Sink) {
	s.sinks = append(s.sinks, sink)
}

// Run polls once immediately and then every tick, blocking until ctx is
// cancelled.
func (s *Scheduler) Run(ctx context.Context) {
	s.poll(ctx)

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.poll(ctx)
		}
	}
}

func (s *Scheduler) poll(ctx context.Context) {
	if _, err := s.Check(ctx); err != nil {
		s.log.Error("poll", "error", err)
	}
}

type fetchResult struct {
	title string
	items []model.Item
	err   error
}

// Check runs one poll cycle. Feed failures are logged and recorded on the
// feed; only a failure to list feeds aborts the cycle.
func (s *Scheduler) Check(ctx context.Context) (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	feeds, err := s.store.ListActiveFeeds(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("list active feeds: %w", err)
	}

	results := make([]fetchResult, len(feeds))
	var g errgroup.Group
	g.SetLimit(maxConcurrentFetches)
	for i, feed := range feeds {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].err = err
				return nil
			}
			f, err := s.fetcher.Fetch(ctx, feed.URL)
			if err != nil {
				results[i].err = err
				return nil
			}
			results[i].title = f.Title
			results[i].items = fetcher.Items(f, s.log.With("feed_id", feed.ID))
			return nil
		})
	}
	_ = g.Wait()

	sum := Summary{Feeds: len(feeds)}
	var items []model.Item
	for i := range feeds {
		res := results[i]
		if res.err != nil {
			sum.Failed++
			s.log.Error("fetch feed", "feed_id", feeds[i].ID, "url", feeds[i].URL, "error", res.err)
		} else {
			items = append(items, res.items...)
		}
		s.recordCheck(ctx, &feeds[i], res)
	}

	matched := trigger.Filter(items, s.rules.Load())
	sum.Items = len(items)
	sum.Matched = len(matched)

	s.log.Info("poll complete",
		"feeds", sum.Feeds,
		"failed", sum.Failed,
		"items", sum.Items,
		"matched", sum.Matched,
	)

	if len(matched) > 0 {
		for _, sink := range s.sinks {
			if err := sink.Notify(ctx, matched); err != nil {
				s.log.Error("notify", "sink", fmt.Sprintf("%T", sink), "error", err)
			}
		}
	}
	return sum, nil
}

func (s *Scheduler) recordCheck(ctx context.Context, feed *model.Feed, res fetchResult) {
	now := time.Now().UTC()
	feed.LastCheckAt = &now
	feed.LastError = ""
	if res.err != nil {
		feed.LastError = res.err.Error()
	} else if feed.Name == feed.URL && res.title != "" {
		feed.Name = res.title
	}
	if err := s.store.UpdateFeed(ctx, feed); err != nil {
		s.log.Error("update feed", "feed_id", feed.ID, "error", err)
	}
}
