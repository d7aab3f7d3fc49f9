// Package report renders matched items as plain text.
package report

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"newswatch/internal/model"
)

const separator = "=================================================="

// Console writes matched items to w, one block per item.
type Console struct {
	mu  sync.Mutex
	w   io.Writer
	loc *time.Location
}

// NewConsole returns a sink writing to w. Publication dates are shown in
// loc, or in their original zone when loc is nil.
func NewConsole(w io.Writer, loc *time.Location) *Console {
	return &Console{w: w, loc: loc}
}

// Notify writes items to the underlying writer.
func (c *Console) Notify(_ context.Context, items []model.Item) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var b strings.Builder
	for _, item := range items {
		FormatItem(&b, item, c.loc)
	}
	if _, err := io.WriteString(c.w, b.String()); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// FormatItem appends the text block for item to b.
func FormatItem(b *strings.Builder, item model.Item, loc *time.Location) {
	published := item.Published
	if loc != nil {
		published = published.In(loc)
	}
	fmt.Fprintf(b, "Title: %s\n", item.Title)
	if item.Description != "" {
		fmt.Fprintf(b, "Description: %s\n", item.Description)
	}
	fmt.Fprintf(b, "Link: %s\n", item.Link)
	fmt.Fprintf(b, "Publication Date: %s\n", published.Format("2006-01-02 15:04:05 -0700"))
	b.WriteString(separator + "\n")
}
