package report

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"newswatch/internal/model"
)

func TestConsoleNotify(t *testing.T) {
	est := time.FixedZone("EST", -5*60*60)
	items := []model.Item{
		{
			Title:       "Stock Market Crash Today",
			Description: "Investors fled.",
			Link:        "https://news.example.com/a",
			Published:   time.Date(2016, time.October, 3, 18, 0, 0, 0, time.UTC),
		},
		{
			Title:     "Election night",
			Link:      "https://news.example.com/b",
			Published: time.Date(2016, time.October, 4, 0, 0, 0, 0, time.UTC),
		},
	}

	tests := []struct {
		name string
		loc  *time.Location
		want string
	}{
		{
			name: "configured location",
			loc:  est,
			want: `Title: Stock Market Crash Today
Description: Investors fled.
Link: https://news.example.com/a
Publication Date: 2016-10-03 13:00:00 -0500
==================================================
Title: Election night
Link: https://news.example.com/b
Publication Date: 2016-10-03 19:00:00 -0500
==================================================
`,
		},
		{
			name: "original zone",
			loc:  nil,
			want: `Title: Stock Market Crash Today
Description: Investors fled.
Link: https://news.example.com/a
Publication Date: 2016-10-03 18:00:00 +0000
==================================================
Title: Election night
Link: https://news.example.com/b
Publication Date: 2016-10-04 00:00:00 +0000
==================================================
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := NewConsole(&buf, tt.loc).Notify(context.Background(), items); err != nil {
				t.Fatalf("notify: %v", err)
			}
			if diff := cmp.Diff(tt.want, buf.String()); diff != "" {
				t.Errorf("output mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestConsoleNotifyWriteError(t *testing.T) {
	c := NewConsole(failingWriter{}, nil)
	err := c.Notify(context.Background(), []model.Item{{Title: "x"}})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
