package bot

import (
	"fmt"
	"strings"
	"time"

	"newswatch/internal/model"
	"newswatch/internal/scheduler"
	"newswatch/internal/trigger"
)

const (
	statusActive = "active"
	statusPaused = "paused"

	maxDescription = 300
)

// FormatNotification formats a matched item as a Telegram message.
// Publication time is shown in loc when it is not nil.
func FormatNotification(item model.Item, loc *time.Location) string {
	var b strings.Builder
	b.WriteString(item.Title)
	if desc := truncate(item.Description, maxDescription); desc != "" {
		b.WriteString("\n\n")
		b.WriteString(desc)
	}
	published := item.Published
	if loc != nil {
		published = published.In(loc)
	}
	fmt.Fprintf(&b, "\n\n%s", published.Format("2006-01-02 15:04 MST"))
	if item.Link != "" {
		b.WriteString("\n")
		b.WriteString(item.Link)
	}
	return b.String()
}

// FormatFeedList formats the feed registry for display.
func FormatFeedList(feeds []model.Feed) string {
	if len(feeds) == 0 {
		return "No feeds yet. Use /add <url> to add one."
	}
	var b strings.Builder
	b.WriteString("Feeds:\n")
	for _, f := range feeds {
		fmt.Fprintf(&b, "\n#%d %s [%s]\n", f.ID, f.Name, statusLabel(f.IsActive))
		fmt.Fprintf(&b, "   %s\n", f.URL)
		if f.LastCheckAt != nil {
			fmt.Fprintf(&b, "   last check %s\n", f.LastCheckAt.Format("2006-01-02 15:04 UTC"))
		}
		if f.LastError != "" {
			fmt.Fprintf(&b, "   error: %s\n", f.LastError)
		}
	}
	return b.String()
}

// FormatRules lists the active rules, all of which must match.
func FormatRules(rules trigger.RuleSet, path string) string {
	if len(rules) == 0 {
		return fmt.Sprintf("No rules in %s: every item matches.", path)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Rules from %s (all must match):\n", path)
	for _, r := range rules {
		label := fmt.Sprintf("line %d", r.Line)
		if r.Name != "" {
			label = fmt.Sprintf("%s, line %d", r.Name, r.Line)
		}
		fmt.Fprintf(&b, "\n%s\n   %s\n", label, r.Predicate)
	}
	return b.String()
}

// FormatSummary describes the outcome of an on-demand poll.
func FormatSummary(sum scheduler.Summary) string {
	s := fmt.Sprintf("Checked %d feed(s): %d item(s), %d matched.", sum.Feeds, sum.Items, sum.Matched)
	if sum.Failed > 0 {
		s += fmt.Sprintf("\n%d feed(s) failed, see /feeds.", sum.Failed)
	}
	return s
}

func statusLabel(active bool) string {
	if active {
		return statusActive
	}
	return statusPaused
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
