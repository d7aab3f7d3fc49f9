// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // TIMEZONE must resolve on hosts without zoneinfo.
)

// DefaultFeedURLs are polled when FEED_URLS is not set.
var DefaultFeedURLs = []string{
	"http://news.google.com/news?output=rss",
	"http://news.yahoo.com/rss/topstories",
}

// Config holds the application configuration.
type Config struct {
	TriggersPath     string
	DatabasePath     string
	LogLevel         string
	PollInterval     time.Duration
	Location         *time.Location
	FeedURLs         []string
	TelegramBotToken string
	TelegramChatID   int64
	AllowedUsers     []int64
	HTTPAddr         string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	interval := 2 * time.Minute
	if raw := os.Getenv("POLL_INTERVAL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid POLL_INTERVAL %q: %w", raw, err)
		}
		if d <= 0 {
			return nil, fmt.Errorf("POLL_INTERVAL must be positive, got %s", d)
		}
		interval = d
	}

	zone := envOrDefault("TIMEZONE", "EST")
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", zone, err)
	}

	feedURLs := splitList(os.Getenv("FEED_URLS"))
	if len(feedURLs) == 0 {
		feedURLs = append([]string(nil), DefaultFeedURLs...)
	}

	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	var chatID int64
	if raw := os.Getenv("TELEGRAM_CHAT_ID"); raw != "" {
		chatID, err = strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", raw, err)
		}
	}
	if token != "" && chatID == 0 {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}

	var allowedUsers []int64
	for _, s := range splitList(os.Getenv("ALLOWED_USERS")) {
		uid, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid user ID %q in ALLOWED_USERS: %w", s, err)
		}
		allowedUsers = append(allowedUsers, uid)
	}

	return &Config{
		TriggersPath:     envOrDefault("TRIGGERS_PATH", "./triggers.txt"),
		DatabasePath:     envOrDefault("DATABASE_PATH", "./data/newswatch.db"),
		LogLevel:         envOrDefault("LOG_LEVEL", "info"),
		PollInterval:     interval,
		Location:         loc,
		FeedURLs:         feedURLs,
		TelegramBotToken: token,
		TelegramChatID:   chatID,
		AllowedUsers:     allowedUsers,
		HTTPAddr:         os.Getenv("HTTP_ADDR"),
	}, nil
}

// TelegramEnabled reports whether matched items should also go to Telegram.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != ""
}

// IsUserAllowed checks whether a user ID is in the allow list.
// Returns true if the allow list is empty (all users permitted).
func (c *Config) IsUserAllowed(userID int64) bool {
	if len(c.AllowedUsers) == 0 {
		return true
	}
	for _, id := range c.AllowedUsers {
		if id == userID {
			return true
		}
	}
	return false
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
