package bot

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ParseIDArg extracts a numeric ID from a command argument string.
func ParseIDArg(args string) (int64, error) {
	s := strings.TrimSpace(args)
	if s == "" {
		return 0, fmt.Errorf("feed ID is required")
	}
	s = strings.TrimPrefix(strings.Fields(s)[0], "#")
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid feed ID %q", s)
	}
	return id, nil
}

// ParseURLArg extracts and validates a feed URL.
func ParseURLArg(args string) (string, error) {
	fields := strings.Fields(args)
	if len(fields) != 1 {
		return "", fmt.Errorf("exactly one URL is required")
	}
	u, err := url.Parse(fields[0])
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", fields[0], err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("invalid URL %q: want http(s)://host/...", fields[0])
	}
	return u.String(), nil
}
