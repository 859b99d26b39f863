package urlutil

import (
	"net/url"
	"strings"
)

// Normalize trims whitespace and assumes https when no scheme is given.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return s
	}
	if !strings.Contains(s, "://") {
		return "https://" + s
	}
	return s
}

// Valid accepts absolute http and https URLs with a host.
func Valid(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}
