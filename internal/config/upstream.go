package config

import (
	"errors"
	"os"
	"strings"
)

// Environment variables consulted for the upstream base URL when the config
// file leaves it empty. The first non-empty value wins.
var upstreamEnvVars = []string{"UPSTREAM_API_URL", "API_URL"}

var ErrNoUpstreamBaseURL = errors.New("no upstream base URL configured")

// ResolveBaseURL returns the upstream base address, normalised so that path
// building never duplicates the API segment: a trailing "/api" (and any
// trailing slash) is stripped.
func (u *Upstream) ResolveBaseURL() (string, error) {
	baseURL := u.BaseURL
	if baseURL == "" {
		for _, name := range upstreamEnvVars {
			if v := os.Getenv(name); v != "" {
				baseURL = v
				break
			}
		}
	}

	if baseURL == "" {
		return "", ErrNoUpstreamBaseURL
	}

	baseURL = strings.TrimRight(baseURL, "/")
	baseURL = strings.TrimSuffix(baseURL, "/api")

	return baseURL, nil
}

func isHTTPS(baseURL string) bool {
	return strings.HasPrefix(baseURL, "https://")
}
