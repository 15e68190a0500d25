package engine

import (
	"fmt"
	"net/url"
	"strings"
)

// SiteKey derives the cache key for a page URL: the lowercased host,
// including any subdomain. Job boards keep one form layout per host
// (jobs.lever.co, boards.greenhouse.io), so schemas are shared at that
// granularity.
func SiteKey(rawURL string) (string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}

	host := parsed.Hostname()
	if host == "" {
		return "", fmt.Errorf("URL %q has no host", rawURL)
	}

	return strings.ToLower(host), nil
}
