package app

import (
	"net/url"
	"strings"
)

// NormalizeDBURL adds sslmode when the URL does not set one; lib/pq otherwise
// defaults to require.
func NormalizeDBURL(raw, defaultSSLMode string) string {
	defaultSSLMode = strings.TrimSpace(defaultSSLMode)
	if defaultSSLMode == "" {
		return raw
	}

	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err != nil || parsed == nil || parsed.Scheme == "" {
		if strings.Contains(trimmed, "sslmode=") || trimmed == "" {
			return raw
		}
		return trimmed + " sslmode=" + defaultSSLMode
	}

	query := parsed.Query()
	if query.Get("sslmode") == "" {
		query.Set("sslmode", defaultSSLMode)
		parsed.RawQuery = query.Encode()
	}

	return parsed.String()
}

func dbNameFromURL(raw string) string {
	trimmed := strings.TrimSpace(raw)
	parsed, err := url.Parse(trimmed)
	if err == nil && parsed != nil && parsed.Scheme != "" {
		name := strings.TrimSpace(strings.TrimPrefix(parsed.Path, "/"))
		if name != "" {
			return name
		}
	}

	for _, token := range strings.Fields(trimmed) {
		if !strings.HasPrefix(token, "dbname=") {
			continue
		}
		name := strings.TrimSpace(strings.TrimPrefix(token, "dbname="))
		name = strings.Trim(name, `"'`)
		if name != "" {
			return name
		}
	}

	return ""
}
