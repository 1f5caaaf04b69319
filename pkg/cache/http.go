package cache

import (
	"net/http"
	"time"
)

const (
	// DefaultTTL is the fallback freshness when no caching headers are present
	DefaultTTL = 5 * time.Minute
)

// EntryFromResponse builds a cache entry from a successful response and its body.
// fallbackTTL is used when the response has no usable Expires or Cache-Control max-age.
func EntryFromResponse(resp *http.Response, body []byte, fallbackTTL time.Duration) *Entry {
	now := time.Now()
	entry := &Entry{
		Body:     body,
		ETag:     resp.Header.Get("ETag"),
		Expires:  ParseExpires(resp.Header, fallbackTTL),
		StoredAt: now,
	}

	if lastModStr := resp.Header.Get("Last-Modified"); lastModStr != "" {
		if lastMod, err := http.ParseTime(lastModStr); err == nil {
			entry.LastModified = lastMod
		}
	}

	return entry
}

// ParseExpires returns the expiry announced by the response headers.
// Cache-Control max-age wins over Expires. Returns now+fallbackTTL when neither is usable.
func ParseExpires(headers http.Header, fallbackTTL time.Duration) time.Time {
	now := time.Now()

	if maxAge, ok := parseMaxAge(headers.Get("Cache-Control")); ok {
		return now.Add(maxAge)
	}

	expiresStr := headers.Get("Expires")
	if expiresStr == "" {
		return now.Add(fallbackTTL)
	}

	expires, err := http.ParseTime(expiresStr)
	if err != nil {
		return now.Add(fallbackTTL)
	}
	if expires.Before(now) {
		return now
	}
	return expires
}

// AddConditionalHeaders adds If-None-Match (ETag) or If-Modified-Since headers
// to the request when the entry carries a validator.
func AddConditionalHeaders(req *http.Request, entry *Entry) {
	if entry == nil || req == nil {
		return
	}

	if entry.ETag != "" {
		req.Header.Set("If-None-Match", entry.ETag)
	} else if !entry.LastModified.IsZero() {
		req.Header.Set("If-Modified-Since", entry.LastModified.UTC().Format(http.TimeFormat))
	}
}
