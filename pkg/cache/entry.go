package cache

import (
	"time"
)

// Entry is a cached PokeAPI response body with its HTTP validators.
type Entry struct {
	// Body is the raw JSON response body
	Body []byte `json:"body"`

	// ETag for If-None-Match revalidation
	ETag string `json:"etag"`

	// LastModified for If-Modified-Since revalidation
	LastModified time.Time `json:"last_modified"`

	// Expires is when the entry stops being fresh
	Expires time.Time `json:"expires"`

	// StoredAt is when the response was first cached
	StoredAt time.Time `json:"stored_at"`
}

// IsExpired returns true if the entry is no longer fresh.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the remaining freshness lifetime, or 0 if expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}

// CanRevalidate reports whether a conditional request can be made for the entry.
func (e *Entry) CanRevalidate() bool {
	return e.ETag != "" || !e.LastModified.IsZero()
}
