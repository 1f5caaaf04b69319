package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Key identifies a cached PokeAPI response.
type Key struct {
	// Path is the request path (e.g., "/api/v2/pokemon")
	Path string

	// Query holds the query parameters (e.g., limit and offset)
	Query url.Values
}

// KeyFromURL builds a cache key from a request URL.
func KeyFromURL(u *url.URL) Key {
	return Key{Path: u.Path, Query: u.Query()}
}

// String generates a deterministic Redis key.
// Format: pokeapi:path:param1=val1:param2=val2
//
// Example:
//
//	pokeapi:api/v2/pokemon:limit=24:offset=0
func (k Key) String() string {
	parts := []string{"pokeapi"}

	path := strings.ToLower(strings.Trim(k.Path, "/"))
	if path != "" {
		parts = append(parts, path)
	}

	if len(k.Query) > 0 {
		names := make([]string, 0, len(k.Query))
		for name := range k.Query {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s=%s", name, k.Query.Get(name)))
		}
	}

	return strings.Join(parts, ":")
}
