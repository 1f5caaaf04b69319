// Package pokeapi exposes the PokeAPI endpoints used by the browser: the
// numbered listing, type catalogs, the type list and cached detail lookups.
package pokeapi

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/Sternrassler/pokedex-client/pkg/cache"
	"github.com/Sternrassler/pokedex-client/pkg/pokemon"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// excludedTypes are types with no regular Pokémon members.
var excludedTypes = map[string]bool{
	"unknown": true,
	"shadow":  true,
}

// JSONFetcher performs a GET and decodes the JSON body. *client.Client implements it.
type JSONFetcher interface {
	FetchJSON(ctx context.Context, target string, out any) error
}

// Service resolves PokeAPI resources into domain records.
type Service struct {
	fetcher  JSONFetcher
	details  *cache.DetailCache
	inflight singleflight.Group
	logger   zerolog.Logger
}

// NewService creates a service backed by fetcher. A nil details cache gets a fresh one.
func NewService(fetcher JSONFetcher, details *cache.DetailCache) *Service {
	if details == nil {
		details = cache.NewDetailCache()
	}
	return &Service{
		fetcher: fetcher,
		details: details,
		logger:  log.With().Str("component", "pokeapi").Logger(),
	}
}

// Details returns the detail cache.
func (s *Service) Details() *cache.DetailCache {
	return s.details
}

// NormalizeKey lowercases and trims a name-or-id lookup key.
func NormalizeKey(nameOrID string) string {
	return strings.ToLower(strings.TrimSpace(nameOrID))
}

// Detail returns the record for a name or numeric id. Cached records are
// returned without a network call, and concurrent lookups of the same key
// share one request.
//
// The shared request runs on the context of the caller that started it and
// every caller blocks until it returns, so a caller never leaves a request
// running behind it. A joiner whose leader was cancelled retries the lookup
// under its own context.
func (s *Service) Detail(ctx context.Context, nameOrID string) (*pokemon.Pokemon, error) {
	key := NormalizeKey(nameOrID)
	if key == "" {
		return nil, fmt.Errorf("empty pokemon key")
	}

	for {
		if p, ok := s.details.Get(key); ok {
			return p, nil
		}

		v, err, shared := s.inflight.Do(key, func() (any, error) {
			if p, ok := s.details.Get(key); ok {
				return p, nil
			}

			var resp pokemon.DetailResponse
			if err := s.fetcher.FetchJSON(ctx, "pokemon/"+url.PathEscape(key), &resp); err != nil {
				return nil, fmt.Errorf("fetch pokemon %q: %w", key, err)
			}
			p, err := resp.ToPokemon()
			if err != nil {
				return nil, fmt.Errorf("pokemon %q: %w", key, err)
			}
			return s.details.Put(key, p), nil
		})
		if err == nil {
			if shared {
				s.logger.Debug().Str("key", key).Msg("Joined in-flight detail request")
			}
			return v.(*pokemon.Pokemon), nil
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if shared && isContextError(err) {
			s.logger.Debug().Str("key", key).Msg("Shared detail request was cancelled, retrying")
			continue
		}
		return nil, err
	}
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ListPage returns the entries [offset, offset+limit) of the numbered listing.
func (s *Service) ListPage(ctx context.Context, offset, limit int) ([]pokemon.CatalogEntry, error) {
	if offset < 0 || limit <= 0 {
		return nil, fmt.Errorf("invalid page offset=%d limit=%d", offset, limit)
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))

	var resp pokemon.ListResponse
	if err := s.fetcher.FetchJSON(ctx, "pokemon?"+query.Encode(), &resp); err != nil {
		return nil, fmt.Errorf("fetch pokemon listing: %w", err)
	}

	entries := make([]pokemon.CatalogEntry, 0, len(resp.Results))
	for _, r := range resp.Results {
		entries = append(entries, pokemon.CatalogEntry{Name: r.Name, URL: r.URL})
	}

	s.logger.Debug().
		Int("offset", offset).
		Int("limit", limit).
		Int("returned", len(entries)).
		Msg("Fetched listing page")
	return entries, nil
}

// TypeCatalog returns every Pokémon of a type. The API does not page this list.
func (s *Service) TypeCatalog(ctx context.Context, typeName string) ([]pokemon.CatalogEntry, error) {
	typeName = NormalizeKey(typeName)
	if typeName == "" {
		return nil, fmt.Errorf("empty type name")
	}

	var resp pokemon.TypeResponse
	if err := s.fetcher.FetchJSON(ctx, "type/"+url.PathEscape(typeName), &resp); err != nil {
		return nil, fmt.Errorf("fetch type %q: %w", typeName, err)
	}

	entries := resp.Entries()
	s.logger.Debug().
		Str("type", typeName).
		Int("members", len(entries)).
		Msg("Fetched type catalog")
	return entries, nil
}

// Types returns the selectable type names, lowercased and sorted, without
// the member-less "unknown" and "shadow" types.
func (s *Service) Types(ctx context.Context) ([]string, error) {
	var resp pokemon.ListResponse
	if err := s.fetcher.FetchJSON(ctx, "type", &resp); err != nil {
		return nil, fmt.Errorf("fetch type list: %w", err)
	}

	types := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		name := strings.ToLower(r.Name)
		if name == "" || excludedTypes[name] {
			continue
		}
		types = append(types, name)
	}
	sort.Strings(types)
	return types, nil
}
