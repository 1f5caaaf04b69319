package cache

import (
	"strconv"
	"strings"
	"sync"

	"github.com/Sternrassler/pokedex-client/pkg/pokemon"
)

// DetailCache stores Pokémon records under one canonical id with alias keys
// pointing at it. It never evicts. Safe for concurrent use.
type DetailCache struct {
	mu      sync.RWMutex
	records map[int]*pokemon.Pokemon
	aliases map[string]int
}

// NewDetailCache creates an empty detail cache.
func NewDetailCache() *DetailCache {
	return &DetailCache{
		records: make(map[int]*pokemon.Pokemon),
		aliases: make(map[string]int),
	}
}

// Get returns the record registered under key.
func (c *DetailCache) Get(key string) (*pokemon.Pokemon, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	id, ok := c.aliases[key]
	if !ok {
		DetailCacheMisses.Inc()
		return nil, false
	}
	DetailCacheHits.Inc()
	return c.records[id], true
}

// Put stores rec and registers key, its id and its lowercase name as aliases.
// It returns the canonical instance: when a record with the same id is
// already present, that instance is kept and returned.
func (c *DetailCache) Put(key string, rec *pokemon.Pokemon) *pokemon.Pokemon {
	if rec == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	canonical, ok := c.records[rec.ID]
	if !ok {
		canonical = rec
		c.records[rec.ID] = rec
		DetailCacheRecords.Set(float64(len(c.records)))
	}

	for _, alias := range []string{key, strconv.Itoa(rec.ID), strings.ToLower(rec.Name)} {
		if alias != "" {
			c.aliases[alias] = rec.ID
		}
	}
	return canonical
}

// Len returns the number of distinct records.
func (c *DetailCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// Aliases returns the number of registered alias keys.
func (c *DetailCache) Aliases() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.aliases)
}
