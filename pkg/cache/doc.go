// Package cache provides the two caching layers of the PokeAPI client.
//
// DetailCache is an in-process store of decoded Pokémon records. Each record is
// stored once under its id and reachable through any number of alias keys
// (the raw lookup key, the id as a string, the lowercase name), so every alias
// resolves to the identical *pokemon.Pokemon instance.
//
// ResponseCache is an optional Redis-backed store of raw JSON responses shared
// between processes. Entries keep their ETag and Last-Modified validators so
// stale entries can be revalidated with a conditional request instead of a
// full download.
//
// # Detail cache
//
//	details := cache.NewDetailCache()
//	details.Put("25", pikachu)
//	p, ok := details.Get("pikachu") // same pointer as pikachu
//
// # Response cache
//
//	redisClient := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	responses := cache.NewResponseCache(redisClient, cache.DefaultStaleWindow)
//
//	key := cache.Key{Path: "/api/v2/pokemon", Query: url.Values{"limit": {"24"}}}
//	entry, err := responses.Get(ctx, key)
//	if errors.Is(err, cache.ErrCacheMiss) {
//		// fetch from PokeAPI, then store with EntryFromResponse + Set
//	}
//
//	if entry.IsExpired() && entry.CanRevalidate() {
//		cache.AddConditionalHeaders(req, entry)
//	}
//
// # Metrics
//
//   - pokeapi_detail_cache_hits_total / pokeapi_detail_cache_misses_total
//   - pokeapi_detail_cache_records
//   - pokeapi_response_cache_hits_total{state="fresh|stale"}
//   - pokeapi_response_cache_misses_total
//   - pokeapi_304_responses_total
//   - pokeapi_response_cache_errors_total{operation}
package cache
