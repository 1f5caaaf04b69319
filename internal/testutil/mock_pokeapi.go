// Package testutil provides a fake PokeAPI server for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// APIPrefix is the path prefix served by the mock, matching PokeAPI v2.
const APIPrefix = "/api/v2"

// MockResponse defines a canned response for a path.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockPokemon is a Pokémon known to the mock.
type MockPokemon struct {
	ID        int
	Name      string
	Types     []string
	Abilities []string
	Stats     map[string]int
	Sprite    string
}

// MockPokeAPI is a configurable in-process PokeAPI.
type MockPokeAPI struct {
	server *httptest.Server

	mu        sync.RWMutex
	pokemon   map[string]MockPokemon // by name and by id string
	listing   []string               // /pokemon listing order
	types     []string               // /type listing
	overrides map[string]MockResponse

	delay time.Duration

	// Tracking
	requests    map[string]int
	inFlight    int
	maxInFlight int
	lastHeaders http.Header
}

// NewMockPokeAPI starts a mock server.
func NewMockPokeAPI() *MockPokeAPI {
	m := &MockPokeAPI{
		pokemon:   make(map[string]MockPokemon),
		overrides: make(map[string]MockResponse),
		requests:  make(map[string]int),
	}
	m.server = httptest.NewServer(http.HandlerFunc(m.serve))
	return m
}

// URL returns the server root URL.
func (m *MockPokeAPI) URL() string {
	return m.server.URL
}

// BaseURL returns the API root to configure clients with.
func (m *MockPokeAPI) BaseURL() string {
	return m.server.URL + APIPrefix
}

// Close shuts down the mock server.
func (m *MockPokeAPI) Close() {
	m.server.Close()
}

// AddPokemon registers a Pokémon for detail lookups and appends it to the listing.
func (m *MockPokeAPI) AddPokemon(p MockPokemon) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pokemon[strings.ToLower(p.Name)] = p
	m.pokemon[strconv.Itoa(p.ID)] = p
	m.listing = append(m.listing, strings.ToLower(p.Name))
}

// AddListingOnly appends a name to the listing without a detail record,
// so its detail lookup answers 404.
func (m *MockPokeAPI) AddListingOnly(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listing = append(m.listing, name)
}

// SetDelay makes every detail request sleep for d before answering.
func (m *MockPokeAPI) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// SetTypes sets the /type listing.
func (m *MockPokeAPI) SetTypes(types ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.types = append([]string(nil), types...)
}

// SetResponse overrides the response for a path below APIPrefix, e.g. "/pokemon/25".
func (m *MockPokeAPI) SetResponse(path string, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.overrides[APIPrefix+path] = resp
}

// RequestCount returns how many requests hit a path below APIPrefix.
func (m *MockPokeAPI) RequestCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requests[APIPrefix+path]
}

// TotalRequests returns the number of requests served.
func (m *MockPokeAPI) TotalRequests() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, n := range m.requests {
		total += n
	}
	return total
}

// MaxInFlight returns the highest number of concurrent requests observed.
func (m *MockPokeAPI) MaxInFlight() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.maxInFlight
}

// LastRequestHeader returns the headers of the most recent request.
func (m *MockPokeAPI) LastRequestHeader() http.Header {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastHeaders
}

// Reset clears tracking counters.
func (m *MockPokeAPI) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = make(map[string]int)
	m.maxInFlight = 0
	m.lastHeaders = nil
}

func (m *MockPokeAPI) serve(w http.ResponseWriter, r *http.Request) {
	m.mu.Lock()
	m.requests[r.URL.Path]++
	m.lastHeaders = r.Header.Clone()
	m.inFlight++
	if m.inFlight > m.maxInFlight {
		m.maxInFlight = m.inFlight
	}
	override, hasOverride := m.overrides[r.URL.Path]
	delay := m.delay
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if hasOverride {
		writeResponse(w, override)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, APIPrefix)
	switch {
	case path == "/pokemon" || path == "/pokemon/":
		m.serveListing(w, r)
	case strings.HasPrefix(path, "/pokemon/"):
		if delay > 0 {
			time.Sleep(delay)
		}
		m.serveDetail(w, strings.TrimPrefix(path, "/pokemon/"))
	case path == "/type" || path == "/type/":
		m.serveTypes(w)
	case strings.HasPrefix(path, "/type/"):
		m.serveTypeMembers(w, strings.TrimPrefix(path, "/type/"))
	default:
		http.NotFound(w, r)
	}
}

func (m *MockPokeAPI) serveListing(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	if limit <= 0 {
		limit = 20
	}

	m.mu.RLock()
	total := len(m.listing)
	start := min(offset, total)
	end := min(offset+limit, total)
	names := append([]string(nil), m.listing[start:end]...)
	m.mu.RUnlock()

	results := make([]map[string]string, 0, len(names))
	for _, name := range names {
		results = append(results, map[string]string{
			"name": name,
			"url":  fmt.Sprintf("%s%s/pokemon/%s/", m.server.URL, APIPrefix, name),
		})
	}
	writeJSON(w, map[string]any{"count": total, "results": results})
}

func (m *MockPokeAPI) serveDetail(w http.ResponseWriter, key string) {
	key = strings.ToLower(strings.Trim(key, "/"))

	m.mu.RLock()
	p, ok := m.pokemon[key]
	m.mu.RUnlock()
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("Not Found"))
		return
	}

	types := make([]map[string]any, 0, len(p.Types))
	for i, t := range p.Types {
		types = append(types, map[string]any{"slot": i + 1, "type": map[string]string{"name": t}})
	}
	abilities := make([]map[string]any, 0, len(p.Abilities))
	for i, a := range p.Abilities {
		abilities = append(abilities, map[string]any{"slot": i + 1, "ability": map[string]string{"name": a}})
	}
	statNames := make([]string, 0, len(p.Stats))
	for name := range p.Stats {
		statNames = append(statNames, name)
	}
	sort.Strings(statNames)
	stats := make([]map[string]any, 0, len(p.Stats))
	for _, name := range statNames {
		stats = append(stats, map[string]any{"base_stat": p.Stats[name], "stat": map[string]string{"name": name}})
	}

	writeJSON(w, map[string]any{
		"id":        p.ID,
		"name":      p.Name,
		"types":     types,
		"abilities": abilities,
		"stats":     stats,
		"sprites": map[string]any{
			"front_default": p.Sprite,
			"other":         map[string]any{},
		},
	})
}

func (m *MockPokeAPI) serveTypes(w http.ResponseWriter) {
	m.mu.RLock()
	types := append([]string(nil), m.types...)
	m.mu.RUnlock()

	results := make([]map[string]string, 0, len(types))
	for _, t := range types {
		results = append(results, map[string]string{"name": t})
	}
	writeJSON(w, map[string]any{"count": len(results), "results": results})
}

func (m *MockPokeAPI) serveTypeMembers(w http.ResponseWriter, typeName string) {
	typeName = strings.ToLower(strings.Trim(typeName, "/"))

	m.mu.RLock()
	known := false
	for _, t := range m.types {
		if t == typeName {
			known = true
			break
		}
	}
	var members []map[string]any
	for _, name := range m.listing {
		p, ok := m.pokemon[name]
		if !ok {
			continue
		}
		for _, t := range p.Types {
			if t == typeName {
				members = append(members, map[string]any{
					"slot": 1,
					"pokemon": map[string]string{
						"name": name,
						"url":  fmt.Sprintf("%s%s/pokemon/%d/", m.server.URL, APIPrefix, p.ID),
					},
				})
				break
			}
		}
	}
	m.mu.RUnlock()

	if !known && len(members) == 0 {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("Not Found"))
		return
	}
	writeJSON(w, map[string]any{"name": typeName, "pokemon": members})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(v)
}

func writeResponse(w http.ResponseWriter, resp MockResponse) {
	if resp.Delay > 0 {
		time.Sleep(resp.Delay)
	}
	for key, value := range resp.Headers {
		w.Header().Set(key, value)
	}
	if resp.StatusCode == 0 {
		resp.StatusCode = http.StatusOK
	}
	w.WriteHeader(resp.StatusCode)
	if resp.Body != "" {
		w.Write([]byte(resp.Body))
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error": "Internal server error"}`,
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
	}
}

// NewNotFoundResponse creates a 404 Not Found response.
func NewNotFoundResponse() MockResponse {
	return MockResponse{StatusCode: http.StatusNotFound, Body: "Not Found"}
}

// NewCacheableResponse creates a 200 response carrying validators.
func NewCacheableResponse(body, etag string, maxAge time.Duration) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers: map[string]string{
			"Content-Type":  "application/json; charset=utf-8",
			"ETag":          etag,
			"Cache-Control": fmt.Sprintf("public, max-age=%d", int(maxAge.Seconds())),
		},
	}
}

// Fixtures returns n generated Pokémon with ids 1..n. Even ids are "fire",
// odd ids "water"; every fifth is also "flying".
func Fixtures(n int) []MockPokemon {
	out := make([]MockPokemon, 0, n)
	for id := 1; id <= n; id++ {
		types := []string{"water"}
		if id%2 == 0 {
			types = []string{"fire"}
		}
		if id%5 == 0 {
			types = append(types, "flying")
		}
		out = append(out, MockPokemon{
			ID:        id,
			Name:      fmt.Sprintf("mon-%03d", id),
			Types:     types,
			Abilities: []string{"overgrow"},
			Stats:     map[string]int{"hp": 40 + id, "speed": 30 + id},
			Sprite:    fmt.Sprintf("https://img.example/%d.png", id),
		})
	}
	return out
}
