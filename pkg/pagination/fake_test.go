package pagination

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Sternrassler/pokedex-client/pkg/pokemon"
)

var errFakeNotFound = errors.New("fake: not found")

// fakeAPI is an in-memory API that records concurrency and call counts.
type fakeAPI struct {
	mu          sync.Mutex
	records     map[string]*pokemon.Pokemon
	listing     []string
	catalogs    map[string][]pokemon.CatalogEntry
	failures    map[string]error
	delay       time.Duration
	inFlight    int
	maxInFlight int
	detailCalls map[string]int
	listCalls   int
	typeCalls   int
	listErr     error
	detailErr   error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		records:     make(map[string]*pokemon.Pokemon),
		catalogs:    make(map[string][]pokemon.CatalogEntry),
		failures:    make(map[string]error),
		detailCalls: make(map[string]int),
	}
}

// addRange registers pokemon 1..n named mon-NNN with alternating fire/water types.
func (f *fakeAPI) addRange(n int) {
	for id := 1; id <= n; id++ {
		t := "water"
		if id%2 == 0 {
			t = "fire"
		}
		f.add(&pokemon.Pokemon{ID: id, Name: fmt.Sprintf("mon-%03d", id), Types: []string{t}})
	}
}

func (f *fakeAPI) add(p *pokemon.Pokemon) {
	f.records[p.Name] = p
	f.records[fmt.Sprint(p.ID)] = p
	f.listing = append(f.listing, p.Name)
}

func (f *fakeAPI) Detail(ctx context.Context, nameOrID string) (*pokemon.Pokemon, error) {
	f.mu.Lock()
	f.detailCalls[nameOrID]++
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	delay := f.delay
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.mu.Unlock()
	}()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.detailErr != nil {
		return nil, f.detailErr
	}
	if err, ok := f.failures[nameOrID]; ok {
		return nil, err
	}
	p, ok := f.records[nameOrID]
	if !ok {
		return nil, errFakeNotFound
	}
	return p, nil
}

func (f *fakeAPI) ListPage(ctx context.Context, offset, limit int) ([]pokemon.CatalogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}

	start := min(offset, len(f.listing))
	end := min(offset+limit, len(f.listing))
	out := make([]pokemon.CatalogEntry, 0, end-start)
	for _, name := range f.listing[start:end] {
		out = append(out, pokemon.CatalogEntry{Name: name})
	}
	return out, nil
}

func (f *fakeAPI) TypeCatalog(ctx context.Context, typeName string) ([]pokemon.CatalogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.typeCalls++
	catalog, ok := f.catalogs[typeName]
	if !ok {
		return nil, errFakeNotFound
	}
	return catalog, nil
}

func (f *fakeAPI) calls(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.detailCalls[id]
}

func (f *fakeAPI) peakInFlight() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.maxInFlight
}

func ids(records []*pokemon.Pokemon) []int {
	out := make([]int, len(records))
	for i, r := range records {
		out[i] = r.ID
	}
	return out
}

// slowUpstream is a JSONFetcher for pokeapi.Service that counts concurrent
// upstream calls. When ignoreCtx is set it sleeps through cancellation like
// a transport that does not notice the caller leaving.
type slowUpstream struct {
	mu        sync.Mutex
	delay     time.Duration
	ignoreCtx bool
	active    int
	peak      int
	calls     int
}

func (u *slowUpstream) FetchJSON(ctx context.Context, target string, out any) error {
	u.mu.Lock()
	u.calls++
	u.active++
	if u.active > u.peak {
		u.peak = u.active
	}
	u.mu.Unlock()

	defer func() {
		u.mu.Lock()
		u.active--
		u.mu.Unlock()
	}()

	if u.ignoreCtx {
		time.Sleep(u.delay)
	} else {
		select {
		case <-time.After(u.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	name := strings.TrimPrefix(target, "pokemon/")
	var id int
	if _, err := fmt.Sscanf(name, "mon-%d", &id); err != nil {
		return fmt.Errorf("unexpected target %q", target)
	}
	resp := out.(*pokemon.DetailResponse)
	resp.ID = id
	resp.Name = name
	return nil
}

func (u *slowUpstream) stats() (active, peak, calls int) {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.active, u.peak, u.calls
}
