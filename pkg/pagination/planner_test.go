package pagination

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Sternrassler/pokedex-client/internal/testutil"
	"github.com/Sternrassler/pokedex-client/pkg/client"
	"github.com/Sternrassler/pokedex-client/pkg/pokeapi"
	"github.com/Sternrassler/pokedex-client/pkg/pokemon"
	"github.com/Sternrassler/pokedex-client/pkg/sorting"
)

func TestSelectMode(t *testing.T) {
	tests := []struct {
		search, typ string
		want        Mode
	}{
		{"pikachu", "", ModeSearch},
		{"pikachu", "fire", ModeSearch},
		{"", "fire", ModeType},
		{"", "", ModeList},
	}
	for _, tt := range tests {
		if got := SelectMode(tt.search, tt.typ); got != tt.want {
			t.Errorf("SelectMode(%q, %q) = %q, want %q", tt.search, tt.typ, got, tt.want)
		}
	}
}

func TestNewQueryState(t *testing.T) {
	st := NewQueryState("  PikaChu ", " FIRE", "", 0)

	if st.Mode != ModeSearch {
		t.Errorf("Mode = %q, want search", st.Mode)
	}
	if st.Query != "pikachu" || st.FilterType != "fire" {
		t.Errorf("Query=%q FilterType=%q, want normalized", st.Query, st.FilterType)
	}
	if st.SortKey != sorting.DefaultKey {
		t.Errorf("SortKey = %q, want default", st.SortKey)
	}
	if st.PageSize != DefaultPageSize {
		t.Errorf("PageSize = %d, want %d", st.PageSize, DefaultPageSize)
	}
	if !st.HasMore || !st.IsFirstPage() {
		t.Error("new state should be on its first page")
	}
}

func TestPlanner_ListMode(t *testing.T) {
	api := newFakeAPI()
	api.addRange(30)
	planner := NewPlanner(api, NewBatchFetcher(api, Config{MaxConcurrency: 4}))
	ctx := context.Background()

	st := NewQueryState("", "", sorting.IDAsc, 24)

	page, next, err := planner.NextPage(ctx, st)
	if err != nil {
		t.Fatalf("first page failed: %v", err)
	}
	if len(page.Records) != 24 || !page.HasMore {
		t.Errorf("first page: %d records, hasMore=%v; want 24, true", len(page.Records), page.HasMore)
	}
	if next.Offset != 24 {
		t.Errorf("Offset = %d, want 24", next.Offset)
	}
	if st.Offset != 0 {
		t.Error("input state must not be modified")
	}

	page, next, err = planner.NextPage(ctx, next)
	if err != nil {
		t.Fatalf("second page failed: %v", err)
	}
	if len(page.Records) != 6 || page.HasMore {
		t.Errorf("second page: %d records, hasMore=%v; want 6, false", len(page.Records), page.HasMore)
	}
	if got := ids(page.Records); got[0] != 25 || got[5] != 30 {
		t.Errorf("second page ids = %v, want 25..30 sorted", got)
	}

	// hasMore=false is terminal.
	calls := api.listCalls
	page, after, err := planner.NextPage(ctx, next)
	if err != nil {
		t.Fatalf("terminal page failed: %v", err)
	}
	if len(page.Records) != 0 || page.HasMore {
		t.Error("terminal state should yield an empty page")
	}
	if api.listCalls != calls {
		t.Error("terminal state must not hit the listing")
	}
	if after.Offset != next.Offset {
		t.Error("terminal state must be returned unchanged")
	}
}

func TestPlanner_ListMode_ExactMultipleNeedsExtraPage(t *testing.T) {
	api := newFakeAPI()
	api.addRange(24)
	planner := NewPlanner(api, nil)

	page, next, err := planner.NextPage(context.Background(), NewQueryState("", "", "", 24))
	if err != nil {
		t.Fatalf("NextPage failed: %v", err)
	}
	if !page.HasMore {
		t.Error("a full page reports more data even at the exact end")
	}

	page, _, err = planner.NextPage(context.Background(), next)
	if err != nil {
		t.Fatalf("NextPage failed: %v", err)
	}
	if len(page.Records) != 0 || page.HasMore {
		t.Errorf("page after exact end: %d records, hasMore=%v", len(page.Records), page.HasMore)
	}
}

func TestPlanner_ListMode_ListingError(t *testing.T) {
	api := newFakeAPI()
	api.listErr = errors.New("listing down")
	planner := NewPlanner(api, nil)

	st := NewQueryState("", "", "", 24)
	_, next, err := planner.NextPage(context.Background(), st)
	if err == nil {
		t.Fatal("Expected listing error")
	}
	if next.Offset != st.Offset || !next.HasMore {
		t.Error("state must be unchanged after an error")
	}
}

func TestPlanner_ListMode_CachedIdentifiersNotRefetched(t *testing.T) {
	mock := testutil.NewMockPokeAPI()
	defer mock.Close()
	for _, p := range testutil.Fixtures(24) {
		mock.AddPokemon(p)
	}
	// The second page repeats an identifier from the first one.
	mock.AddListingOnly("mon-001")
	mock.AddListingOnly("mon-007")

	cfg := client.DefaultConfig("pokedex-client-test/1.0.0")
	cfg.BaseURL = mock.BaseURL()
	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("client.New failed: %v", err)
	}
	service := pokeapi.NewService(c, nil)
	planner := NewPlanner(service, NewBatchFetcher(service, Config{MaxConcurrency: 6}))
	ctx := context.Background()

	_, next, err := planner.NextPage(ctx, NewQueryState("", "", "", 24))
	if err != nil {
		t.Fatalf("first page failed: %v", err)
	}
	page, _, err := planner.NextPage(ctx, next)
	if err != nil {
		t.Fatalf("second page failed: %v", err)
	}

	if len(page.Records) != 2 {
		t.Errorf("second page records = %d, want 2", len(page.Records))
	}
	for _, name := range []string{"mon-001", "mon-007"} {
		if n := mock.RequestCount("/pokemon/" + name); n != 1 {
			t.Errorf("%s fetched %d times, want 1", name, n)
		}
	}
}

func TestPlanner_TypeMode(t *testing.T) {
	api := newFakeAPI()
	var catalog []pokemon.CatalogEntry
	for id := 1; id <= 37; id++ {
		p := &pokemon.Pokemon{ID: id, Name: fmt.Sprintf("fire-%02d", id), Types: []string{"fire"}}
		api.add(p)
		catalog = append(catalog, pokemon.CatalogEntry{Name: p.Name})
	}
	api.catalogs["fire"] = catalog

	planner := NewPlanner(api, NewBatchFetcher(api, Config{MaxConcurrency: 5}))
	ctx := context.Background()

	st := NewQueryState("", "Fire", sorting.IDAsc, 24)
	if st.Mode != ModeType {
		t.Fatalf("Mode = %q, want type", st.Mode)
	}

	page, next, err := planner.NextPage(ctx, st)
	if err != nil {
		t.Fatalf("first page failed: %v", err)
	}
	if len(page.Records) != 24 || !page.HasMore {
		t.Errorf("first page: %d records, hasMore=%v; want 24, true", len(page.Records), page.HasMore)
	}
	if next.Cursor != 24 || !next.CatalogLoaded || len(next.Catalog) != 37 {
		t.Errorf("state after first page: cursor=%d loaded=%v catalog=%d", next.Cursor, next.CatalogLoaded, len(next.Catalog))
	}
	if st.CatalogLoaded || st.Catalog != nil {
		t.Error("input state must not be modified")
	}

	page, next, err = planner.NextPage(ctx, next)
	if err != nil {
		t.Fatalf("second page failed: %v", err)
	}
	if len(page.Records) != 13 || page.HasMore {
		t.Errorf("second page: %d records, hasMore=%v; want 13, false", len(page.Records), page.HasMore)
	}
	if next.Cursor != 37 {
		t.Errorf("Cursor = %d, want 37", next.Cursor)
	}
	if api.typeCalls != 1 {
		t.Errorf("type catalog fetched %d times, want 1", api.typeCalls)
	}
}

func TestPlanner_TypeMode_EmptyCatalog(t *testing.T) {
	api := newFakeAPI()
	api.catalogs["shadow"] = []pokemon.CatalogEntry{}
	planner := NewPlanner(api, nil)

	page, next, err := planner.NextPage(context.Background(), NewQueryState("", "shadow", "", 24))
	if err != nil {
		t.Fatalf("NextPage failed: %v", err)
	}
	if len(page.Records) != 0 || page.HasMore || next.HasMore {
		t.Errorf("empty catalog: %d records, hasMore=%v", len(page.Records), page.HasMore)
	}
}

func TestPlanner_TypeMode_CatalogError(t *testing.T) {
	api := newFakeAPI()
	planner := NewPlanner(api, nil)

	st := NewQueryState("", "nope", "", 24)
	_, next, err := planner.NextPage(context.Background(), st)
	if err == nil {
		t.Fatal("Expected catalog error")
	}
	if next.CatalogLoaded {
		t.Error("state must be unchanged after an error")
	}
}

func TestPlanner_SearchMode(t *testing.T) {
	pikachu := &pokemon.Pokemon{ID: 25, Name: "pikachu", Types: []string{"electric"}}

	tests := []struct {
		name        string
		search      string
		typeFilter  string
		wantRecords int
		wantNotice  bool
	}{
		{"found by name", "Pikachu", "", 1, false},
		{"found by id", "25", "", 1, false},
		{"matching type", "pikachu", "electric", 1, false},
		{"type mismatch", "pikachu", "fire", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := newFakeAPI()
			api.add(pikachu)
			planner := NewPlanner(api, nil)

			page, next, err := planner.NextPage(context.Background(), NewQueryState(tt.search, tt.typeFilter, "", 24))
			if err != nil {
				t.Fatalf("NextPage failed: %v", err)
			}
			if len(page.Records) != tt.wantRecords {
				t.Errorf("records = %d, want %d", len(page.Records), tt.wantRecords)
			}
			if (page.Notice != nil) != tt.wantNotice {
				t.Errorf("notice = %+v, want notice=%v", page.Notice, tt.wantNotice)
			}
			if page.Notice != nil && page.Notice.Severity != SeverityInfo {
				t.Errorf("severity = %q, want info", page.Notice.Severity)
			}
			if page.HasMore || next.HasMore {
				t.Error("search is single-shot")
			}
		})
	}
}

func TestPlanner_SearchMode_NotFound(t *testing.T) {
	mock := testutil.NewMockPokeAPI()
	defer mock.Close()

	cfg := client.DefaultConfig("pokedex-client-test/1.0.0")
	cfg.BaseURL = mock.BaseURL()
	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("client.New failed: %v", err)
	}
	planner := NewPlanner(pokeapi.NewService(c, nil), nil)

	page, next, err := planner.NextPage(context.Background(), NewQueryState("missingno", "", "", 24))
	if err != nil {
		t.Fatalf("404 in search must not be an error: %v", err)
	}
	if len(page.Records) != 0 {
		t.Errorf("records = %d, want 0", len(page.Records))
	}
	if page.Notice == nil || page.Notice.Severity != SeverityInfo {
		t.Errorf("notice = %+v, want info notice", page.Notice)
	}
	if next.HasMore {
		t.Error("search is single-shot")
	}
}

func TestPlanner_SearchMode_UpstreamError(t *testing.T) {
	api := newFakeAPI()
	api.detailErr = errors.New("upstream down")
	planner := NewPlanner(api, nil)

	st := NewQueryState("pikachu", "", "", 24)
	_, next, err := planner.NextPage(context.Background(), st)
	if err == nil {
		t.Fatal("Expected error")
	}
	if !next.HasMore {
		t.Error("state must be unchanged after an error")
	}
}

func TestPlanner_SortsPage(t *testing.T) {
	api := newFakeAPI()
	api.addRange(10)
	planner := NewPlanner(api, NewBatchFetcher(api, Config{MaxConcurrency: 10}))

	page, _, err := planner.NextPage(context.Background(), NewQueryState("", "", sorting.IDDesc, 10))
	if err != nil {
		t.Fatalf("NextPage failed: %v", err)
	}
	got := ids(page.Records)
	for i := 1; i < len(got); i++ {
		if got[i-1] < got[i] {
			t.Fatalf("ids not descending: %v", got)
		}
	}
}

func TestPlanner_UnknownMode(t *testing.T) {
	planner := NewPlanner(newFakeAPI(), nil)

	st := NewQueryState("", "", "", 24)
	st.Mode = Mode("bogus")
	if _, _, err := planner.NextPage(context.Background(), st); err == nil {
		t.Error("Expected error for unknown mode")
	}
}
