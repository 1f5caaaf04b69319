package pokeapi

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Sternrassler/pokedex-client/internal/testutil"
	"github.com/Sternrassler/pokedex-client/pkg/client"
)

func newTestService(t *testing.T, mock *testutil.MockPokeAPI) *Service {
	t.Helper()

	cfg := client.DefaultConfig("pokedex-client-test/1.0.0")
	cfg.BaseURL = mock.BaseURL()
	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}
	return NewService(c, nil)
}

func TestNormalizeKey(t *testing.T) {
	tests := map[string]string{
		" Pikachu ": "pikachu",
		"25":        "25",
		"MR-MIME":   "mr-mime",
		"   ":       "",
	}
	for in, want := range tests {
		if got := NormalizeKey(in); got != want {
			t.Errorf("NormalizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestService_Detail_CachesByAllAliases(t *testing.T) {
	mock := testutil.NewMockPokeAPI()
	defer mock.Close()
	mock.AddPokemon(testutil.MockPokemon{ID: 25, Name: "pikachu", Types: []string{"electric"}})

	s := newTestService(t, mock)
	ctx := context.Background()

	first, err := s.Detail(ctx, " PIKACHU ")
	if err != nil {
		t.Fatalf("Detail failed: %v", err)
	}

	for _, key := range []string{"pikachu", "25", "Pikachu"} {
		got, err := s.Detail(ctx, key)
		if err != nil {
			t.Fatalf("Detail(%q) failed: %v", key, err)
		}
		if got != first {
			t.Errorf("Detail(%q) returned a different instance", key)
		}
	}

	if n := mock.TotalRequests(); n != 1 {
		t.Errorf("server requests = %d, want 1", n)
	}
}

func TestService_Detail_JoinerRetriesAfterCancelledLeader(t *testing.T) {
	mock := testutil.NewMockPokeAPI()
	defer mock.Close()
	mock.AddPokemon(testutil.MockPokemon{ID: 6, Name: "charizard", Types: []string{"fire", "flying"}})
	mock.SetDelay(100 * time.Millisecond)

	s := newTestService(t, mock)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	var wg sync.WaitGroup
	var joinErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		time.Sleep(5 * time.Millisecond)
		_, joinErr = s.Detail(context.Background(), "charizard")
	}()

	start := time.Now()
	if _, err := s.Detail(ctx, "charizard"); err == nil {
		t.Error("Expected the short-lived caller to give up")
	}
	if elapsed := time.Since(start); elapsed >= 100*time.Millisecond {
		t.Errorf("cancelled caller returned after %v, want its request aborted", elapsed)
	}
	wg.Wait()

	if joinErr != nil {
		t.Errorf("joined caller failed: %v", joinErr)
	}
	// The cancelled request plus the joiner's own retry.
	if n := mock.RequestCount("/pokemon/charizard"); n != 2 {
		t.Errorf("detail requests = %d, want 2", n)
	}
	if s.Details().Len() != 1 {
		t.Errorf("cached records = %d, want 1", s.Details().Len())
	}
}

func TestService_Detail_NotFound(t *testing.T) {
	mock := testutil.NewMockPokeAPI()
	defer mock.Close()

	s := newTestService(t, mock)
	_, err := s.Detail(context.Background(), "missingno")
	if !client.IsNotFound(err) {
		t.Errorf("Expected not-found error, got %v", err)
	}
	if s.Details().Len() != 0 {
		t.Error("failed lookup must not be cached")
	}
}

func TestService_Detail_EmptyKey(t *testing.T) {
	mock := testutil.NewMockPokeAPI()
	defer mock.Close()

	s := newTestService(t, mock)
	if _, err := s.Detail(context.Background(), "  "); err == nil {
		t.Error("Expected error for empty key")
	}
	if mock.TotalRequests() != 0 {
		t.Error("empty key must not hit the network")
	}
}

func TestService_Detail_DeduplicatesInFlight(t *testing.T) {
	mock := testutil.NewMockPokeAPI()
	defer mock.Close()
	mock.AddPokemon(testutil.MockPokemon{ID: 1, Name: "bulbasaur"})
	mock.SetDelay(100 * time.Millisecond)

	s := newTestService(t, mock)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Detail(context.Background(), "bulbasaur"); err != nil {
				t.Errorf("Detail failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if n := mock.RequestCount("/pokemon/bulbasaur"); n != 1 {
		t.Errorf("detail requests = %d, want 1", n)
	}
}

func TestService_ListPage(t *testing.T) {
	mock := testutil.NewMockPokeAPI()
	defer mock.Close()
	for _, p := range testutil.Fixtures(30) {
		mock.AddPokemon(p)
	}

	s := newTestService(t, mock)
	ctx := context.Background()

	page, err := s.ListPage(ctx, 24, 24)
	if err != nil {
		t.Fatalf("ListPage failed: %v", err)
	}
	if len(page) != 6 {
		t.Fatalf("len(page) = %d, want 6", len(page))
	}
	if page[0].Name != "mon-025" {
		t.Errorf("page[0] = %q, want mon-025", page[0].Name)
	}

	if _, err := s.ListPage(ctx, -1, 24); err == nil {
		t.Error("Expected error for negative offset")
	}
}

func TestService_TypeCatalog(t *testing.T) {
	mock := testutil.NewMockPokeAPI()
	defer mock.Close()
	mock.SetTypes("fire", "water", "flying")
	for _, p := range testutil.Fixtures(10) {
		mock.AddPokemon(p)
	}

	s := newTestService(t, mock)

	entries, err := s.TypeCatalog(context.Background(), "Fire")
	if err != nil {
		t.Fatalf("TypeCatalog failed: %v", err)
	}
	if len(entries) != 5 {
		t.Errorf("len(entries) = %d, want 5", len(entries))
	}

	if _, err := s.TypeCatalog(context.Background(), "nope"); !client.IsNotFound(err) {
		t.Errorf("Expected not-found for unknown type, got %v", err)
	}
}

func TestService_Types(t *testing.T) {
	mock := testutil.NewMockPokeAPI()
	defer mock.Close()
	mock.SetTypes("water", "Shadow", "fire", "unknown", "bug")

	s := newTestService(t, mock)

	types, err := s.Types(context.Background())
	if err != nil {
		t.Fatalf("Types failed: %v", err)
	}

	want := []string{"bug", "fire", "water"}
	if len(types) != len(want) {
		t.Fatalf("Types = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("Types[%d] = %q, want %q", i, types[i], want[i])
		}
	}
}

func TestService_Types_Unavailable(t *testing.T) {
	mock := testutil.NewMockPokeAPI()
	defer mock.Close()
	mock.SetResponse("/type", testutil.NewServerErrorResponse())

	s := newTestService(t, mock)
	if _, err := s.Types(context.Background()); err == nil {
		t.Error("Expected error when type list is unavailable")
	}
}
