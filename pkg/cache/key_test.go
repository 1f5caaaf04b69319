package cache

import (
	"net/url"
	"testing"
)

func TestKey_String(t *testing.T) {
	tests := []struct {
		name string
		key  Key
		want string
	}{
		{
			name: "path only",
			key:  Key{Path: "/api/v2/type/"},
			want: "pokeapi:api/v2/type",
		},
		{
			name: "detail path is lowercased",
			key:  Key{Path: "/api/v2/pokemon/Pikachu"},
			want: "pokeapi:api/v2/pokemon/pikachu",
		},
		{
			name: "query params sorted",
			key: Key{
				Path:  "/api/v2/pokemon",
				Query: url.Values{"offset": {"24"}, "limit": {"24"}},
			},
			want: "pokeapi:api/v2/pokemon:limit=24:offset=24",
		},
		{
			name: "empty key",
			key:  Key{},
			want: "pokeapi",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.key.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKey_Deterministic(t *testing.T) {
	a := Key{Path: "/api/v2/pokemon", Query: url.Values{"limit": {"24"}, "offset": {"0"}}}
	b := Key{Path: "api/v2/pokemon/", Query: url.Values{"offset": {"0"}, "limit": {"24"}}}

	for i := 0; i < 10; i++ {
		if a.String() != b.String() {
			t.Fatalf("keys differ: %q vs %q", a.String(), b.String())
		}
	}
}

func TestKeyFromURL(t *testing.T) {
	u, err := url.Parse("https://pokeapi.co/api/v2/pokemon?limit=24&offset=48")
	if err != nil {
		t.Fatal(err)
	}

	got := KeyFromURL(u).String()
	want := "pokeapi:api/v2/pokemon:limit=24:offset=48"
	if got != want {
		t.Errorf("KeyFromURL = %q, want %q", got, want)
	}
}
