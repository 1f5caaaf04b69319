// Package sorting orders batches of Pokémon records for display.
package sorting

import (
	"cmp"
	"slices"

	"github.com/Sternrassler/pokedex-client/pkg/pokemon"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Key selects a sort order.
type Key string

const (
	IDAsc    Key = "id-asc"
	IDDesc   Key = "id-desc"
	NameAsc  Key = "name-asc"
	NameDesc Key = "name-desc"
)

// DefaultKey is used when no order is requested.
const DefaultKey = IDAsc

// Keys lists the supported sort keys.
var Keys = []Key{IDAsc, IDDesc, NameAsc, NameDesc}

// Valid reports whether k is a supported key.
func (k Key) Valid() bool {
	return slices.Contains(Keys, k)
}

// ParseKey returns the key for s, DefaultKey for an empty string, and
// false for an unsupported value.
func ParseKey(s string) (Key, bool) {
	if s == "" {
		return DefaultKey, true
	}
	k := Key(s)
	return k, k.Valid()
}

// Sort returns a sorted copy of records. The input is not modified and the
// sort is stable. Unknown keys keep the input order.
func Sort(records []*pokemon.Pokemon, key Key) []*pokemon.Pokemon {
	out := slices.Clone(records)
	if out == nil {
		out = []*pokemon.Pokemon{}
	}

	switch key {
	case IDAsc:
		slices.SortStableFunc(out, func(a, b *pokemon.Pokemon) int {
			return cmp.Compare(a.ID, b.ID)
		})
	case IDDesc:
		slices.SortStableFunc(out, func(a, b *pokemon.Pokemon) int {
			return cmp.Compare(b.ID, a.ID)
		})
	case NameAsc:
		c := newCollator()
		slices.SortStableFunc(out, func(a, b *pokemon.Pokemon) int {
			return c.CompareString(a.Name, b.Name)
		})
	case NameDesc:
		c := newCollator()
		slices.SortStableFunc(out, func(a, b *pokemon.Pokemon) int {
			return c.CompareString(b.Name, a.Name)
		})
	}
	return out
}

// newCollator returns a locale-aware comparer. Collators are not safe for
// concurrent use, so each sort gets its own.
func newCollator() *collate.Collator {
	return collate.New(language.English)
}
