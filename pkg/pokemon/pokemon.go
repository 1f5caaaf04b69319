// Package pokemon defines the display records built from PokeAPI responses.
package pokemon

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// PlaceholderSprite is a transparent 1x1 GIF used when a Pokémon has no sprite.
const PlaceholderSprite = "data:image/gif;base64,R0lGODlhAQABAAAAACw="

// StatName is one of the six base stats.
type StatName string

const (
	StatHP             StatName = "hp"
	StatAttack         StatName = "attack"
	StatDefense        StatName = "defense"
	StatSpecialAttack  StatName = "special-attack"
	StatSpecialDefense StatName = "special-defense"
	StatSpeed          StatName = "speed"
)

// StatOrder is the display order of base stats.
var StatOrder = []StatName{
	StatHP,
	StatAttack,
	StatDefense,
	StatSpecialAttack,
	StatSpecialDefense,
	StatSpeed,
}

// IsKnownStat reports whether name is one of the six base stats.
func IsKnownStat(name string) bool {
	for _, s := range StatOrder {
		if string(s) == name {
			return true
		}
	}
	return false
}

// Pokemon is the normalized detail record for one Pokémon.
// Records are shared by pointer once cached and must not be modified.
type Pokemon struct {
	ID        int              `json:"id"`
	Name      string           `json:"name"`
	Types     []string         `json:"types"`
	Abilities []string         `json:"abilities"`
	Stats     map[StatName]int `json:"stats"`
	SpriteURL string           `json:"sprite_url"`
}

// HasType reports whether the Pokémon has the given type.
func (p *Pokemon) HasType(typeName string) bool {
	typeName = strings.ToLower(strings.TrimSpace(typeName))
	for _, t := range p.Types {
		if t == typeName {
			return true
		}
	}
	return false
}

// DisplayName returns the name with its first letter upper-cased.
func (p *Pokemon) DisplayName() string {
	return Capitalize(p.Name)
}

// DisplayID returns the id zero-padded to four digits, e.g. "#0025".
func (p *Pokemon) DisplayID() string {
	return fmt.Sprintf("#%04d", p.ID)
}

// StatValue is a stat paired with its base value.
type StatValue struct {
	Name  StatName
	Value int
	Known bool
}

// OrderedStats returns the six base stats in display order.
// Stats missing from the record have Known set to false.
func (p *Pokemon) OrderedStats() []StatValue {
	out := make([]StatValue, 0, len(StatOrder))
	for _, s := range StatOrder {
		v, ok := p.Stats[s]
		out = append(out, StatValue{Name: s, Value: v, Known: ok})
	}
	return out
}

// CatalogEntry is a lightweight reference from a listing endpoint.
type CatalogEntry struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Names returns the names of the given entries in order.
func Names(entries []CatalogEntry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// Capitalize upper-cases the first letter of s.
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
