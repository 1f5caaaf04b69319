package pokemon

import (
	"fmt"
	"strings"
)

// The types below mirror the subset of the PokeAPI schema that is consumed.

// NamedResource is the {name, url} pair used throughout PokeAPI.
type NamedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ListResponse is returned by /pokemon?limit&offset and /type.
type ListResponse struct {
	Count    int             `json:"count"`
	Next     string          `json:"next"`
	Previous string          `json:"previous"`
	Results  []NamedResource `json:"results"`
}

// TypeResponse is returned by /type/{name}.
type TypeResponse struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Pokemon []struct {
		Slot    int           `json:"slot"`
		Pokemon NamedResource `json:"pokemon"`
	} `json:"pokemon"`
}

// Entries converts the type membership list to catalog entries.
func (r *TypeResponse) Entries() []CatalogEntry {
	out := make([]CatalogEntry, 0, len(r.Pokemon))
	for _, p := range r.Pokemon {
		out = append(out, CatalogEntry{Name: p.Pokemon.Name, URL: p.Pokemon.URL})
	}
	return out
}

type sprite struct {
	FrontDefault string `json:"front_default"`
}

// DetailResponse is returned by /pokemon/{nameOrId}.
type DetailResponse struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Types []struct {
		Slot int           `json:"slot"`
		Type NamedResource `json:"type"`
	} `json:"types"`
	Abilities []struct {
		Ability  NamedResource `json:"ability"`
		IsHidden bool          `json:"is_hidden"`
		Slot     int           `json:"slot"`
	} `json:"abilities"`
	Stats []struct {
		BaseStat int           `json:"base_stat"`
		Stat     NamedResource `json:"stat"`
	} `json:"stats"`
	Sprites struct {
		FrontDefault string            `json:"front_default"`
		Other        map[string]sprite `json:"other"`
	} `json:"sprites"`
}

// ToPokemon builds a display record from a detail response.
func (r *DetailResponse) ToPokemon() (*Pokemon, error) {
	if r.ID <= 0 {
		return nil, fmt.Errorf("invalid pokemon id %d", r.ID)
	}
	if r.Name == "" {
		return nil, fmt.Errorf("pokemon %d has no name", r.ID)
	}

	p := &Pokemon{
		ID:        r.ID,
		Name:      strings.ToLower(r.Name),
		Types:     make([]string, 0, len(r.Types)),
		Abilities: make([]string, 0, len(r.Abilities)),
		Stats:     make(map[StatName]int, len(StatOrder)),
		SpriteURL: r.spriteURL(),
	}
	for _, t := range r.Types {
		p.Types = append(p.Types, strings.ToLower(t.Type.Name))
	}
	for _, a := range r.Abilities {
		p.Abilities = append(p.Abilities, a.Ability.Name)
	}
	for _, s := range r.Stats {
		if IsKnownStat(s.Stat.Name) {
			p.Stats[StatName(s.Stat.Name)] = s.BaseStat
		}
	}
	return p, nil
}

// spriteURL picks official artwork, then dream world, then the default sprite.
func (r *DetailResponse) spriteURL() string {
	if s, ok := r.Sprites.Other["official-artwork"]; ok && s.FrontDefault != "" {
		return s.FrontDefault
	}
	if s, ok := r.Sprites.Other["dream_world"]; ok && s.FrontDefault != "" {
		return s.FrontDefault
	}
	if r.Sprites.FrontDefault != "" {
		return r.Sprites.FrontDefault
	}
	return PlaceholderSprite
}
