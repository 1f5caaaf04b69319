package pagination

import (
	"strings"

	"github.com/Sternrassler/pokedex-client/pkg/pokemon"
	"github.com/Sternrassler/pokedex-client/pkg/sorting"
)

// DefaultPageSize is the number of Pokémon per page.
const DefaultPageSize = 24

// Mode is the browsing mode of a query.
type Mode string

const (
	// ModeList pages the numbered /pokemon listing.
	ModeList Mode = "list"

	// ModeType pages the members of one type.
	ModeType Mode = "type"

	// ModeSearch looks up a single Pokémon by name or id.
	ModeSearch Mode = "search"
)

// SelectMode picks the mode for normalized search text and type filter.
func SelectMode(search, typeFilter string) Mode {
	switch {
	case search != "":
		return ModeSearch
	case typeFilter != "":
		return ModeType
	default:
		return ModeList
	}
}

// QueryState is the position of one browsing session. It is a value: the
// Planner returns updated copies and never modifies a state it was given.
type QueryState struct {
	Mode       Mode
	Query      string
	FilterType string
	SortKey    sorting.Key
	PageSize   int

	// Offset is the next listing offset in list mode.
	Offset int

	// Cursor is the next catalog index in type mode.
	Cursor int

	// Catalog holds the full type membership once loaded. Shared between
	// state copies and never modified.
	Catalog       []pokemon.CatalogEntry
	CatalogLoaded bool

	HasMore bool
}

// NewQueryState creates the initial state for a query. Search text and type
// are trimmed and lowercased; a non-positive page size uses DefaultPageSize.
func NewQueryState(search, typeFilter string, sortKey sorting.Key, pageSize int) QueryState {
	search = strings.ToLower(strings.TrimSpace(search))
	typeFilter = strings.ToLower(strings.TrimSpace(typeFilter))
	if sortKey == "" {
		sortKey = sorting.DefaultKey
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	return QueryState{
		Mode:       SelectMode(search, typeFilter),
		Query:      search,
		FilterType: typeFilter,
		SortKey:    sortKey,
		PageSize:   pageSize,
		HasMore:    true,
	}
}

// IsFirstPage reports whether no page has been loaded for the state yet.
func (s QueryState) IsFirstPage() bool {
	return s.Offset == 0 && s.Cursor == 0 && !s.CatalogLoaded && s.HasMore
}
