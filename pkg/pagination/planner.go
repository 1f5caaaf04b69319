package pagination

import (
	"context"
	"fmt"

	"github.com/Sternrassler/pokedex-client/pkg/client"
	"github.com/Sternrassler/pokedex-client/pkg/pokemon"
	"github.com/Sternrassler/pokedex-client/pkg/sorting"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Severity classifies a user-facing notice.
type Severity string

const (
	SeverityError Severity = "error"
	SeverityInfo  Severity = "info"
)

// Notice is a human-readable message for the user.
type Notice struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// Page is one loaded page of records, sorted by the query's sort key.
type Page struct {
	Records []*pokemon.Pokemon `json:"records"`
	HasMore bool               `json:"has_more"`
	Notice  *Notice            `json:"notice,omitempty"`
}

// Source provides the identifier listings. *pokeapi.Service implements it.
type Source interface {
	ListPage(ctx context.Context, offset, limit int) ([]pokemon.CatalogEntry, error)
	TypeCatalog(ctx context.Context, typeName string) ([]pokemon.CatalogEntry, error)
}

// API is everything the planner needs from PokeAPI.
type API interface {
	Source
	DetailFetcher
}

// Planner decides which identifiers make up the next page of a query.
type Planner struct {
	api    API
	batch  *BatchFetcher
	logger zerolog.Logger
}

// NewPlanner creates a planner. A nil batch fetcher gets one with DefaultConfig.
func NewPlanner(api API, batch *BatchFetcher) *Planner {
	if batch == nil {
		batch = NewBatchFetcher(api, DefaultConfig())
	}
	return &Planner{
		api:    api,
		batch:  batch,
		logger: log.With().Str("component", "planner").Logger(),
	}
}

// NextPage loads the page following st and returns it with the advanced
// state. A state with HasMore false yields an empty page and itself. On
// error the returned state is st unchanged.
func (p *Planner) NextPage(ctx context.Context, st QueryState) (Page, QueryState, error) {
	if !st.HasMore {
		return Page{Records: []*pokemon.Pokemon{}}, st, nil
	}

	var (
		page Page
		next QueryState
		err  error
	)
	switch st.Mode {
	case ModeList:
		page, next, err = p.listPage(ctx, st)
	case ModeType:
		page, next, err = p.typePage(ctx, st)
	case ModeSearch:
		page, next, err = p.searchPage(ctx, st)
	default:
		return Page{}, st, fmt.Errorf("unknown query mode %q", st.Mode)
	}
	if err != nil {
		p.logger.Warn().
			Err(err).
			Str("mode", string(st.Mode)).
			Msg("Page load failed")
		return Page{}, st, err
	}

	page.Records = sorting.Sort(page.Records, st.SortKey)
	page.HasMore = next.HasMore

	p.logger.Debug().
		Str("mode", string(st.Mode)).
		Int("records", len(page.Records)).
		Bool("has_more", next.HasMore).
		Msg("Page loaded")
	return page, next, nil
}

func (p *Planner) listPage(ctx context.Context, st QueryState) (Page, QueryState, error) {
	entries, err := p.api.ListPage(ctx, st.Offset, st.PageSize)
	if err != nil {
		return Page{}, st, err
	}

	records, err := p.batch.FetchMany(ctx, pokemon.Names(entries))
	if err != nil {
		return Page{}, st, err
	}

	next := st
	next.Offset += st.PageSize
	// A short listing page means the end was reached.
	next.HasMore = len(entries) == st.PageSize
	return Page{Records: records}, next, nil
}

func (p *Planner) typePage(ctx context.Context, st QueryState) (Page, QueryState, error) {
	next := st
	if !next.CatalogLoaded {
		catalog, err := p.api.TypeCatalog(ctx, st.FilterType)
		if err != nil {
			return Page{}, st, err
		}
		next.Catalog = catalog
		next.CatalogLoaded = true
		next.Cursor = 0
	}

	end := min(next.Cursor+next.PageSize, len(next.Catalog))
	slice := next.Catalog[next.Cursor:end]

	records, err := p.batch.FetchMany(ctx, pokemon.Names(slice))
	if err != nil {
		return Page{}, st, err
	}

	next.Cursor += len(slice)
	next.HasMore = next.Cursor < len(next.Catalog)
	return Page{Records: records}, next, nil
}

func (p *Planner) searchPage(ctx context.Context, st QueryState) (Page, QueryState, error) {
	next := st
	next.HasMore = false

	found, err := p.api.Detail(ctx, st.Query)
	if client.IsNotFound(err) {
		return Page{
			Records: []*pokemon.Pokemon{},
			Notice: &Notice{
				Severity: SeverityInfo,
				Message:  fmt.Sprintf("No Pokémon matches %q.", st.Query),
			},
		}, next, nil
	}
	if err != nil {
		return Page{}, st, err
	}

	if st.FilterType != "" && !found.HasType(st.FilterType) {
		return Page{
			Records: []*pokemon.Pokemon{},
			Notice: &Notice{
				Severity: SeverityInfo,
				Message:  fmt.Sprintf("%q is not of type %q.", st.Query, st.FilterType),
			},
		}, next, nil
	}

	return Page{Records: []*pokemon.Pokemon{found}}, next, nil
}
