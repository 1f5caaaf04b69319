package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Sternrassler/pokedex-client/pkg/pagination"
	"github.com/Sternrassler/pokedex-client/pkg/pokemon"
	"github.com/Sternrassler/pokedex-client/pkg/sorting"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// User-facing notice texts.
const (
	LoadErrorMessage = "Could not load data from PokeAPI."
	InitErrorMessage = "Could not initialize the application"
	NoResultsMessage = "No results"
)

var (
	// ErrSuperseded is returned by a load whose query was replaced while it ran.
	ErrSuperseded = errors.New("browser: load superseded by a newer query")

	// ErrLoadInProgress is returned by LoadNextPage while another page of the
	// same query is still loading.
	ErrLoadInProgress = errors.New("browser: page load already in progress")
)

// Pager loads the page that follows a query state.
type Pager interface {
	NextPage(ctx context.Context, st pagination.QueryState) (pagination.Page, pagination.QueryState, error)
}

// TypeLister returns the selectable type names.
type TypeLister interface {
	Types(ctx context.Context) ([]string, error)
}

// InitError reports that the session could not start.
type InitError struct {
	Err error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("%s: %v", InitErrorMessage, e.Err)
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// Notice returns the notice shown for the failure.
func (e *InitError) Notice() pagination.Notice {
	return pagination.Notice{Severity: pagination.SeverityError, Message: InitErrorMessage}
}

// Session is one user's browsing session.
type Session struct {
	pager    Pager
	types    TypeLister
	pageSize int
	logger   zerolog.Logger

	mu         sync.Mutex
	state      pagination.QueryState
	generation uint64
	loading    bool
	cancel     context.CancelFunc
}

// NewSession creates a session in list mode. A non-positive page size uses
// pagination.DefaultPageSize.
func NewSession(pager Pager, types TypeLister, pageSize int) *Session {
	if pageSize <= 0 {
		pageSize = pagination.DefaultPageSize
	}
	return &Session{
		pager:    pager,
		types:    types,
		pageSize: pageSize,
		state:    pagination.NewQueryState("", "", sorting.DefaultKey, pageSize),
		logger:   log.With().Str("component", "browser").Logger(),
	}
}

// Init loads the type list. Failure is fatal for the session.
func (s *Session) Init(ctx context.Context) ([]string, error) {
	types, err := s.types.Types(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("Initialization failed")
		return nil, &InitError{Err: err}
	}
	s.logger.Info().Int("types", len(types)).Msg("Session initialized")
	return types, nil
}

// RunQuery replaces the current query and loads its first page. Any load
// still running for the previous query is cancelled.
func (s *Session) RunQuery(ctx context.Context, search, typeFilter string, sortKey sorting.Key) (pagination.Page, error) {
	st := pagination.NewQueryState(search, typeFilter, sortKey, s.pageSize)

	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
	}
	s.generation++
	s.state = st
	gen := s.generation
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.loading = true
	s.mu.Unlock()

	s.logger.Debug().
		Uint64("generation", gen).
		Str("mode", string(st.Mode)).
		Str("query", st.Query).
		Str("type", st.FilterType).
		Str("sort", string(st.SortKey)).
		Msg("Query started")

	return s.load(ctx, cancel, gen, st)
}

// LoadNextPage loads the next page of the current query. Once the query has
// no more data it returns an empty page without touching PokeAPI.
func (s *Session) LoadNextPage(ctx context.Context) (pagination.Page, error) {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		return pagination.Page{}, ErrLoadInProgress
	}
	st := s.state
	if !st.HasMore {
		s.mu.Unlock()
		return pagination.Page{Records: []*pokemon.Pokemon{}}, nil
	}
	gen := s.generation
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.loading = true
	s.mu.Unlock()

	return s.load(ctx, cancel, gen, st)
}

func (s *Session) load(ctx context.Context, cancel context.CancelFunc, gen uint64, st pagination.QueryState) (pagination.Page, error) {
	defer cancel()

	page, next, err := s.pager.NextPage(ctx, st)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.logger.Debug().
			Uint64("generation", gen).
			Uint64("current", s.generation).
			Msg("Discarding superseded page")
		return pagination.Page{}, ErrSuperseded
	}
	s.loading = false
	s.cancel = nil

	if err != nil {
		s.logger.Error().
			Err(err).
			Uint64("generation", gen).
			Str("mode", string(st.Mode)).
			Msg("Page load failed")
		return pagination.Page{
			Records: []*pokemon.Pokemon{},
			HasMore: st.HasMore,
			Notice:  &pagination.Notice{Severity: pagination.SeverityError, Message: LoadErrorMessage},
		}, fmt.Errorf("load page: %w", err)
	}

	s.state = next
	if page.Notice == nil && len(page.Records) == 0 && st.IsFirstPage() {
		page.Notice = &pagination.Notice{Severity: pagination.SeverityInfo, Message: NoResultsMessage}
	}
	return page, nil
}

// State returns a copy of the current query state.
func (s *Session) State() pagination.QueryState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// HasMore reports whether the current query may have further pages.
func (s *Session) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.HasMore
}

// Generation returns the number of queries started so far.
func (s *Session) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generation
}
