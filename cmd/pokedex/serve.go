package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Sternrassler/pokedex-client/pkg/browser"
	"github.com/Sternrassler/pokedex-client/pkg/client"
	"github.com/Sternrassler/pokedex-client/pkg/metrics"
	"github.com/Sternrassler/pokedex-client/pkg/pagination"
	"github.com/Sternrassler/pokedex-client/pkg/pokemon"
	"github.com/Sternrassler/pokedex-client/pkg/sorting"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the browser over HTTP",
		Long: `Serve exposes the browser as a JSON API:

  GET /health
  GET /metrics
  GET /api/types
  GET /api/pokemon?q=&type=&sort=&page=`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	cmd.Flags().String("listen-addr", ":8080", "address to listen on")
	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := configFrom(ctx)
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	// Refuse to start when PokeAPI is unreachable.
	if _, err := a.newSession().Init(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           newRouter(a),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + cfg.FetchTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", cfg.ListenAddr).
			Str("upstream", a.client.BaseURL()).
			Bool("response_cache", cfg.CacheEnabled()).
			Msg("Starting pokedex server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// server holds the HTTP handlers. Each request is its own query; detail
// records are shared through the app's cache.
type server struct {
	app    *app
	logger zerolog.Logger
}

func newRouter(a *app) http.Handler {
	s := &server{
		app:    a,
		logger: log.With().Str("component", "http").Logger(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(s.logRequests)

	r.Get("/health", healthHandler)
	r.Handle("/metrics", metrics.Handler())
	r.Route("/api", func(r chi.Router) {
		r.Get("/types", s.handleTypes)
		r.Get("/pokemon", s.handlePokemon)
	})
	return r
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

func (s *server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("Request served")
	})
}

type typesResponse struct {
	Types []string `json:"types"`
}

type pokemonResponse struct {
	Page    int                `json:"page"`
	Mode    pagination.Mode    `json:"mode"`
	Records []*pokemon.Pokemon `json:"records"`
	HasMore bool               `json:"has_more"`
	Notice  *pagination.Notice `json:"notice,omitempty"`
}

type errorResponse struct {
	Error  string             `json:"error"`
	Notice *pagination.Notice `json:"notice,omitempty"`
}

func (s *server) handleTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.app.service.Types(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("Type list failed")
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Error:  err.Error(),
			Notice: &pagination.Notice{Severity: pagination.SeverityError, Message: browser.InitErrorMessage},
		})
		return
	}
	writeJSON(w, http.StatusOK, typesResponse{Types: types})
}

func (s *server) handlePokemon(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	sortKey, ok := sorting.ParseKey(q.Get("sort"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("unknown sort %q", q.Get("sort"))})
		return
	}
	pageNum := 1
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid page %q", raw)})
			return
		}
		pageNum = n
	}

	st := pagination.NewQueryState(q.Get("q"), q.Get("type"), sortKey, s.app.cfg.PageSize)
	st, err := s.seek(r.Context(), st, pageNum)
	if err == nil {
		var page pagination.Page
		page, _, err = s.app.planner.NextPage(r.Context(), st)
		if err == nil {
			if page.Records == nil {
				page.Records = []*pokemon.Pokemon{}
			}
			if page.Notice == nil && len(page.Records) == 0 && pageNum == 1 {
				page.Notice = &pagination.Notice{Severity: pagination.SeverityInfo, Message: browser.NoResultsMessage}
			}
			writeJSON(w, http.StatusOK, pokemonResponse{
				Page:    pageNum,
				Mode:    st.Mode,
				Records: page.Records,
				HasMore: page.HasMore,
				Notice:  page.Notice,
			})
			return
		}
	}

	status := http.StatusBadGateway
	if client.IsNotFound(err) {
		status = http.StatusNotFound
	}
	writeJSON(w, status, errorResponse{
		Error:  err.Error(),
		Notice: &pagination.Notice{Severity: pagination.SeverityError, Message: browser.LoadErrorMessage},
	})
}

// seek positions a fresh state at the start of page n (1-based) without
// loading the pages before it.
func (s *server) seek(ctx context.Context, st pagination.QueryState, n int) (pagination.QueryState, error) {
	if n == 1 {
		return st, nil
	}
	skip := (n - 1) * st.PageSize

	switch st.Mode {
	case pagination.ModeList:
		st.Offset = skip
	case pagination.ModeType:
		catalog, err := s.app.service.TypeCatalog(ctx, st.FilterType)
		if err != nil {
			return st, err
		}
		st.Catalog = catalog
		st.CatalogLoaded = true
		st.Cursor = min(skip, len(catalog))
		st.HasMore = st.Cursor < len(catalog)
	case pagination.ModeSearch:
		st.HasMore = false
	}
	return st, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to write response")
	}
}
