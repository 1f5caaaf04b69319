package pagination

import (
	"context"
	"time"

	"github.com/Sternrassler/pokedex-client/pkg/pokemon"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Prometheus metrics for batch fetching.
var (
	batchInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "pokeapi_batch_fetches_in_flight",
		Help: "Detail fetches currently running in batch workers",
	})

	batchFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pokeapi_batch_fetch_failures_total",
		Help: "Detail fetches dropped from a batch after failing",
	})

	batchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "pokeapi_batch_duration_seconds",
		Help:    "Time to fetch all details of one batch",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	})
)

// Config holds batch fetcher configuration
type Config struct {
	// MaxConcurrency is the maximum number of detail fetches in flight
	MaxConcurrency int

	// Timeout per detail fetch
	Timeout time.Duration
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		MaxConcurrency: 12,
		Timeout:        15 * time.Second,
	}
}

// DetailFetcher looks up one Pokémon by name or id. *pokeapi.Service implements it.
type DetailFetcher interface {
	Detail(ctx context.Context, nameOrID string) (*pokemon.Pokemon, error)
}

// BatchFetcher fetches many details with a bounded worker pool
type BatchFetcher struct {
	fetcher DetailFetcher
	config  Config
	logger  zerolog.Logger
}

// NewBatchFetcher creates a new batch fetcher
func NewBatchFetcher(fetcher DetailFetcher, config Config) *BatchFetcher {
	defaults := DefaultConfig()
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = defaults.MaxConcurrency
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}

	return &BatchFetcher{
		fetcher: fetcher,
		config:  config,
		logger:  log.With().Str("component", "batch-fetcher").Logger(),
	}
}

// Config returns the effective configuration.
func (bf *BatchFetcher) Config() Config {
	return bf.config
}

// FetchMany fetches the details of all ids with at most MaxConcurrency
// fetches in flight. Failed ids are logged and left out of the result.
// Result order is unspecified; a record reached through several ids appears
// once. The only error returned is the context's, when it ends before the
// queue is drained.
func (bf *BatchFetcher) FetchMany(ctx context.Context, ids []string) ([]*pokemon.Pokemon, error) {
	if len(ids) == 0 {
		return []*pokemon.Pokemon{}, nil
	}
	start := time.Now()

	queue := make(chan string, len(ids))
	for _, id := range ids {
		queue <- id
	}
	close(queue)

	results := make(chan *pokemon.Pokemon, len(ids))

	workers := min(bf.config.MaxConcurrency, len(ids))
	var g errgroup.Group
	for i := 0; i < workers; i++ {
		workerID := i
		g.Go(func() error {
			bf.worker(ctx, queue, results, workerID)
			return nil
		})
	}
	_ = g.Wait()
	close(results)

	seen := make(map[*pokemon.Pokemon]bool, len(ids))
	records := make([]*pokemon.Pokemon, 0, len(ids))
	for p := range results {
		if seen[p] {
			continue
		}
		seen[p] = true
		records = append(records, p)
	}

	duration := time.Since(start)
	batchDuration.Observe(duration.Seconds())
	bf.logger.Debug().
		Int("requested", len(ids)).
		Int("fetched", len(records)).
		Int("workers", workers).
		Dur("duration", duration).
		Msg("Batch complete")

	if err := ctx.Err(); err != nil {
		return records, err
	}
	return records, nil
}

// worker pulls ids from the queue until it is empty or ctx ends
func (bf *BatchFetcher) worker(ctx context.Context, queue <-chan string, results chan<- *pokemon.Pokemon, workerID int) {
	processed := 0

	for id := range queue {
		select {
		case <-ctx.Done():
			bf.logger.Debug().
				Int("worker_id", workerID).
				Int("processed", processed).
				Msg("Worker stopping (context cancelled)")
			return
		default:
		}

		p, err := bf.fetchOne(ctx, id)
		processed++
		if err != nil {
			batchFailuresTotal.Inc()
			bf.logger.Warn().
				Err(err).
				Int("worker_id", workerID).
				Str("id", id).
				Msg("Detail fetch failed, dropping from batch")
			continue
		}
		results <- p
	}
}

// fetchOne runs a single detail fetch under the per-fetch timeout
func (bf *BatchFetcher) fetchOne(ctx context.Context, id string) (*pokemon.Pokemon, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, bf.config.Timeout)
	defer cancel()

	batchInFlight.Inc()
	defer batchInFlight.Dec()

	return bf.fetcher.Detail(fetchCtx, id)
}
