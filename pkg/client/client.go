// Package client provides the PokeAPI HTTP client: a single-shot JSON GET
// wrapper with typed errors, optional Redis response caching and metrics.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/pokedex-client/pkg/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultBaseURL is the public PokeAPI v2 root.
const DefaultBaseURL = "https://pokeapi.co/api/v2"

// Prometheus metrics for PokeAPI client operations.
var (
	pokeapiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokeapi_requests_total",
		Help: "Total PokeAPI requests by endpoint and status",
	}, []string{"endpoint", "status"})

	pokeapiRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "pokeapi_request_duration_seconds",
		Help:    "PokeAPI request duration in seconds by endpoint",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"endpoint"})

	pokeapiErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "pokeapi_errors_total",
		Help: "Total PokeAPI errors by class",
	}, []string{"class"})
)

// Client is the PokeAPI client.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	responses  *cache.ResponseCache
	config     Config
	logger     zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// BaseURL is the API root, e.g. "https://pokeapi.co/api/v2"
	BaseURL string

	// User-Agent header sent with every request (REQUIRED)
	UserAgent string

	// Timeout bounds a single HTTP round trip
	Timeout time.Duration

	// Redis enables the shared response cache when non-nil
	Redis *redis.Client

	// ResponseCacheTTL is the freshness used when responses carry no caching headers
	ResponseCacheTTL time.Duration

	// StaleWindow keeps expired responses around for conditional revalidation
	StaleWindow time.Duration
}

// DefaultConfig returns a safe default configuration without a response cache.
func DefaultConfig(userAgent string) Config {
	return Config{
		BaseURL:          DefaultBaseURL,
		UserAgent:        userAgent,
		Timeout:          30 * time.Second,
		ResponseCacheTTL: cache.DefaultTTL,
		StaleWindow:      cache.DefaultStaleWindow,
	}
}

// New creates a new PokeAPI client.
func New(cfg Config) (*Client, error) {
	if cfg.UserAgent == "" {
		return nil, ErrUserAgentRequired
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.ResponseCacheTTL <= 0 {
		cfg.ResponseCacheTTL = cache.DefaultTTL
	}

	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url must be absolute (got %q)", cfg.BaseURL)
	}

	c := &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: base,
		config:  cfg,
		logger:  log.With().Str("component", "pokeapi-client").Logger(),
	}
	if cfg.Redis != nil {
		c.responses = cache.NewResponseCache(cfg.Redis, cfg.StaleWindow)
	}
	return c, nil
}

// FetchJSON GETs target and decodes the JSON body into out.
// target is either an absolute URL or a path relative to the base URL.
// A non-success status yields *HTTPError. No retries are attempted.
func (c *Client) FetchJSON(ctx context.Context, target string, out any) error {
	body, err := c.Get(ctx, target)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		pokeapiErrorsTotal.WithLabelValues(string(ErrorClassDecode)).Inc()
		return fmt.Errorf("decode %s: %w", target, err)
	}
	return nil
}

// Get performs one GET and returns the response body.
// Fresh responses from the response cache are served without a network call;
// stale ones are revalidated with a conditional request.
func (c *Client) Get(ctx context.Context, target string) ([]byte, error) {
	u, err := c.ResolveURL(target)
	if err != nil {
		return nil, err
	}
	endpoint := endpointLabel(u.Path)

	startTime := time.Now()
	defer func() {
		pokeapiRequestDuration.WithLabelValues(endpoint).Observe(time.Since(startTime).Seconds())
	}()

	key := cache.KeyFromURL(u)
	cached := c.lookup(ctx, key)
	if cached != nil && !cached.IsExpired() {
		c.logger.Debug().Str("url", u.String()).Msg("Serving fresh cached response")
		pokeapiRequestsTotal.WithLabelValues(endpoint, "cache").Inc()
		return cached.Body, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	if cached != nil {
		cache.AddConditionalHeaders(req, cached)
		c.logger.Debug().
			Str("url", u.String()).
			Str("etag", cached.ETag).
			Msg("Making conditional request")
	}

	c.logger.Debug().Str("url", u.String()).Msg("Executing PokeAPI request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		pokeapiErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		pokeapiRequestsTotal.WithLabelValues(endpoint, "network_error").Inc()
		c.logger.Warn().Err(err).Str("url", u.String()).Msg("HTTP request failed")
		return nil, fmt.Errorf("GET %s: %w", u.String(), err)
	}
	defer resp.Body.Close()

	pokeapiRequestsTotal.WithLabelValues(endpoint, strconv.Itoa(resp.StatusCode)).Inc()

	if resp.StatusCode == http.StatusNotModified && cached != nil {
		cache.NotModifiedResponses.Inc()
		c.logger.Debug().Str("url", u.String()).Msg("304 Not Modified - using cache")
		expires := cache.ParseExpires(resp.Header, c.config.ResponseCacheTTL)
		if err := c.responses.Refresh(ctx, key, cached, expires); err != nil {
			c.logger.Warn().Err(err).Msg("Failed to refresh cached response")
		}
		return cached.Body, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		httpErr := newHTTPError(resp.StatusCode, u.String())
		pokeapiErrorsTotal.WithLabelValues(string(httpErr.Class)).Inc()
		_, _ = io.Copy(io.Discard, resp.Body)

		event := c.logger.Warn()
		if httpErr.StatusCode == http.StatusNotFound {
			event = c.logger.Debug()
		}
		event.
			Str("url", u.String()).
			Int("status", resp.StatusCode).
			Str("error_class", string(httpErr.Class)).
			Msg("PokeAPI request error")
		return nil, httpErr
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		pokeapiErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
		return nil, fmt.Errorf("read response body: %w", err)
	}

	c.store(ctx, key, resp, body)
	return body, nil
}

// lookup returns the cached entry for key, or nil when there is none.
func (c *Client) lookup(ctx context.Context, key cache.Key) *cache.Entry {
	if c.responses == nil {
		return nil
	}
	entry, err := c.responses.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			c.logger.Warn().Err(err).Str("key", key.String()).Msg("Cache get error")
		}
		return nil
	}
	return entry
}

// store writes a successful response to the response cache, if enabled.
func (c *Client) store(ctx context.Context, key cache.Key, resp *http.Response, body []byte) {
	if c.responses == nil {
		return
	}
	entry := cache.EntryFromResponse(resp, body, c.config.ResponseCacheTTL)
	if err := c.responses.Set(ctx, key, entry); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to cache response")
		return
	}
	c.logger.Debug().
		Str("key", key.String()).
		Dur("ttl", entry.TTL()).
		Msg("Cached response")
}

// ResolveURL turns target into an absolute URL under the base URL.
// Absolute targets (such as "url" fields of PokeAPI resources) are used as is.
func (c *Client) ResolveURL(target string) (*url.URL, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("parse url %q: %w", target, err)
	}
	if u.IsAbs() {
		return u, nil
	}

	resolved := *c.baseURL
	resolved.Path = c.baseURL.Path + "/" + strings.TrimLeft(u.Path, "/")
	resolved.RawQuery = u.RawQuery
	return &resolved, nil
}

// endpointLabel reduces a request path to a low-cardinality metric label,
// e.g. "/api/v2/pokemon/pikachu" becomes "pokemon/{key}".
func endpointLabel(path string) string {
	path = strings.Trim(path, "/")
	if i := strings.Index(path, "api/v2/"); i >= 0 {
		path = path[i+len("api/v2/"):]
	}
	parts := strings.SplitN(path, "/", 2)
	if len(parts) == 2 && parts[1] != "" {
		return parts[0] + "/{key}"
	}
	return parts[0]
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// ResponseCache returns the response cache, or nil when Redis is not configured.
func (c *Client) ResponseCache() *cache.ResponseCache {
	return c.responses
}
