package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Sternrassler/pokedex-client/pkg/browser"
	"github.com/Sternrassler/pokedex-client/pkg/client"
	"github.com/Sternrassler/pokedex-client/pkg/config"
	"github.com/Sternrassler/pokedex-client/pkg/pagination"
	"github.com/Sternrassler/pokedex-client/pkg/pokeapi"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// app wires the PokeAPI stack for one process.
type app struct {
	cfg     *config.Config
	redis   *redis.Client
	client  *client.Client
	service *pokeapi.Service
	planner *pagination.Planner
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg}

	clientCfg := client.DefaultConfig(cfg.UserAgent)
	clientCfg.BaseURL = cfg.BaseURL
	clientCfg.Timeout = cfg.RequestTimeout
	clientCfg.ResponseCacheTTL = cfg.ResponseCacheTTL

	if cfg.CacheEnabled() {
		a.redis = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := a.redis.Ping(pingCtx).Err(); err != nil {
			a.redis.Close()
			return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.RedisAddr, err)
		}
		log.Info().Str("addr", cfg.RedisAddr).Msg("Response cache enabled")
		clientCfg.Redis = a.redis
	}

	c, err := client.New(clientCfg)
	if err != nil {
		if a.redis != nil {
			a.redis.Close()
		}
		return nil, fmt.Errorf("failed to create PokeAPI client: %w", err)
	}
	a.client = c
	a.service = pokeapi.NewService(c, nil)
	a.planner = pagination.NewPlanner(a.service, pagination.NewBatchFetcher(a.service, pagination.Config{
		MaxConcurrency: cfg.Concurrency,
		Timeout:        cfg.FetchTimeout,
	}))
	return a, nil
}

func (a *app) newSession() *browser.Session {
	return browser.NewSession(a.planner, a.service, a.cfg.PageSize)
}

func (a *app) Close() error {
	a.client.Close()
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}
