package main

import (
	"context"

	"github.com/Sternrassler/pokedex-client/pkg/config"
)

type cfgKey struct{}

func withConfig(ctx context.Context, cfg *config.Config) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, cfgKey{}, cfg)
}

// configFrom returns the config resolved by the root command.
func configFrom(ctx context.Context) *config.Config {
	cfg, _ := ctx.Value(cfgKey{}).(*config.Config)
	return cfg
}
