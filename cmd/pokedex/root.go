package main

import (
	"fmt"

	"github.com/Sternrassler/pokedex-client/pkg/config"
	"github.com/Sternrassler/pokedex-client/pkg/logging"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:   "pokedex",
		Short: "Browse Pokémon from PokeAPI",
		Long: `pokedex pages through PokeAPI by number, by type or by name.

Settings come from flags, POKEDEX_* environment variables and an optional
YAML file, e.g. POKEDEX_REDIS_ADDR=localhost:6379 enables the shared
response cache.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath, cmd.Flags())
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			level, err := logging.ParseLevel(cfg.LogLevel)
			if err != nil {
				return err
			}
			logging.Setup(logging.Config{
				Level:  level,
				Pretty: cfg.LogPretty,
				Output: cmd.ErrOrStderr(),
			})
			cmd.SetContext(withConfig(cmd.Context(), cfg))
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "path to a YAML config file")
	flags.String("base-url", config.DefaultBaseURL, "PokeAPI root URL")
	flags.String("user-agent", config.DefaultUserAgent, "User-Agent sent to PokeAPI")
	flags.Int("page-size", config.DefaultPageSize, "Pokémon per page")
	flags.Int("concurrency", config.DefaultConcurrency, "maximum parallel detail fetches")
	flags.Duration("request-timeout", config.DefaultRequestTimeout, "timeout of one HTTP request")
	flags.Duration("fetch-timeout", config.DefaultFetchTimeout, "timeout of one detail fetch")
	flags.String("redis-addr", "", "Redis address for the response cache (empty disables it)")
	flags.Duration("response-cache-ttl", config.DefaultResponseCacheTTL, "freshness of responses without caching headers")
	flags.String("log-level", config.DefaultLogLevel, "debug, info, warn or error")
	flags.Bool("log-pretty", false, "human-readable logs")

	root.AddCommand(newBrowseCmd(), newTypesCmd(), newServeCmd())
	return root
}
