package main

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/Sternrassler/pokedex-client/pkg/browser"
	"github.com/Sternrassler/pokedex-client/pkg/sorting"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

type browseOptions struct {
	search     string
	typeFilter string
	sortKey    string
	pages      int
}

func newBrowseCmd() *cobra.Command {
	opts := &browseOptions{}

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Show Pokémon cards page by page",
		Long: `Browse shows Pokémon as cards. Without filters it pages through the
national listing; --type pages through one type; --search looks up a
single Pokémon by name or number, optionally checked against --type.

Example:
  pokedex browse --type fire --sort name-asc --pages 2
  pokedex browse --search pikachu`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBrowse(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.search, "search", "s", "", "name or number to look up")
	cmd.Flags().StringVarP(&opts.typeFilter, "type", "t", "", "type to filter by")
	cmd.Flags().StringVar(&opts.sortKey, "sort", string(sorting.DefaultKey),
		"sort order: "+strings.Join(sortKeyNames(), ", "))
	cmd.Flags().IntVar(&opts.pages, "pages", 1, "number of pages to load (0 loads all)")
	return cmd
}

func sortKeyNames() []string {
	names := make([]string, len(sorting.Keys))
	for i, k := range sorting.Keys {
		names[i] = string(k)
	}
	return names
}

func runBrowse(cmd *cobra.Command, opts *browseOptions) error {
	sortKey, ok := sorting.ParseKey(opts.sortKey)
	if !ok {
		return fmt.Errorf("unknown sort order %q (want one of %s)", opts.sortKey, strings.Join(sortKeyNames(), ", "))
	}
	if opts.pages < 0 {
		return fmt.Errorf("--pages must not be negative")
	}

	ctx := cmd.Context()
	a, err := newApp(ctx, configFrom(ctx))
	if err != nil {
		return err
	}
	defer a.Close()

	session := a.newSession()
	types, err := session.Init(ctx)
	if err != nil {
		var initErr *browser.InitError
		if errors.As(err, &initErr) {
			notice := initErr.Notice()
			cmd.PrintErrln(renderNotice(&notice))
		}
		return err
	}
	if t := strings.ToLower(strings.TrimSpace(opts.typeFilter)); t != "" && !slices.Contains(types, t) {
		log.Warn().Str("type", t).Msg("Type is not in the type list")
	}

	out := cmd.OutOrStdout()
	page, err := session.RunQuery(ctx, opts.search, opts.typeFilter, sortKey)
	shown := 0
	for loaded := 1; ; loaded++ {
		if page.Notice != nil {
			fmt.Fprintln(out, renderNotice(page.Notice))
		}
		if err != nil {
			return err
		}
		if len(page.Records) > 0 {
			fmt.Fprintln(out, renderPage(page.Records))
			shown += len(page.Records)
		}
		if !session.HasMore() || (opts.pages > 0 && loaded >= opts.pages) {
			break
		}
		page, err = session.LoadNextPage(ctx)
	}

	fmt.Fprintln(out, renderFooter(shown, session.HasMore()))
	return nil
}
