package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List the types usable with --type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx, configFrom(ctx))
			if err != nil {
				return err
			}
			defer a.Close()

			types, err := a.newSession().Init(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, t := range types {
				fmt.Fprintf(out, "%s %s\n", typeBadge(t), t)
			}
			return nil
		},
	}
}
