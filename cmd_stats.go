package main

import (
	"interview-console/internal/views"

	"github.com/spf13/cobra"
)

func newStatsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show the interview dashboard",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := opts.app
			view := views.NewStatsView(a.client, a.deps)
			defer view.Close()

			loadErr := view.Mount(cmd.Context())
			if err := view.Render(cmd.OutOrStdout(), opts.renderOptions(cmd)); err != nil {
				return err
			}
			return loadErr
		},
	}
}
