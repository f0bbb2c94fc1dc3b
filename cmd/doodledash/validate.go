package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func validateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate CONFIG [CONFIG...]",
		Short: "Check dashboard documents without running them",
		Long: `Parses and merges the dashboard documents exactly as start does, building
every component, then prints the summary. Data feeds are not polled.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			d, cleanup, err := a.loadDashboard(out, args)
			if err != nil {
				return err
			}
			defer func() {
				if err := cleanup(); err != nil {
					a.logger.Warn("failed to release dashboard", zap.Error(err))
				}
			}()

			printSummary(out, d, d.IntervalOr(a.settings.Interval))
			fmt.Fprintln(out, "Configuration is valid")
			return nil
		},
	}
}
