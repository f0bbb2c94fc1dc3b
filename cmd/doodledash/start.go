package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"doodledash/internal/runner"
)

func startCmd(a *app) *cobra.Command {
	var (
		once      bool
		keepGoing bool
	)

	cmd := &cobra.Command{
		Use:   "start CONFIG [CONFIG...]",
		Short: "Run a dashboard until interrupted",
		Long: `Loads and merges the dashboard documents, prints what was loaded and then
runs cycles until SIGINT or SIGTERM. Each cycle collects messages from every
data feed and hands them to each notification in turn, pausing for the
dashboard interval after each one.`,
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
			logDashboard(a.logger, args, d)

			reg := prometheus.NewRegistry()
			r, err := runner.New(d, reg,
				runner.WithDefaultInterval(a.settings.Interval),
				runner.WithLogger(a.logger))
			if err != nil {
				return err
			}
			printSummary(out, d, r.Interval())

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, a, r, reg, once, keepGoing)
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Run a single cycle and exit")
	cmd.Flags().BoolVar(&keepGoing, "keep-going", false, "Log failed cycles and continue instead of exiting")
	cmd.Flags().String("metrics-textfile", "", "Write metrics in node_exporter textfile format after each cycle")
	_ = a.v.BindPFlag("metrics.textfile", cmd.Flags().Lookup("metrics-textfile"))

	return cmd
}

func run(ctx context.Context, a *app, r *runner.Runner, reg *prometheus.Registry, once, keepGoing bool) error {
	for cycle := 1; ; cycle++ {
		err := r.Cycle(ctx)
		a.writeMetrics(reg)

		switch {
		case ctx.Err() != nil:
			a.logger.Info("stopping", zap.Int("cycles", cycle))
			return nil
		case err != nil && !keepGoing:
			return fmt.Errorf("cycle %d: %w", cycle, err)
		case err != nil:
			a.logger.Error("cycle failed", zap.Int("cycle", cycle), zap.Error(err))
			if errors.Is(err, runner.ErrNoDisplay) {
				return err
			}
			if err := runner.Sleep(ctx, r.Interval()); err != nil {
				return nil
			}
		}

		if once {
			return nil
		}
	}
}

func (a *app) writeMetrics(reg *prometheus.Registry) {
	path := a.settings.Metrics.Textfile
	if path == "" {
		return
	}
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		a.logger.Warn("failed to write metrics", zap.String("path", path), zap.Error(err))
	}
}
