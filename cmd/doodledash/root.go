package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"doodledash/internal/config"
)

// app carries state shared by subcommands once settings are loaded
type app struct {
	v            *viper.Viper
	settingsPath string
	settings     config.Settings
	logger       *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{v: config.New(), logger: zap.NewNop()}

	rootCmd := &cobra.Command{
		Use:   "doodledash",
		Short: "Show data feed messages on a dashboard display",
		Long: `doodledash polls data feeds, filters their messages and hands them to
notification handlers that draw on a display.

Dashboards are described in YAML documents passed on the command line.
Process settings (logging, secrets, metrics) come from doodledash.yaml,
DOODLEDASH_* environment variables and flags.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			_ = a.logger.Sync()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.settingsPath, "settings", "", "Settings file (default: search "+config.ConfigFileName+" and XDG locations)")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("log-format", "console", "Log format: console, json")
	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("log.format", flags.Lookup("log-format"))

	rootCmd.AddCommand(startCmd(a))
	rootCmd.AddCommand(validateCmd(a))
	rootCmd.AddCommand(componentsCmd(a))
	rootCmd.AddCommand(secretsCmd(a))

	return rootCmd
}

func (a *app) init() error {
	settings, path, err := config.Load(a.v, a.settingsPath)
	if err != nil {
		return err
	}
	a.settings = settings

	logger, err := newLogger(settings.Log)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	a.logger = logger

	if path != "" {
		a.logger.Debug("loaded settings", zap.String("path", path))
	}
	return nil
}
