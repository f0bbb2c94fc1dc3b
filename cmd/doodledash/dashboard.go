package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"go.uber.org/zap"

	"doodledash/internal/component"
	"doodledash/internal/componentregistry"
	"doodledash/internal/dashboard"
	"doodledash/internal/display"
	"doodledash/internal/domain"
	"doodledash/internal/loader"
	"doodledash/internal/notification"
	"doodledash/internal/repository/sqlite"
	"doodledash/internal/secrets"
)

// registry builds the component registry. The console display writes to out.
func (a *app) registry(out io.Writer) (*component.Registry, error) {
	return componentregistry.New(componentregistry.Options{
		Output:     out,
		Downloader: notification.NewFileDownloader(a.settings.Downloads.Dir),
		Logger:     a.logger,
	})
}

// resolver builds the secret chain: mounted files and environment first,
// then the operator database when one is configured. The returned func
// releases the database.
func (a *app) resolver() (domain.SecretResolver, func() error, error) {
	store := secrets.NewStore(
		secrets.WithDirs(a.settings.Secrets.Dirs...),
		secrets.WithEnvPrefix(a.settings.Secrets.EnvPrefix),
		secrets.WithLogger(a.logger),
	)
	if err := store.Load(); err != nil {
		return nil, nil, fmt.Errorf("load secrets: %w", err)
	}

	if a.settings.Secrets.DB == "" {
		return store, func() error { return nil }, nil
	}

	repo, err := a.openSecretRepository()
	if err != nil {
		return nil, nil, err
	}
	return secrets.Chain{store, secrets.NewRepositoryResolver(repo, a.logger)}, repo.Close, nil
}

func (a *app) openSecretRepository() (*sqlite.SecretRepository, error) {
	if a.settings.Secrets.DB == "" {
		return nil, fmt.Errorf("no secrets database configured (set secrets.db or DOODLEDASH_SECRETS_DB)")
	}
	passphrase := os.Getenv(a.settings.Secrets.KeyEnv)
	if passphrase == "" {
		return nil, fmt.Errorf("secrets database passphrase not set: export %s", a.settings.Secrets.KeyEnv)
	}
	repo, err := sqlite.New(a.settings.Secrets.DB, passphrase)
	if err != nil {
		return nil, fmt.Errorf("open secrets database: %w", err)
	}
	return repo, nil
}

// loadDashboard reads and merges the dashboard documents at paths
func (a *app) loadDashboard(out io.Writer, paths []string) (*dashboard.Dashboard, func() error, error) {
	resolver, closeSecrets, err := a.resolver()
	if err != nil {
		return nil, nil, err
	}

	registry, err := a.registry(out)
	if err != nil {
		closeSecrets()
		return nil, nil, err
	}

	d, err := loader.NewReader(registry, resolver, a.logger).ReadFiles(paths...)
	if err != nil {
		closeSecrets()
		return nil, nil, err
	}

	if d.Display == nil && len(d.Notifications) > 0 {
		a.logger.Warn("no display configured, falling back to console")
		d.Display = display.NewConsole(out)
	}

	cleanup := func() error {
		err := d.Close()
		if cerr := closeSecrets(); cerr != nil && err == nil {
			err = cerr
		}
		return err
	}
	return d, cleanup, nil
}

// printSummary writes what was loaded, one component per line
func printSummary(out io.Writer, d *dashboard.Dashboard, interval time.Duration) {
	fmt.Fprintf(out, "Interval: %s\n", strconv.FormatFloat(interval.Seconds(), 'f', -1, 64))
	if d.Display != nil {
		fmt.Fprintf(out, "Display loaded: %s\n", domain.Describe(d.Display, fmt.Sprintf("%T", d.Display)))
	} else {
		fmt.Fprintln(out, "No display loaded")
	}

	fmt.Fprintf(out, "%d data sources loaded\n", len(d.DataFeeds))
	for i, feed := range d.DataFeeds {
		fmt.Fprintf(out, " - %s\n", domain.Describe(feed, fmt.Sprintf("data feed %d", i)))
	}

	fmt.Fprintf(out, "%d notifications loaded\n", len(d.Notifications))
	for _, n := range d.Notifications {
		fmt.Fprintf(out, " - %s\n", n)
	}
}

func logDashboard(logger *zap.Logger, paths []string, d *dashboard.Dashboard) {
	logger.Info("dashboard loaded",
		zap.Strings("files", paths),
		zap.Int("data_feeds", len(d.DataFeeds)),
		zap.Int("notifications", len(d.Notifications)))
}
