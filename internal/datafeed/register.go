package datafeed

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"doodledash/internal/component"
	"doodledash/internal/domain"
)

// Register adds the built-in data feeds to the registry. logger receives
// diagnostics from feeds that produce them; nil discards them.
func Register(registry *component.Registry, logger *zap.Logger) error {
	if registry == nil {
		return fmt.Errorf("registry cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	regs := []component.Registration{
		{
			Type:        "text",
			Description: "Returns the fixed 'text' (a string or a list)",
			Factory:     newTextFromOptions,
		},
		{
			Type:        "datetime",
			Description: "Returns the current time rendered with Go layout 'format'",
			Factory:     newDateTimeFromOptions,
		},
		{
			Type:        "json-file",
			Description: "Returns the values at gjson 'query' in the JSON file 'path'",
			Factory:     newJSONFileFromOptions,
		},
		{
			Type:        "sqlite-query",
			Description: "Returns one message per row of read-only 'query' on SQLite 'database'",
			Factory:     newSQLiteFromOptions,
		},
		{
			Type:        "nmap",
			Description: "Returns one message per open port found scanning 'targets'",
			Factory:     nmapFactory(logger),
		},
		{
			Type:        "ssh-command",
			Description: "Returns the output lines of 'command' run on 'host' with SSH 'secret'",
			Factory:     newSSHFromOptions,
		},
	}

	for _, reg := range regs {
		reg.Category = domain.CategoryDataFeed
		if err := registry.Register(reg); err != nil {
			return err
		}
	}
	return nil
}

func newTextFromOptions(opts component.Options, _ domain.SecretResolver) (any, error) {
	texts, err := opts.Strings("text")
	if err != nil {
		return nil, err
	}
	return NewTextFeed(texts...), nil
}

func newDateTimeFromOptions(opts component.Options, _ domain.SecretResolver) (any, error) {
	format, err := opts.StringOr("format", DefaultDateTimeFormat)
	if err != nil {
		return nil, err
	}
	return NewDateTimeFeed(format), nil
}

func newJSONFileFromOptions(opts component.Options, _ domain.SecretResolver) (any, error) {
	path, err := opts.String("path")
	if err != nil {
		return nil, err
	}
	query, err := opts.String("query")
	if err != nil {
		return nil, err
	}
	return NewJSONFileFeed(path, query), nil
}

func newSQLiteFromOptions(opts component.Options, _ domain.SecretResolver) (any, error) {
	database, err := opts.String("database")
	if err != nil {
		return nil, err
	}
	query, err := opts.String("query")
	if err != nil {
		return nil, err
	}
	return NewSQLiteQueryFeed(database, query)
}

func nmapFactory(logger *zap.Logger) component.Factory {
	return func(opts component.Options, _ domain.SecretResolver) (any, error) {
		targets, err := opts.Strings("targets")
		if err != nil {
			return nil, err
		}

		feedOpts := []NmapOption{WithNmapLogger(logger.Named("nmap"))}

		if opts.Has("ports") {
			ports, err := opts.String("ports")
			if err != nil {
				return nil, err
			}
			if err := ValidatePorts(ports); err != nil {
				return nil, &component.InvalidOptionError{Option: "ports", Reason: err.Error()}
			}
			feedOpts = append(feedOpts, WithPortRange(ports))
		}

		detect, err := opts.BoolOr("service-detection", true)
		if err != nil {
			return nil, err
		}
		skip, err := opts.BoolOr("skip-host-discovery", false)
		if err != nil {
			return nil, err
		}
		timeout, err := opts.DurationOr("timeout", 2*time.Minute)
		if err != nil {
			return nil, err
		}
		feedOpts = append(feedOpts,
			WithServiceDetection(detect),
			WithSkipHostDiscovery(skip),
			WithScanTimeout(timeout))

		return NewNmapFeed(targets, feedOpts...), nil
	}
}

func newSSHFromOptions(opts component.Options, secrets domain.SecretResolver) (any, error) {
	host, err := opts.String("host")
	if err != nil {
		return nil, err
	}
	command, err := opts.String("command")
	if err != nil {
		return nil, err
	}
	secret, err := opts.String("secret")
	if err != nil {
		return nil, err
	}
	port, err := opts.IntOr("port", 22)
	if err != nil {
		return nil, err
	}
	if port < 1 || port > 65535 {
		return nil, &component.InvalidOptionError{Option: "port", Reason: fmt.Sprintf("%d is not a valid port", port)}
	}
	timeout, err := opts.DurationOr("timeout", 10*time.Second)
	if err != nil {
		return nil, err
	}

	if secrets == nil {
		secrets = domain.NoSecrets{}
	}
	creds, err := ResolveSSHCredentials(secrets, secret)
	if err != nil {
		return nil, &component.InvalidOptionError{Option: "secret", Reason: err.Error()}
	}

	return NewSSHCommandFeed(host, port, command, creds, timeout)
}
