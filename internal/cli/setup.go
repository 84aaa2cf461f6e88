package cli

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"lazynote/internal/config"
	"lazynote/internal/service"
	"lazynote/internal/store"
)

// openService wires config, logging, storage and the service together
// for one command invocation. The returned closer releases the
// database handle.
func openService(opts *RootOptions) (*service.Service, config.Config, func(), error) {
	cfg, err := config.Load(configPath(opts))
	if err != nil {
		return nil, config.Config{}, nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}

	logLevel := slog.LevelInfo
	if opts.Verbose || cfg.Verbose {
		logLevel = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	dbPath := cfg.DBPath
	if opts.DBPath != "" {
		dbPath = opts.DBPath
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, config.Config{}, nil, WrapExitError(ExitCommandError, "failed to create database directory", err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, config.Config{}, nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	svc := service.New(st, log, service.DefaultLimits())
	closer := func() {
		if err := st.Close(); err != nil {
			log.Error("failed to close database", "error", err)
		}
	}
	return svc, cfg, closer, nil
}

// configPath resolves the config file location: explicit flag first,
// then the default under the user config directory.
func configPath(opts *RootOptions) string {
	if opts.Config != "" {
		return opts.Config
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "lazynote.yaml"
	}
	return filepath.Join(dir, "lazynote", "config.yaml")
}

// newFormatter builds the formatter for a command, writing to the
// command's stdout so tests can capture output.
func newFormatter(cmd *cobra.Command, opts *RootOptions) *OutputFormatter {
	return &OutputFormatter{
		Format:  opts.Format,
		Writer:  cmd.OutOrStdout(),
		Verbose: opts.Verbose,
	}
}
