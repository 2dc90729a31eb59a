// Package main is the entry point for the social connections API.
//
// USAGE:
//
//	social-connections serve                          # defaults: sqlite at data/social.db, port 8080
//	social-connections serve --store memory --port 9000
//	social-connections serve --config config.yaml
//
// Flags override the config file and environment, which override the
// built-in defaults (see internal/config).
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/sakif/social-connections/internal/config"
	"github.com/sakif/social-connections/internal/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "social-connections",
		Short:         "Social graph API: users, connections and degrees of separation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd())
	return root
}

type serveFlags struct {
	configPath string
	port       int
	store      string
	dbPath     string
	logLevel   string
}

func newServeCmd() *cobra.Command {
	var f serveFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return err
			}

			logger := newLogger(cfg.Log)

			srv, err := server.New(cmd.Context(), cfg, logger)
			if err != nil {
				logger.Error("failed to create server", slog.String("error", err.Error()))
				return err
			}

			// Start blocks until SIGINT or SIGTERM.
			if err := srv.Start(); err != nil {
				logger.Error("server error", slog.String("error", err.Error()))
				return err
			}
			return nil
		},
	}

	bindServeFlags(cmd, &f)
	return cmd
}

func bindServeFlags(cmd *cobra.Command, f *serveFlags) {
	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "path to a YAML config file")
	cmd.Flags().IntVarP(&f.port, "port", "p", 0, "HTTP port (overrides config and PORT)")
	cmd.Flags().StringVar(&f.store, "store", "", "store driver: memory, sqlite or neo4j")
	cmd.Flags().StringVar(&f.dbPath, "db-path", "", "SQLite database file")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn or error")
}

// loadConfig resolves defaults, file and environment, applies the flags the
// user actually set, and only then validates the result.
func loadConfig(cmd *cobra.Command, f serveFlags) (config.Config, error) {
	cfg, err := config.Resolve(f.configPath)
	if err != nil {
		return config.Config{}, err
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Server.Port = f.port
	}
	if flags.Changed("store") {
		cfg.Store.Driver = f.store
	}
	if flags.Changed("db-path") {
		cfg.Store.SQLitePath = f.dbPath
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func newLogger(cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
