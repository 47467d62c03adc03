package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/existflow/ironboard/internal/config"
	"github.com/existflow/ironboard/internal/logger"
	"github.com/existflow/ironboard/internal/store"
	"github.com/existflow/ironboard/server"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "ironboard-server",
	Short: "IronBoard API server",
	Long: `Serves the IronBoard HTTP API.

Settings come from an optional YAML file and are overridden by
environment variables (PORT, DATABASE_URL, IRONBOARD_DB_DRIVER,
IRONBOARD_LOG_LEVEL, ...).`,
	SilenceUsage: true,
	RunE:         runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run migrations and serve the API",
	RunE:  runServe,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE:  runMigrate,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", os.Getenv("IRONBOARD_CONFIG"), "Path to server config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads the config and initializes the global logger from it
func setup() (*config.ServerConfig, error) {
	cfg, err := config.LoadServer(configPath)
	if err != nil {
		return nil, err
	}

	err = logger.Init(logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		Format:     logger.ParseFormat(cfg.Log.Format),
		FilePath:   cfg.Log.File,
		MaxSize:    10 * 1024 * 1024,
		MaxAge:     7,
		MaxBackups: 5,
		Console:    cfg.Log.Console,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, logger.Default())
	if err != nil {
		logger.Error("Failed to create server", logger.Err(err))
		return err
	}
	defer func() {
		if err := srv.Close(); err != nil {
			logger.Error("Error closing server", logger.Err(err))
		}
	}()

	if cfg.Auth.ExposeMagicTokens {
		logger.Warn("Magic link tokens are returned in responses, do not use in production")
	}

	logger.Info("IronBoard server starting",
		logger.F("listen", cfg.Listen),
		logger.F("driver", cfg.Database.Driver))
	if err := srv.Start(ctx, cfg.Listen); err != nil {
		logger.Error("Server failed", logger.Err(err))
		return err
	}
	logger.Info("IronBoard server stopped")
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	defer logger.Close()

	ctx := cmd.Context()
	st, err := store.Open(ctx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		logger.Error("Migration failed", logger.Err(err))
		return err
	}
	logger.Info("Migrations applied", logger.F("driver", st.Dialect().String()))
	return nil
}
