/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the bookkeeping server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and environment configuration
  2. Configure logging
  3. Initialize SQLite store
  4. Compose the ledger, payment, and inventory engines
  5. Configure HTTP router
  6. Start server with graceful shutdown

ENVIRONMENT:
  ADDR                       Listen address (default :8080)
  DB_PATH                    SQLite database path (":memory:" works)
  CORS_ORIGINS               Comma-separated allowed origins
  LOG_LEVEL / LOG_FORMAT     Logging configuration
  SEED_DEMO                  Seed demo data on startup (dev only)
  SHUTDOWN_TIMEOUT_SECONDS   Graceful shutdown window

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (configurable timeout)
  3. Close database connection
  4. Exit

EXAMPLES:
  # Run with file database
  DB_PATH=./data/books.db ./server

  # Run in-memory with demo data
  DB_PATH=:memory: SEED_DEMO=true ./server

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Environment loading
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/warp/bookkeeper/api"
	"github.com/warp/bookkeeper/books"
	"github.com/warp/bookkeeper/config"
	"github.com/warp/bookkeeper/ledger"
	"github.com/warp/bookkeeper/logging"
	"github.com/warp/bookkeeper/store/sqlite"
)

var rootCmd = &cobra.Command{
	Use:   "server",
	Short: "Ledger and inventory valuation server",
	Long: `Runs the bookkeeping HTTP server: vault accounts with derived
balances, payment allocation against invoices and expenses, and
weighted-average inventory costing.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context())
	},
}

func main() {
	// A missing .env is fine; real environment always wins.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logging.Setup(logging.Config{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		TimeFormat: cfg.LogTimeFormat,
		Output:     cfg.LogOutput,
	}); err != nil {
		return err
	}

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Error().Err(err).Str("path", cfg.DBPath).Msg("failed to initialize database")
		return err
	}
	defer store.Close()

	vaults := ledger.NewService(store, store)
	svc := books.NewService(vaults, store, store, store, store, logging.Logger())

	if cfg.SeedDemo {
		if err := api.SeedDemo(ctx, svc); err != nil {
			log.Warn().Err(err).Msg("failed to seed demo data")
		} else {
			log.Info().Msg("demo data seeded")
		}
	}

	handler := api.NewHandler(svc, store, logging.Logger())
	router := api.NewRouter(handler, cfg.CORSOrigins)

	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Error().Err(err).Msg("server failed")
		return err
	case sig := <-quit:
		log.Info().Str("signal", sig.String()).Msg("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return err
	}

	log.Info().Msg("server stopped")
	return nil
}
