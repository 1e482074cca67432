// Package cli carries the startup plumbing shared by cmd/tally and
// cmd/tally-worker.
package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"tally/internal/config"
	"tally/internal/log"
	"tally/internal/storage"
)

// LoadEnvFile loads .env for local development. A missing file is fine;
// production reads real environment variables.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// SetupLogger builds the process logger at the given level and installs
// it as the slog default so library code logs through the same handler.
func SetupLogger(level slog.Level) *log.Logger {
	logger := log.New(log.Config{
		Level:     level,
		Component: log.ComponentApp,
	})
	log.SetDefault(logger)
	return logger
}

// MustValidate exits the process when the configuration is unusable.
// It runs after SetupLogger so the failure is reported through the
// structured handler.
func MustValidate(logger *log.Logger, cfg *config.Config) {
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration invalid", log.FieldError, err.Error())
		os.Exit(1)
	}
}

// OpenLedger opens the SQLite ledger at dbPath, running migrations, and
// exits the process on failure.
func OpenLedger(logger *log.Logger, dbPath string) *storage.Ledger {
	ledger, err := storage.NewLedger(dbPath)
	if err != nil {
		logger.Error("opening ledger store failed",
			log.FieldError, err.Error(),
			"path", dbPath)
		os.Exit(1)
	}
	return ledger
}

// GracefulShutdown cancels the returned context on SIGINT or SIGTERM
// and then runs cleanup with a timeout-bounded context. The done
// channel closes once cleanup returns.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func(context.Context)) (context.Context, <-chan struct{}) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		defer close(done)
		<-ctx.Done()
		// A second signal now kills the process outright.
		stop()
		logger.Info("shutdown signal received", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if cleanup != nil {
			cleanup(shutdownCtx)
		}
		logger.Info("shutdown complete", log.FieldOperation, log.OpShutdown)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the shutdown sequence has finished.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
