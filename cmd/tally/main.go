package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"tally/internal/amqp"
	"tally/internal/cache"
	"tally/internal/cli"
	"tally/internal/config"
	"tally/internal/core"
	apphttp "tally/internal/http"
	"tally/internal/log"
	"tally/internal/services"
)

func main() {
	cli.LoadEnvFile()

	cfg := config.Load()
	logger := cli.SetupLogger(cfg.SlogLevel())
	cli.MustValidate(logger, cfg)
	logger.Info("starting tally server",
		log.FieldOperation, log.OpStartup,
		"port", cfg.Port,
		"db_path", cfg.SQLiteDBPath)

	ledger := cli.OpenLedger(logger, cfg.SQLiteDBPath)

	snapshots := cache.NewLRU[[]core.Record](cfg.CacheSize, cfg.CacheTTL)
	janitor := cache.NewJanitor(logger)
	janitor.Register(snapshots)
	janitor.Start(time.Minute)

	// A nil interface here keeps publishing disabled; assigning the
	// client only on success avoids a typed-nil publisher.
	var publisher services.EventPublisher
	if cfg.EventsEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("connecting to broker failed", log.FieldError, err.Error())
			os.Exit(1)
		}
		publisher = client
		logger.Info("record events enabled",
			"exchange", cfg.AMQPExchange,
			"queue", cfg.AMQPQueue)
	} else {
		logger.Info("record events disabled, no AMQP_URL configured")
	}

	service := services.NewLedgerService(ledger, snapshots, publisher, logger)

	srv := apphttp.NewServer(":"+cfg.Port, service, logger, cfg.RateLimitPerMinute)

	ctx, done := cli.GracefulShutdown(logger, cfg.ShutdownTimeout, func(shutdownCtx context.Context) {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", log.FieldError, err.Error())
		}
		janitor.Stop()
		if err := service.Close(); err != nil {
			logger.Error("closing ledger service failed", log.FieldError, err.Error())
		}
	})

	logger.Info("listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server error", log.FieldError, err.Error(), "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("server stopped")
}
