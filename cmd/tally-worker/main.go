package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"tally/internal/amqp"
	"tally/internal/cli"
	"tally/internal/config"
	"tally/internal/log"
	"tally/internal/mirror/google"
	"tally/internal/worker"
)

const heartbeatInterval = time.Minute

func main() {
	cli.LoadEnvFile()

	cfg := config.Load()
	logger := cli.SetupLogger(cfg.SlogLevel())
	cli.MustValidate(logger, cfg)

	if !cfg.EventsEnabled() {
		logger.Error("AMQP_URL is required, the worker consumes record events")
		os.Exit(1)
	}
	if !cfg.MirrorEnabled() {
		logger.Error("GOOGLE_SPREADSHEET_ID is required, the worker has nothing to mirror without it")
		os.Exit(1)
	}

	logger.Info("starting tally-worker",
		log.FieldOperation, log.OpStartup,
		"queue", cfg.AMQPQueue,
		"spreadsheet_id", cfg.GoogleSpreadsheetID)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	writer, err := google.New(ctx, google.Config{
		SpreadsheetID:      cfg.GoogleSpreadsheetID,
		SheetName:          cfg.GoogleSheetName,
		ServiceAccountJSON: cfg.GoogleServiceAccountJSON,
		ServiceAccountFile: cfg.GoogleServiceAccountFile,
	})
	if err != nil {
		logger.Error("creating sheets client failed", log.FieldError, err.Error())
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("connecting to broker failed", log.FieldError, err.Error())
		os.Exit(1)
	}
	defer client.Close()

	mirrorWorker := worker.NewMirrorWorker(writer, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.ConsumeLoop(gctx, mirrorWorker.HandleEvent)
	})
	g.Go(func() error {
		ticker := time.NewTicker(heartbeatInterval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case <-ticker.C:
				logger.Info("worker heartbeat", "mirrored_total", mirrorWorker.Mirrored())
			}
		}
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker stopped with error", log.FieldError, err.Error())
		os.Exit(1)
	}
	logger.Info("worker stopped", log.FieldOperation, log.OpShutdown)
}
