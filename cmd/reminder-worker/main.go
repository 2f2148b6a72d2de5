package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spotcheck/internal/amqp"
	gcalendar "spotcheck/internal/calendar/google"
	"spotcheck/internal/cli"
	"spotcheck/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("reminder-worker")
	logger.Info("Starting reminder-worker")

	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result := cli.InitStore(ctx, logger, cfg)
	if result.Cleanup != nil {
		defer func() {
			if err := result.Cleanup(); err != nil {
				logger.Error("Store cleanup failed", "error", err)
			}
		}()
	}

	// The worker's whole job is writing calendar entries, so unlike
	// spotcheckd the Google adapter is mandatory here.
	calClient, err := gcalendar.NewFromEnv(ctx)
	if err != nil {
		logger.Error("Failed to initialize Google Calendar client", "error", err)
		os.Exit(1)
	}
	logger.Info("Google Calendar client initialized", "calendar_id", cfg.CalendarID)

	amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", "error", err)
		os.Exit(1)
	}
	defer amqpClient.Close()

	reminderWorker := worker.NewReminderWorker(result.Store, calClient, cfg.ReminderLeadDays)

	// On startup, reconcile reminders for the configured owner in case
	// events were missed while the worker was down.
	if cfg.OwnerID != "" {
		logger.Info("Performing startup sweep...")
		if err := reminderWorker.StartupSweep(ctx, cfg.OwnerID); err != nil {
			logger.Error("Startup sweep failed", "error", err)
			// Don't exit - continue with normal operation
		}
	} else {
		logger.Info("Skipping startup sweep - no OWNER_ID provided")
	}

	consumeErr := make(chan error, 1)
	go func() {
		consumeErr <- amqpClient.ConsumeItemEvents(ctx, func(msg *amqp.ItemEventMessage) error {
			return reminderWorker.HandleItemEvent(ctx, msg)
		})
	}()

	logger.Info("reminder-worker running", "queue", cfg.AMQPQueue)

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
		// Give the in-flight handler a moment to finish
		select {
		case <-consumeErr:
		case <-time.After(5 * time.Second):
			logger.Warn("Shutdown timeout reached")
		}
	case err := <-consumeErr:
		if err != nil && err != context.Canceled {
			logger.Error("Message consumption failed", "error", err)
			os.Exit(1)
		}
	}
	logger.Info("reminder-worker shutdown complete")
}
