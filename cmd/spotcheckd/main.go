package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"spotcheck/internal/amqp"
	"spotcheck/internal/calendar"
	gcalendar "spotcheck/internal/calendar/google"
	calmem "spotcheck/internal/calendar/memory"
	"spotcheck/internal/cli"
	"spotcheck/internal/services"
	"spotcheck/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger("spotcheckd")
	logger.Info("Starting spotcheckd")

	cfg := cli.LoadAndValidateConfig(logger)
	if cfg.OwnerID == "" {
		logger.Error("OWNER_ID is required - the reminder sweep is owner-scoped")
		os.Exit(1)
	}

	// Graceful shutdown on SIGINT/SIGTERM
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

	writer := newReminderWriter(ctx, logger)

	processor := services.NewReminderProcessor(result.Store, writer, services.ReminderProcessorConfig{
		OwnerID:  cfg.OwnerID,
		Interval: cfg.ReminderInterval,
		LeadDays: cfg.ReminderLeadDays,
	})

	// AMQP is optional: without it the periodic sweep still keeps the
	// calendar in step, just with more latency.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		var err error
		amqpClient, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to initialize AMQP client, continuing with periodic sweep only", "error", err)
			amqpClient = nil
		} else {
			defer amqpClient.Close()
			logger.Info("AMQP client initialized - item events will drive calendar updates")
		}
	} else {
		logger.Info("AMQP disabled - calendar updates happen on the periodic sweep only")
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := processor.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return processor.Stop(stopCtx)
	})

	if amqpClient != nil {
		reminderWorker := worker.NewReminderWorker(result.Store, writer, cfg.ReminderLeadDays)
		g.Go(func() error {
			err := amqpClient.ConsumeItemEvents(gctx, func(msg *amqp.ItemEventMessage) error {
				return reminderWorker.HandleItemEvent(gctx, msg)
			})
			if err != nil && err != context.Canceled {
				return err
			}
			return nil
		})
	}

	logger.Info("spotcheckd running",
		"owner_id", cfg.OwnerID,
		"backend", cfg.DataBackend,
		"reminder_interval", cfg.ReminderInterval.String())

	if err := g.Wait(); err != nil {
		logger.Error("Service error", "error", err)
		os.Exit(1)
	}
	logger.Info("spotcheckd stopped gracefully")
}

// newReminderWriter picks the Google Calendar adapter when credentials are
// present and falls back to the in-memory writer otherwise.
func newReminderWriter(ctx context.Context, logger *slog.Logger) calendar.ReminderWriter {
	if hasGoogleCredentials() {
		client, err := gcalendar.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Calendar client", "error", err)
			os.Exit(1)
		}
		logger.Info("Initialized Google Calendar reminder writer")
		return client
	}
	logger.Info("Google Calendar disabled - reminders kept in memory only")
	return calmem.New()
}

func hasGoogleCredentials() bool {
	return os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON") != "" ||
		os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE") != "" ||
		os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != ""
}
