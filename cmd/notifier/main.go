package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joao-fontenele/storefront-orders/internal/config"
	"github.com/joao-fontenele/storefront-orders/internal/mail"
	"github.com/joao-fontenele/storefront-orders/internal/messaging"
	"github.com/joao-fontenele/storefront-orders/internal/notifier"
	"github.com/joao-fontenele/storefront-orders/internal/telemetry"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.LoadNotifier()
	if err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	providers, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName:    "order-notifier",
		ServiceVersion: cfg.ServiceVersion,
		OTLPEndpoint:   cfg.OTLPEndpoint,
	})
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = providers.Shutdown(shutdownCtx)
	}()

	consumer := messaging.NewConsumer(cfg.KafkaBrokers, cfg.OrderEventsTopic, cfg.ConsumerGroup)
	defer func() { _ = consumer.Close() }()

	mailClient := mail.NewClient(cfg.MailServiceURL, telemetry.NewHTTPClient(10*time.Second))
	handler := notifier.NewHandler(mailClient, logger)

	logger.Info("starting order notifier", "brokers", cfg.KafkaBrokers, "topic", cfg.OrderEventsTopic)

	if err := consumer.Consume(ctx, handler.Handle); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info("consumer stopped")
			return
		}
		logger.Error("consumer error", "error", err)
		os.Exit(1)
	}
}
