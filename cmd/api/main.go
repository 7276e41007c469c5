package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"golang.org/x/sync/errgroup"

	"github.com/joao-fontenele/storefront-orders/internal/api"
	"github.com/joao-fontenele/storefront-orders/internal/config"
	"github.com/joao-fontenele/storefront-orders/internal/messaging"
	"github.com/joao-fontenele/storefront-orders/internal/orders"
	"github.com/joao-fontenele/storefront-orders/internal/telemetry"
)

const serviceName = "storefront-api"

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	if err := run(logger); err != nil {
		logger.Error("api stopped", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.LoadAPI()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	providers, err := telemetry.Setup(ctx, telemetry.Config{
		ServiceName:    serviceName,
		ServiceVersion: cfg.ServiceVersion,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		RuntimeMetrics: true,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown error", "error", err)
		}
	}()

	db, err := telemetry.OpenDB(cfg.PostgresURL)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxOpenConns)

	if err := db.PingContext(ctx); err != nil {
		return err
	}

	orderMetrics, err := telemetry.NewOrderMetrics(otel.Meter("storefront/orders"))
	if err != nil {
		return err
	}

	opts := []orders.Option{orders.WithMetrics(orderMetrics)}
	if len(cfg.KafkaBrokers) > 0 {
		producer := messaging.NewProducer(cfg.KafkaBrokers, cfg.OrderEventsTopic)
		defer func() { _ = producer.Close() }()
		opts = append(opts, orders.WithPublisher(producer))
	} else {
		logger.Info("KAFKA_BROKERS not set, order events disabled")
	}

	workflow := orders.NewWorkflow(orders.NewPostgresPersistence(db), logger, opts...)
	mux := api.NewRouter(api.NewHandlers(db, workflow, logger), providers.MetricsHandler)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      telemetry.NewHTTPHandler(mux, serviceName),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting storefront api", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
