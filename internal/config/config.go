package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	defaultOrderEventsTopic = "order.events"
	defaultOTLPEndpoint     = "localhost:4317"
	defaultServiceVersion   = "0.1.0"
	defaultMaxOpenConns     = 25
)

// Telemetry settings shared by every binary.
type Telemetry struct {
	OTLPEndpoint   string
	ServiceVersion string
}

type API struct {
	Telemetry
	Port        string
	PostgresURL string
	// KafkaBrokers is empty when order events are disabled.
	KafkaBrokers     []string
	OrderEventsTopic string
	MaxOpenConns     int
}

func LoadAPI() (*API, error) {
	cfg := &API{
		Telemetry:        loadTelemetry(),
		Port:             getEnvOrDefault("PORT", "8080"),
		PostgresURL:      os.Getenv("POSTGRES_URL"),
		KafkaBrokers:     splitList(os.Getenv("KAFKA_BROKERS")),
		OrderEventsTopic: getEnvOrDefault("ORDER_EVENTS_TOPIC", defaultOrderEventsTopic),
	}

	if cfg.PostgresURL == "" {
		return nil, fmt.Errorf("POSTGRES_URL environment variable is required")
	}

	n, err := getIntOrDefault("DB_MAX_OPEN_CONNS", defaultMaxOpenConns)
	if err != nil {
		return nil, err
	}
	cfg.MaxOpenConns = n

	return cfg, nil
}

type Notifier struct {
	Telemetry
	KafkaBrokers     []string
	OrderEventsTopic string
	ConsumerGroup    string
	MailServiceURL   string
}

func LoadNotifier() (*Notifier, error) {
	cfg := &Notifier{
		Telemetry:        loadTelemetry(),
		KafkaBrokers:     splitList(os.Getenv("KAFKA_BROKERS")),
		OrderEventsTopic: getEnvOrDefault("ORDER_EVENTS_TOPIC", defaultOrderEventsTopic),
		ConsumerGroup:    getEnvOrDefault("CONSUMER_GROUP", "order-notifier"),
		MailServiceURL:   os.Getenv("MAIL_SERVICE_URL"),
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, fmt.Errorf("KAFKA_BROKERS environment variable is required")
	}
	if cfg.MailServiceURL == "" {
		return nil, fmt.Errorf("MAIL_SERVICE_URL environment variable is required")
	}

	return cfg, nil
}

type Mail struct {
	Telemetry
	Port string
}

func LoadMail() (*Mail, error) {
	return &Mail{
		Telemetry: loadTelemetry(),
		Port:      getEnvOrDefault("PORT", "8084"),
	}, nil
}

type Migrate struct {
	PostgresURL    string
	MigrationsPath string
}

func LoadMigrate() (*Migrate, error) {
	cfg := &Migrate{
		PostgresURL:    os.Getenv("POSTGRES_URL"),
		MigrationsPath: getEnvOrDefault("MIGRATIONS_PATH", "file://migrations"),
	}

	if cfg.PostgresURL == "" {
		return nil, fmt.Errorf("POSTGRES_URL environment variable is required")
	}

	return cfg, nil
}

func loadTelemetry() Telemetry {
	return Telemetry{
		OTLPEndpoint:   getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", defaultOTLPEndpoint),
		ServiceVersion: getEnvOrDefault("SERVICE_VERSION", defaultServiceVersion),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", key, raw)
	}
	return n, nil
}

// splitList splits a comma separated list, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
