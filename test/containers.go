//go:build integration

package test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/joao-fontenele/storefront-orders/internal/telemetry"
)

const (
	postgresImage = "postgres:18-alpine"
	kafkaImage    = "confluentinc/confluent-local:7.8.0"
)

// StartPostgres runs a migrated Postgres container for the lifetime of t and
// returns its connection string.
func StartPostgres(ctx context.Context, t *testing.T) string {
	t.Helper()

	container, err := postgres.Run(ctx, postgresImage,
		postgres.WithDatabase("storefront"),
		postgres.WithUsername("storefront"),
		postgres.WithPassword("storefront"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start postgres")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "postgres connection string")
	require.NoError(t, migrateUp(dsn), "migrate schema")

	return dsn
}

// OpenDB connects through the instrumented driver and closes the pool when t
// finishes.
func OpenDB(t *testing.T, dsn string) *sql.DB {
	t.Helper()

	db, err := telemetry.OpenDB(dsn)
	require.NoError(t, err, "open database")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.Ping(), "ping database")
	return db
}

func migrateUp(dsn string) error {
	m, err := migrate.New(migrationsSource(), dsn)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func migrationsSource() string {
	_, file, _, _ := runtime.Caller(0)
	root := filepath.Dir(filepath.Dir(file))
	return "file://" + filepath.Join(root, "migrations")
}

// StartKafka runs a single-node KRaft broker for the lifetime of t.
func StartKafka(ctx context.Context, t *testing.T) []string {
	t.Helper()

	container, err := kafka.Run(ctx, kafkaImage, kafka.WithClusterID("storefront-test"))
	testcontainers.CleanupContainer(t, container)
	require.NoError(t, err, "start kafka")

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err, "kafka brokers")
	return brokers
}
