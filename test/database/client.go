// Package database provides test helpers for standing up a real Postgres
// instance for integration tests.
package database

import (
	"context"
	"net/url"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/llmail-inject/ctf-control-plane/pkg/database"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// NewTestClient creates a database client backed by a real Postgres,
// with the control plane's own migrations applied.
//
// In CI (when CI_DATABASE_URL is set): connects to an external PostgreSQL
// service container. In local dev: spins up a testcontainer. Either way
// the container/connection is cleaned up when the test ends.
func NewTestClient(t *testing.T) *database.Client {
	t.Helper()
	ctx := context.Background()

	cfg := database.Config{
		Database:        "test",
		User:            "test",
		Password:        "test",
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 15 * time.Minute,
	}

	if ciURL := os.Getenv("CI_DATABASE_URL"); ciURL != "" {
		t.Log("using external PostgreSQL from CI_DATABASE_URL")
		host, port, user, password, sslmode, dbName := parseConnString(t, ciURL)
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.SSLMode, cfg.Database = host, port, user, password, sslmode, dbName
	} else {
		t.Log("starting PostgreSQL testcontainer")
		pgContainer, err := postgres.Run(ctx,
			"postgres:17-alpine",
			postgres.WithDatabase(cfg.Database),
			postgres.WithUsername(cfg.User),
			postgres.WithPassword(cfg.Password),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second)),
		)
		require.NoError(t, err)
		t.Cleanup(func() {
			if err := testcontainers.TerminateContainer(pgContainer); err != nil {
				t.Logf("failed to terminate container: %v", err)
			}
		})

		host, err := pgContainer.Host(ctx)
		require.NoError(t, err)
		mappedPort, err := pgContainer.MappedPort(ctx, "5432/tcp")
		require.NoError(t, err)
		cfg.Host = host
		cfg.Port = mappedPort.Int()
	}

	client, err := database.NewClient(ctx, cfg)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = client.Close()
	})

	return client
}

// parseConnString breaks a postgres:// DSN into the discrete fields
// database.Config expects.
func parseConnString(t *testing.T, dsn string) (host string, port int, user, password, sslmode, dbName string) {
	t.Helper()
	u, err := url.Parse(dsn)
	require.NoError(t, err)

	host = u.Hostname()
	port, err = strconv.Atoi(u.Port())
	require.NoError(t, err)
	if u.User != nil {
		user = u.User.Username()
		password, _ = u.User.Password()
	}
	sslmode = "disable"
	if v := u.Query().Get("sslmode"); v != "" {
		sslmode = v
	}
	dbName = strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		t.Fatalf("CI_DATABASE_URL %q has no database name", dsn)
	}
	return host, port, user, password, sslmode, dbName
}
