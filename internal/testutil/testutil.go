// Package testutil provides test helpers for the residence console: Postgres and Redis
// fixtures that skip when the service is unavailable, and an in-memory fake REST API.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	// Import pgx driver for database/sql compatibility in tests.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/target/residence-console/internal/migrate"
)

// TestingTB is an interface that covers both *testing.T and *testing.B.
type TestingTB interface {
	Helper()
	Skip(args ...any)
	Skipf(format string, args ...any)
	Fatal(args ...any)
	Fatalf(format string, args ...any)
	Logf(format string, args ...any)
	Cleanup(func())
}

// TestDBConfig holds configuration for the test database.
type TestDBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// DefaultTestDBConfig returns the test database configuration.
// Defaults to port 55432 (local docker-compose test profile); CI sets TEST_DB_PORT.
func DefaultTestDBConfig() TestDBConfig {
	return TestDBConfig{
		Host:     getEnvOrDefault("TEST_DB_HOST", "localhost"),
		Port:     getEnvOrDefault("TEST_DB_PORT", "55432"),
		User:     getEnvOrDefault("TEST_DB_USER", "console"),
		Password: getEnvOrDefault("TEST_DB_PASSWORD", "console"),
		DBName:   getEnvOrDefault("TEST_DB_NAME", "console"),
	}
}

// DSN renders the config as a pgx connection string.
func (c TestDBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		c.User, c.Password, net.JoinHostPort(c.Host, c.Port), c.DBName)
}

// SetupTestDB opens the test database, runs migrations and truncates console tables.
// The test is skipped when the database is unreachable unless TEST_REQUIRE_DB is set.
func SetupTestDB(t TestingTB) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", DefaultTestDBConfig().DSN())
	if err != nil {
		skipOrFail(t, requireDB(), "test database not available: %v", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		skipOrFail(t, requireDB(), "test database not available: %v", err)
		return nil
	}
	if err := migrate.Run(ctx, db); err != nil {
		_ = db.Close()
		t.Fatalf("run migrations: %v", err)
	}
	if _, err := db.ExecContext(ctx, "TRUNCATE console_activity"); err != nil {
		_ = db.Close()
		t.Fatalf("truncate console_activity: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Logf("warning: close test db: %v", err)
		}
	})
	return db
}

// SetupTestRedis returns a client on a dedicated Redis DB, flushed before use.
// The address comes from REDIS_ADDR, then localhost:6379, then localhost:56379.
func SetupTestRedis(t TestingTB) *redis.Client {
	t.Helper()

	candidates := []string{"localhost:6379", "localhost:56379"}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		candidates = []string{addr}
	}

	db := 1
	if v := os.Getenv("TEST_REDIS_DB"); v != "" {
		if i, err := strconv.Atoi(v); err == nil && i >= 0 {
			db = i
		}
	}

	for _, addr := range candidates {
		client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := client.Ping(ctx).Err()
		if err == nil {
			client.FlushDB(ctx)
			cancel()
			return client
		}
		cancel()
		t.Logf("redis not available at %s: %v", addr, err)
		_ = client.Close()
	}

	skipOrFail(t, requireRedis(), "redis not available for testing")
	return nil
}

func skipOrFail(t TestingTB, require bool, format string, args ...any) {
	t.Helper()
	if require {
		t.Fatalf(format, args...)
	}
	t.Skipf(format, args...)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envBool parses common truthy values from env vars.
func envBool(key string) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes", "y":
		return true
	default:
		return false
	}
}

func requireDB() bool { return envBool("TEST_REQUIRE_DB") || envBool("TEST_REQUIRE_INFRA") }
func requireRedis() bool { return envBool("TEST_REQUIRE_REDIS") || envBool("TEST_REQUIRE_INFRA") }

// FixedTimeFunc returns a function that always returns the same time.
func FixedTimeFunc(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
