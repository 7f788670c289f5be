package repositories_test

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"portfolio-api/src/config"
	"portfolio-api/src/database"
)

// setupTestDB connects to the database named by TEST_DATABASE_URL, applies the
// migrations and truncates every table. Tests are skipped when the variable is
// unset so the suite stays runnable without infrastructure.
func setupTestDB(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping repository tests")
	}

	cfg := &config.Config{}
	cfg.Database.URL = dsn

	pool, err := database.SetupDB(cfg)
	if err != nil {
		t.Fatalf("failed to connect to test database: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := database.RunMigrations(context.Background(), cfg); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	for _, table := range []string{"portfolios", "prices", "tickers", "users"} {
		if _, err := pool.Exec(context.Background(), fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			t.Fatalf("failed to truncate table %s: %v", table, err)
		}
	}
	return pool
}
