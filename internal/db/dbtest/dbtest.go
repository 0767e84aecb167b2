// Package dbtest connects tests to the PostgreSQL database named by TEST_DB_DSN.
package dbtest

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/nekogravitycat/hotel-booking-backend/internal/db"
)

// Open returns a migrated pool with empty tables, or skips the test
// when TEST_DB_DSN is not set. The pool is closed when the test ends.
func Open(t *testing.T) *pgxpool.Pool {
	t.Helper()

	loadDotEnv()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN is not set")
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, dsn, 20)
	if err != nil {
		t.Fatalf("connect test database: %v", err)
	}
	t.Cleanup(pool.Close)

	if err := db.Migrate(ctx, pool); err != nil {
		t.Fatalf("migrate test database: %v", err)
	}
	Truncate(t, pool)
	return pool
}

// Truncate empties every application table.
func Truncate(t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		"TRUNCATE TABLE public.bookings, public.rooms, public.users RESTART IDENTITY CASCADE")
	if err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}

// loadDotEnv loads the .env next to go.mod, if any.
func loadDotEnv() {
	dir, err := os.Getwd()
	if err != nil {
		return
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			if err := godotenv.Load(filepath.Join(dir, ".env")); err != nil {
				log.Printf("No .env file found or failed to load: %v", err)
			}
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}
