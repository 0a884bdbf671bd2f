package testutil

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meetstack/event-rsvp-api/internal/adapters/postgres"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
	id              BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
	name            TEXT NOT NULL,
	description     TEXT,
	starts_at       TIMESTAMPTZ,
	ends_at         TIMESTAMPTZ,
	max_guest_limit INT NOT NULL DEFAULT 0,
	online          BOOLEAN NOT NULL DEFAULT FALSE,
	created_at      TIMESTAMPTZ NOT NULL,
	updated_at      TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
	id           BIGINT PRIMARY KEY,
	display_name TEXT NOT NULL,
	avatar_url   TEXT NOT NULL DEFAULT '',
	profile_url  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS event_rsvps (
	id         UUID PRIMARY KEY,
	event_id   BIGINT NOT NULL,
	user_id    BIGINT NOT NULL,
	status     TEXT NOT NULL,
	guests     INT NOT NULL DEFAULT 0,
	anonymous  BOOLEAN NOT NULL DEFAULT FALSE,
	updated_at TIMESTAMPTZ NOT NULL,
	UNIQUE (event_id, user_id)
);
`

// OpenMigratedPool connects to the database named by DATABASE_URL, applies
// the schema, and truncates all tables. Tests calling it are skipped when the
// variable is unset.
func OpenMigratedPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set; skipping postgres tests")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, dsn, postgres.PoolOptions{})
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}
	t.Cleanup(pool.Close)

	if _, err := pool.Exec(ctx, schema); err != nil {
		t.Fatalf("apply schema: %v", err)
	}
	if _, err := pool.Exec(ctx, `TRUNCATE event_rsvps, events RESTART IDENTITY; DELETE FROM users`); err != nil {
		t.Fatalf("reset tables: %v", err)
	}
	return pool
}
