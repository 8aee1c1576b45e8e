package store

import "context"

// The single table the service owns. Created idempotently at startup;
// the named unique constraints are what conflict mapping keys on.
const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            BIGSERIAL PRIMARY KEY,
	username      TEXT NOT NULL,
	email         TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	CONSTRAINT users_username_key UNIQUE (username),
	CONSTRAINT users_email_key UNIQUE (email)
)`

// EnsureSchema creates the users table if it does not exist yet.
func EnsureSchema(ctx context.Context, db *DB) error {
	_, err := db.Pool.Exec(ctx, schema)
	return err
}
