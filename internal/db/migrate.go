package db

import (
	"context"
	"database/sql"
)

const coreMigration = `
CREATE EXTENSION IF NOT EXISTS "pgcrypto";

CREATE TABLE IF NOT EXISTS accounts (
    id uuid PRIMARY KEY DEFAULT gen_random_uuid(),
    email text NOT NULL,
    password_hash text NOT NULL,
    hash_version text NOT NULL,
    email_verified boolean NOT NULL DEFAULT false,
    metadata jsonb NOT NULL DEFAULT '{}',
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS accounts_email_lower_unique
ON accounts (LOWER(email));

CREATE TABLE IF NOT EXISTS profiles (
    id uuid PRIMARY KEY REFERENCES accounts(id) ON DELETE CASCADE,
    username text,
    full_name text,
    avatar_url text,
    school text,
    updated_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS profiles_username_unique
ON profiles (username);
`

func RunCoreMigration(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, coreMigration)
	return err
}
