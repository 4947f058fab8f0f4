package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
)

// Schema mirrors the hosted tables the dashboard was built against. Category rows
// cannot be deleted while products reference them.
const Schema = `
CREATE TABLE IF NOT EXISTS kategorie (
    id   SERIAL PRIMARY KEY,
    nazwa TEXT NOT NULL CHECK (btrim(nazwa) <> ''),
    opis  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS produkty (
    id           SERIAL PRIMARY KEY,
    nazwa        TEXT NOT NULL CHECK (btrim(nazwa) <> ''),
    liczba       INTEGER NOT NULL DEFAULT 0 CHECK (liczba >= 0),
    cena         DOUBLE PRECISION NOT NULL DEFAULT 0 CHECK (cena >= 0),
    kategoria_id INTEGER NOT NULL REFERENCES kategorie (id) ON DELETE RESTRICT
);

CREATE INDEX IF NOT EXISTS produkty_kategoria_id_idx ON produkty (kategoria_id);
`

func Connect(ctx context.Context, databaseURL string) (*sql.DB, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL cannot be empty")
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	return db, nil
}

// EnsureSchema creates the tables when they are missing.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
