package db

import (
	"io/fs"
	"strings"
	"testing"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	t.Parallel()

	entries, err := fs.ReadDir(migrationFS, "migrations")
	if err != nil {
		t.Fatalf("read migrations: %v", err)
	}
	ups, downs := 0, 0
	for _, entry := range entries {
		switch {
		case strings.HasSuffix(entry.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(entry.Name(), ".down.sql"):
			downs++
		}
	}
	if ups == 0 || ups != downs {
		t.Fatalf("expected paired migrations, got %d up and %d down", ups, downs)
	}
}

func TestSessionsMigrationMatchesPgxstoreSchema(t *testing.T) {
	t.Parallel()

	raw, err := fs.ReadFile(migrationFS, "migrations/000001_create_sessions.up.sql")
	if err != nil {
		t.Fatalf("read migration: %v", err)
	}
	sql := string(raw)
	for _, want := range []string{"CREATE TABLE IF NOT EXISTS sessions", "token TEXT PRIMARY KEY", "data BYTEA NOT NULL", "expiry TIMESTAMPTZ NOT NULL"} {
		if !strings.Contains(sql, want) {
			t.Fatalf("migration missing %q", want)
		}
	}
}

func TestMigrationsRejectsBadURL(t *testing.T) {
	t.Parallel()

	if _, err := Migrations("not-a-database-url"); err == nil {
		t.Fatalf("expected error for invalid database URL")
	}
}
