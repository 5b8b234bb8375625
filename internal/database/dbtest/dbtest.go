// Package dbtest opens throwaway databases carrying the service schema.
package dbtest

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MediSynth-io/postsvc/internal/config"
	"github.com/MediSynth-io/postsvc/internal/database"
)

var (
	//go:embed schema_sqlite.sql
	sqliteSchema string

	//go:embed schema_postgres.sql
	postgresSchema string
)

// Open returns a fresh SQLite database in t.TempDir(), closed when the test ends.
func Open(t testing.TB) *database.DB {
	t.Helper()

	db, err := database.Open(config.DatabaseConfig{
		Type: database.TypeSQLite,
		Path: filepath.Join(t.TempDir(), "test.db"),
	})
	if err != nil {
		t.Fatalf("open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	apply(t, db, sqliteSchema)
	return db
}

// OpenPostgres connects to the PostgreSQL test database and recreates the
// schema. The test is skipped unless DB_TYPE=postgres; DB_HOST, DB_PORT,
// DB_NAME, DB_USER and DB_PASSWORD override the defaults.
func OpenPostgres(t testing.TB) *database.DB {
	t.Helper()

	if os.Getenv("DB_TYPE") != database.TypePostgres {
		t.Skip("DB_TYPE=postgres not set, skipping PostgreSQL test")
	}

	db, err := database.Open(config.DatabaseConfig{
		Type:     database.TypePostgres,
		Host:     envOr("DB_HOST", "localhost"),
		Port:     envOr("DB_PORT", "5433"),
		Name:     envOr("DB_NAME", "postsvc_test"),
		User:     envOr("DB_USER", "postsvc_test"),
		Password: envOr("DB_PASSWORD", "testpassword"),
		SSLMode:  "disable",
	})
	if err != nil {
		t.Fatalf("open postgres test database: %v", err)
	}

	dropTables(t, db)
	t.Cleanup(func() {
		dropTables(t, db)
		db.Close()
	})

	apply(t, db, postgresSchema)
	return db
}

func dropTables(t testing.TB, db *database.DB) {
	if _, err := db.Exec("DROP TABLE IF EXISTS posttable, users"); err != nil {
		t.Fatalf("drop test tables: %v", err)
	}
}

func apply(t testing.TB, db *database.DB, schema string) {
	t.Helper()
	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("apply test schema: %v", err)
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
