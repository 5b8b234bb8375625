package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/MediSynth-io/postsvc/internal/config"
	"github.com/MediSynth-io/postsvc/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dbPath string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.yml")
	content := "database:\n  type: sqlite\n  path: " + dbPath + "\nauth:\n  jwtSecret: test-secret\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "check.db")

	db, err := database.Open(config.DatabaseConfig{Type: database.TypeSQLite, Path: dbPath})
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE users (id INTEGER PRIMARY KEY, email TEXT UNIQUE NOT NULL, password TEXT NOT NULL)`)
	require.NoError(t, err)
	_, err = db.Exec(`CREATE TABLE posttable (id INTEGER PRIMARY KEY, body TEXT NOT NULL, created_at DATETIME)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO posttable (body) VALUES ('a'), ('b')`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), writeConfig(t, dbPath), &out))
	assert.Equal(t, "database: sqlite\nusers: 0\nposts: 2\n", out.String())
}

func TestRunMissingSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")

	var out bytes.Buffer
	err := run(context.Background(), writeConfig(t, dbPath), &out)
	assert.ErrorContains(t, err, "count users")
	assert.Empty(t, out.String())
}
