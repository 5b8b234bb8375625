// Command dbcheck verifies that the configured database is reachable and
// carries the tables postsvc expects.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"time"

	"github.com/MediSynth-io/postsvc/internal/config"
	"github.com/MediSynth-io/postsvc/internal/database"
	"github.com/MediSynth-io/postsvc/internal/store"
	"github.com/joho/godotenv"
)

func run(ctx context.Context, configPath string, out io.Writer) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	stats, err := store.New(db).Stats(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "database: %s\nusers: %d\nposts: %d\n", db.Type, stats.Users, stats.Posts)
	return nil
}

func main() {
	configPath := flag.String("config", "app.yml", "Path to configuration file")
	envPath := flag.String("env", ".env", "Path to an optional .env file")
	flag.Parse()

	if err := godotenv.Load(*envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Failed to load %s: %v", *envPath, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := run(ctx, *configPath, os.Stdout); err != nil {
		log.Fatalf("Database check failed: %v", err)
	}
}
