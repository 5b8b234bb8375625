package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/MediSynth-io/postsvc/internal/api"
	"github.com/MediSynth-io/postsvc/internal/config"
	"github.com/MediSynth-io/postsvc/internal/database"
	"github.com/joho/godotenv"
)

const version = "0.1.0"

// loadEnvFile exports the variables of a .env file into the process
// environment. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Printf("No env file at %s, skipping", path)
			return nil
		}
		return err
	}
	log.Printf("Loaded environment from %s", path)
	return nil
}

func initializeAPI(configPath string) (*api.Api, *database.DB, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, nil, err
	}

	api, err := api.NewApi(*cfg, db)
	if err != nil {
		db.Close()
		return nil, nil, err
	}

	return api, db, nil
}

func main() {
	configPath := flag.String("config", "app.yml", "Path to configuration file")
	envPath := flag.String("env", ".env", "Path to an optional .env file")
	flag.Parse()

	log.Printf("Starting postsvc API v%s with config: %s", version, *configPath)

	if err := loadEnvFile(*envPath); err != nil {
		log.Fatal(err)
	}

	api, db, err := initializeAPI(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := api.Serve(ctx); err != nil {
		log.Printf("API server stopped: %v", err)
		return
	}
	log.Println("API server stopped")
}
