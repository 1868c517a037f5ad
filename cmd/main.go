package main

import (
	"context"
	"os"

	"github.com/desertthunder/hearify/internal/repositories"
	"github.com/desertthunder/hearify/internal/services"
	"github.com/desertthunder/hearify/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	if err := shared.LoadEnvFile(".env"); err != nil {
		logger.Warn("failed to load .env", "error", err)
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config.toml, using defaults", "error", err)
		}
	}
	config.ApplyEnv(os.LookupEnv)

	var catalog services.Catalog
	if config.Credentials.Spotify.Configured() {
		if svc, err := services.NewSpotifyService(services.SpotifyOpts{
			ClientID:     config.Credentials.Spotify.ClientID,
			ClientSecret: config.Credentials.Spotify.ClientSecret,
		}); err == nil {
			catalog = svc
		} else {
			logger.Warn("spotify client unavailable", "error", err)
		}
	}

	var lyrics services.Lyrics
	if config.Credentials.Genius.AccessToken != "" {
		if svc, err := services.NewGeniusService(services.GeniusOpts{
			AccessToken:       config.Credentials.Genius.AccessToken,
			RequestsPerSecond: config.Crawler.RequestsPerSecond,
		}); err == nil {
			lyrics = svc
		} else {
			logger.Warn("genius client unavailable", "error", err)
		}
	}

	store, db, err := repositories.Open(config.Database)
	if err != nil {
		logger.Fatalf("failed to open song store: %v", err)
	}
	defer db.Close()

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Catalog: catalog,
		Lyrics:  lyrics,
		Store:   store,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "hearify",
		Usage:    "Search song lyrics stored locally, falling back to Spotify",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		db.Close()
		logger.Fatalf("application error: %v", err)
	}
}
