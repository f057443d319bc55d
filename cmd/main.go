package main

import (
	"context"
	"os"

	"github.com/mwojcik/artistmix/internal/repositories"
	"github.com/mwojcik/artistmix/internal/services"
	"github.com/mwojcik/artistmix/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat("config.toml"); err == nil {
		if loadedConfig, err := shared.LoadConfig("config.toml"); err == nil {
			config = loadedConfig
		}
	}

	var store services.CredentialStore
	if db, err := shared.NewDatabase(config.Database); err == nil {
		store = repositories.NewCredentialRepository(db)
	} else {
		logger.Warn("failed to open database, run 'artistmix setup' first", "error", err)
	}

	var tokens *services.TokenManager
	var spotify *services.SpotifyClient
	if store != nil && config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if mgr, err := services.NewTokenManager(store, config.Credentials.Spotify.Map(), logger); err == nil {
			tokens = mgr
			spotify = services.NewSpotifyClient(store, config.Credentials.Spotify.BaseURL, nil)
		} else {
			logger.Warn("failed to initialize Spotify credentials", "error", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:  config,
		Store:   store,
		Tokens:  tokens,
		Spotify: spotify,
		Logger:  logger,
	})

	app := &cli.Command{
		Name:     "artistmix",
		Usage:    "Build Spotify playlists from your favorite artists' top tracks",
		Version:  "0.1.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("application error: %v", err)
	}
}
