package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/desertthunder/hitscope/internal/shared"
)

// Setup writes config.toml from the embedded template when it is missing, then migrates
// the database. With --rollback it reverts the latest migration instead.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := r.configPath
	if configPath == "" {
		configPath = "config.toml"
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return err
		}
		r.writePlain("✓ Created %s\n", configPath)
	}

	if cmd.Bool("rollback") {
		db, err := shared.NewDatabase(r.config.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to create database: %w", err)
		}
		defer db.Close()

		if err := shared.RollbackMigration(db); err != nil {
			return fmt.Errorf("failed to roll back migration: %w", err)
		}
		r.writePlain("✓ Rolled back the latest migration on %s\n", r.config.Database.Path)
		return nil
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)
	if _, err := r.database(); err != nil {
		return err
	}

	r.writePlain("✓ Database ready at %s\n", r.config.Database.Path)
	if !r.config.Credentials.Spotify.HasCredentials() {
		r.writePlainln("Spotify enrichment is off. Set SPOTIFY_CLIENT_ID and SPOTIFY_CLIENT_SECRET in .env or %s.", configPath)
	}
	return nil
}
