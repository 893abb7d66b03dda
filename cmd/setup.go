package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/projarc/internal/shared"
	"github.com/urfave/cli/v3"
)

// Setup creates the configuration file from the template when missing, then initializes the history database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	config := r.config
	if _, err := os.Stat(configPath); err == nil {
		r.logger.Info("config file exists", "path", configPath)
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
		r.logger.Info("config file created", "path", configPath)
		if config, err = shared.LoadConfig(configPath); err != nil {
			return fmt.Errorf("failed to load created config: %w", err)
		}
		r.config = config
	}

	return r.SetupDatabase(ctx, cmd)
}

// SetupDatabase initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	if r.config.Database.Disabled {
		r.logger.Info("history database disabled, skipping")
		return nil
	}

	r.logger.Info("initializing database", "path", r.config.Database.Path)

	db, err := shared.OpenHistory(r.config.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	migrator, err := shared.NewMigrator(db, r.logger)
	if err != nil {
		return err
	}
	if cmd.Bool("reset-history") {
		r.logger.Warn("resetting run history", "path", r.config.Database.Path)
		if err := migrator.Reset(ctx); err != nil {
			return fmt.Errorf("failed to reset history: %w", err)
		}
	}

	version, err := migrator.Version(ctx)
	if err != nil {
		return err
	}
	r.logger.Info("setup complete", "database", r.config.Database.Path, "schema", version)
	return nil
}
