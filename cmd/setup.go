package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/steamwatch/internal/models"
	"github.com/desertthunder/steamwatch/internal/shared"
	"github.com/urfave/cli/v3"
)

// SetupDatabase writes a config file when none exists, then initializes the database and runs migrations.
func (r *Runner) SetupDatabase(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	if _, err := os.Stat(configPath); err != nil {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			r.logger.Warn("failed to create config file, using current settings", "error", err)
		} else {
			r.logger.Info("config file created", "path", configPath)
		}
	}

	config := r.config
	if loaded, err := shared.LoadConfig(configPath); err != nil {
		r.logger.Warn("failed to load config, using current settings", "path", configPath, "error", err)
	} else {
		config = loaded
	}

	r.logger.Info("initializing database", "path", config.Database.Path)

	db, err := shared.NewDatabase(config.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)

	r.logger.Info("running database migrations")
	if err := shared.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	version, err := shared.SchemaVersion(db)
	if err != nil {
		return err
	}
	r.logger.Infof("setup complete for database: %v (schema version %d)", config.Database.Path, version)
	return nil
}

// SetupCredentials stores the Steam session cookies the remote store needs for auto-purchase.
//
// Accepts a cURL command copied from a logged-in steamcommunity.com request.
func (r *Runner) SetupCredentials(ctx context.Context, cmd *cli.Command) error {
	curlCmd := cmd.String("curl")
	curlFile := cmd.String("curl-file")

	if curlCmd == "" && curlFile == "" {
		return fmt.Errorf("%w: either --curl or --curl-file must be provided", shared.ErrMissingArgument)
	}

	if curlCmd != "" && curlFile != "" {
		return fmt.Errorf("%w: cannot specify both --curl and --curl-file", shared.ErrInvalidArgument)
	}

	var curlHeaders *shared.CurlHeaders
	var err error

	if curlFile != "" {
		curlHeaders, err = shared.ParseCurlFile(curlFile)
		if err != nil {
			return fmt.Errorf("failed to parse cURL file: %w", err)
		}
		r.logger.Info("parsed cURL from file", "file", curlFile)
	} else {
		curlHeaders, err = shared.ParseCurlCommand(curlCmd)
		if err != nil {
			return fmt.Errorf("failed to parse cURL command: %w", err)
		}
		r.logger.Info("parsed cURL command")
	}

	loginSecure, sessionID, err := curlHeaders.SteamCredentials()
	if err != nil {
		return err
	}

	ctl, err := r.signedIn(ctx)
	if err != nil {
		return err
	}

	creds := models.Credentials{SteamCookie: loginSecure, SessionID: sessionID}
	if err := ctl.SaveCredentials(ctx, creds); err != nil {
		return err
	}

	r.writePlain("✓ Steam session saved for auto-purchase\n")
	r.writePlainln("Next steps:")
	r.writePlain("1. Run 'steamwatch tracks auto <id> on' to enable auto-purchase for an item\n")
	r.writePlain("2. Run 'steamwatch watch' to keep prices refreshed\n")
	return nil
}
