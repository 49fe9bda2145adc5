package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/dice-autopilot/internal/auth"
	"github.com/jonathan/dice-autopilot/internal/config"
	"github.com/jonathan/dice-autopilot/internal/driver"
	"github.com/jonathan/dice-autopilot/internal/secrets"
)

// loadConfig reads the config file when a path was given, otherwise starts
// from defaults so flag-only invocations work.
func loadConfig(path string) (config.Config, error) {
	if path == "" {
		return config.Config{DataDir: config.DefaultDataDir}, nil
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("failed to load config: %w", err)
	}
	return *cfg, nil
}

// applyCommonOverrides copies the shared flag values into cfg when the
// operator set them explicitly; config-file values win otherwise.
func applyCommonOverrides(cmd *cobra.Command, cfg *config.Config, email, dataDir *string, headless, verbose *bool) {
	if cmd.Flags().Changed("email") {
		cfg.Email = *email
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = *dataDir
	}
	if cmd.Flags().Changed("headless") {
		cfg.Headless = *headless
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = *verbose
	}
}

// browserSession resolves the account credentials and starts the single
// browser session every pipeline stage shares.
func browserSession(ctx context.Context, cfg config.Config) (*driver.Chrome, auth.Credentials, error) {
	if cfg.Email == "" {
		return nil, auth.Credentials{}, fmt.Errorf("account email is required (via --email or config)")
	}
	password, err := secrets.GetPassword(cfg.Email)
	if err != nil {
		return nil, auth.Credentials{}, err
	}
	creds := auth.Credentials{Email: cfg.Email, Password: password}
	if err := creds.Validate(); err != nil {
		return nil, auth.Credentials{}, err
	}

	chrome, err := driver.NewChrome(ctx, driver.ChromeOptions{Headless: cfg.Headless, Verbose: cfg.Verbose})
	if err != nil {
		return nil, auth.Credentials{}, fmt.Errorf("failed to start browser session: %w", err)
	}
	return chrome, creds, nil
}
