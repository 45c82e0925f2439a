// ABOUTME: Config file CLI command
// ABOUTME: Writes the current settings plus generated secrets to the config file
package cli

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/harperreed/leadflow/config"
)

// ConfigInitCommand saves the effective configuration, with any flag values
// applied, and fills in a session secret and token key when they are unset.
func ConfigInitCommand(_ context.Context, app *App, args []string) error {
	cfg := *app.Config

	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	path := fs.String("path", config.Path(), "Config file to write")
	force := fs.Bool("force", false, "Overwrite an existing config file")
	fs.StringVar(&cfg.GoogleClientID, "google-client-id", cfg.GoogleClientID, "Google OAuth client ID")
	fs.StringVar(&cfg.GoogleClientSecret, "google-client-secret", cfg.GoogleClientSecret, "Google OAuth client secret")
	fs.StringVar(&cfg.GoogleRedirectURL, "google-redirect-url", cfg.GoogleRedirectURL, "OAuth redirect URL")
	fs.StringVar(&cfg.User, "user", cfg.User, "User id CLI commands act for")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := os.Stat(*path); err == nil && !*force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", *path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to check config file: %w", err)
	}

	var err error
	if cfg.SessionSecret == "" {
		if cfg.SessionSecret, err = randomHex(32); err != nil {
			return err
		}
	}
	if cfg.TokenKey == "" {
		if cfg.TokenKey, err = randomHex(32); err != nil {
			return err
		}
	}

	if err := cfg.Save(*path); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(app.Out, "✓ Wrote config to %s\n", *path)
	if !cfg.GoogleConfigured() {
		_, _ = fmt.Fprintln(app.Out, "  Set google_client_id and google_client_secret before 'leadflow calendar connect'")
	}
	return nil
}

func randomHex(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
