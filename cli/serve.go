// ABOUTME: HTTP server and session token subcommands
// ABOUTME: Runs the web API until interrupted and mints session tokens for API clients
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/leadflow/web"
)

// ServeCommand runs the HTTP API until SIGINT or SIGTERM.
func ServeCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", app.Config.ListenAddr, "Listen address")
	secure := fs.Bool("secure-cookies", false, "Mark cookies Secure (serve behind HTTPS)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := app.requireOAuth(); err != nil {
		return err
	}
	sessions, err := web.NewSessions(app.Config.SessionSecret)
	if err != nil {
		return err
	}

	server := web.NewServer(app.Store, app.OAuth, sessions, app.ServiceOptions...)
	server.SecureCookies = *secure

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	_, _ = fmt.Fprintf(app.Out, "Listening on %s\n", *addr)
	return server.Start(ctx, *addr)
}

// SessionTokenCommand prints a session JWT for the given user.
func SessionTokenCommand(app *App, args []string) error {
	fs := flag.NewFlagSet("session-token", flag.ContinueOnError)
	user := fs.String("user", app.Config.User, "User id the token identifies")
	ttl := fs.Duration("ttl", web.DefaultSessionTTL, "Token lifetime")
	if err := fs.Parse(args); err != nil {
		return err
	}

	sessions, err := web.NewSessions(app.Config.SessionSecret)
	if err != nil {
		return err
	}

	token, err := sessions.Issue(*user, *ttl)
	if err != nil {
		return fmt.Errorf("failed to issue token: %w", err)
	}

	_, _ = fmt.Fprintln(app.Out, token)
	return nil
}
