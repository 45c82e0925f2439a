// ABOUTME: Google Calendar CLI commands
// ABOUTME: Connects through a local OAuth callback, reports status, disconnects, and shows the agenda
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"runtime"
	"text/tabwriter"
	"time"

	"github.com/oklog/ulid/v2"
	"golang.org/x/term"

	"github.com/harperreed/leadflow/sync"
	"github.com/harperreed/leadflow/tui"
)

// openURL opens the consent page; tests replace it.
var openURL = openBrowser

// CalendarConnectCommand runs the OAuth consent flow with a callback server on
// the configured redirect URL. Port 0 picks a free loopback port.
func CalendarConnectCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("connect", flag.ContinueOnError)
	noBrowser := fs.Bool("no-browser", false, "Print the consent URL without opening a browser")
	timeout := fs.Duration("timeout", 5*time.Minute, "How long to wait for consent")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := app.requireOAuth(); err != nil {
		return err
	}

	redirect, err := url.Parse(app.OAuth.RedirectURL)
	if err != nil {
		return fmt.Errorf("invalid redirect URL: %w", err)
	}

	listener, err := net.Listen("tcp", redirect.Host)
	if err != nil {
		return fmt.Errorf("failed to listen for OAuth callback: %w", err)
	}

	oauthCfg := *app.OAuth
	if redirect.Port() == "0" {
		redirect.Host = listener.Addr().String()
		oauthCfg.RedirectURL = redirect.String()
	}

	state := ulid.Make().String()
	codes := make(chan string, 1)
	errs := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc(redirect.Path, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		var err error
		switch {
		case q.Get("error") != "":
			err = fmt.Errorf("authorization denied: %s", q.Get("error"))
		case q.Get("state") != state:
			err = errors.New("OAuth state mismatch")
		case q.Get("code") == "":
			err = errors.New("no authorization code received")
		}

		if err != nil {
			select {
			case errs <- err:
			default:
			}
			http.Error(w, "Authorization failed. You can close this window.", http.StatusBadRequest)
			return
		}

		select {
		case codes <- q.Get("code"):
		default:
		}
		_, _ = fmt.Fprint(w, "Authorization successful! You can close this window.")
	})

	server := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() { _ = server.Serve(listener) }()
	defer func() { _ = server.Close() }()

	connections := sync.NewConnections(app.Store, &oauthCfg)
	authURL := connections.AuthCodeURL(state)

	_, _ = fmt.Fprintf(app.Out, "\nIf browser doesn't open, visit this URL:\n%s\n\n", authURL)
	if !*noBrowser {
		_ = openURL(authURL)
	}

	var code string
	select {
	case code = <-codes:
	case err := <-errs:
		return fmt.Errorf("OAuth flow failed: %w", err)
	case <-time.After(*timeout):
		return errors.New("timed out waiting for authorization")
	case <-ctx.Done():
		return ctx.Err()
	}

	if err := connections.Connect(ctx, app.Config.User, code); err != nil {
		return fmt.Errorf("failed to connect calendar: %w", err)
	}

	_, _ = fmt.Fprintf(app.Out, "✓ Google Calendar connected for %s\n", app.Config.User)
	return nil
}

// CalendarStatusCommand reports whether the user has a stored credential.
func CalendarStatusCommand(ctx context.Context, app *App, _ []string) error {
	connected, err := app.connections().IsConnected(ctx, app.Config.User)
	if err != nil {
		return err
	}

	if connected {
		_, _ = fmt.Fprintf(app.Out, "✓ Google Calendar connected for %s\n", app.Config.User)
	} else {
		_, _ = fmt.Fprintf(app.Out, "✗ Google Calendar not connected for %s (run 'leadflow calendar connect')\n", app.Config.User)
	}
	return nil
}

// CalendarDisconnectCommand deletes the stored credential.
func CalendarDisconnectCommand(ctx context.Context, app *App, _ []string) error {
	if err := app.connections().Disconnect(ctx, app.Config.User); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(app.Out, "✓ Google Calendar disconnected")
	return nil
}

// CalendarUpcomingCommand lists upcoming events, or opens the agenda TUI.
func CalendarUpcomingCommand(ctx context.Context, app *App, args []string) error {
	fs := flag.NewFlagSet("upcoming", flag.ContinueOnError)
	days := fs.Int("days", sync.DefaultWindowDays, "Days ahead to list")
	useTUI := fs.Bool("tui", false, "Open the interactive agenda")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := app.requireOAuth(); err != nil {
		return err
	}

	load := app.agendaLoader(*days)

	if *useTUI && term.IsTerminal(int(os.Stdout.Fd())) {
		return tui.Run(load, app.today())
	}

	agenda, err := load(ctx)
	if err != nil {
		return err
	}
	if agenda.CalendarErr != nil {
		return agenda.CalendarErr
	}

	if len(agenda.Events) == 0 {
		_, _ = fmt.Fprintf(app.Out, "No events in the next %d days.\n", *days)
		return nil
	}

	w := tabwriter.NewWriter(app.Out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "START\tEVENT\tLEAD")
	_, _ = fmt.Fprintln(w, "-----\t-----\t----")
	for _, e := range agenda.Events {
		lead := e.LeadName
		if lead == "" && e.LeadID != "" {
			lead = "(unknown lead)"
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", e.Start, e.Summary, lead)
	}
	return w.Flush()
}

// agendaLoader reads events and follow-ups. A calendar failure is carried in
// the agenda so local follow-ups still show.
func (a *App) agendaLoader(days int) tui.Loader {
	client := a.calendarClient()
	return func(ctx context.Context) (tui.Agenda, error) {
		followUps, err := a.Store.ListFollowUps(ctx, a.Config.User, followUpLimit)
		if err != nil {
			return tui.Agenda{}, err
		}

		agenda := tui.Agenda{FollowUps: followUps}
		events, err := client.ListUpcoming(ctx, a.Config.User, days)
		if err != nil {
			agenda.CalendarErr = err
			return agenda, nil
		}
		agenda.Events = tui.ResolveEvents(ctx, events, a.Store)
		return agenda, nil
	}
}

// openBrowser attempts to open URL in default browser
func openBrowser(url string) error {
	var cmd string
	var args []string

	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
		args = []string{url}
	case "windows":
		cmd = "cmd"
		args = []string{"/c", "start", url}
	default:
		cmd = "xdg-open"
		args = []string{url}
	}

	command := exec.Command(cmd, args...)
	return command.Start()
}
