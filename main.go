// ABOUTME: Entry point for the leadflow CLI, web API, and MCP server
// ABOUTME: Routes to server or CLI commands based on arguments
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/harperreed/leadflow/cli"
	"github.com/harperreed/leadflow/config"
)

const version = "0.2.0"

type command func(ctx context.Context, app *cli.App, args []string) error

func main() {
	// Global flags
	showVersion := flag.Bool("version", false, "Show version and exit")
	dbPath := flag.String("db-path", "", "Database path (default: ~/.local/share/leadflow/leadflow.db)")
	initOnly := flag.Bool("init", false, "Initialize database and exit")

	// Parse global flags but don't fail on unknown (for subcommands)
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("leadflow version %s\n", version)
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 && !*initOnly {
		printUsage()
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	logger := config.SetupLogger(os.Stderr, cfg.LogLevel)

	ctx := context.Background()
	app, err := cli.Open(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to open store", "err", err)
	}
	defer func() { _ = app.Close() }()

	if *initOnly {
		logger.Info("database initialized", "path", cfg.DBPath)
		return
	}

	if err := run(ctx, app, args); err != nil {
		_ = app.Close()
		logger.Fatal(err)
	}
}

func run(ctx context.Context, app *cli.App, args []string) error {
	name, rest := args[0], args[1:]

	switch name {
	case "serve":
		return cli.ServeCommand(app, rest)
	case "mcp":
		return cli.MCPCommand(ctx, app, version)
	case "session-token":
		return cli.SessionTokenCommand(app, rest)
	case "config":
		return dispatch(ctx, app, name, rest, map[string]command{
			"init": cli.ConfigInitCommand,
		})
	case "calendar":
		return dispatch(ctx, app, name, rest, map[string]command{
			"connect":    cli.CalendarConnectCommand,
			"status":     cli.CalendarStatusCommand,
			"disconnect": cli.CalendarDisconnectCommand,
			"upcoming":   cli.CalendarUpcomingCommand,
		})
	case "followups":
		return dispatch(ctx, app, name, rest, map[string]command{
			"list": cli.FollowupListCommand,
		})
	case "note":
		return dispatch(ctx, app, name, rest, map[string]command{
			"add": cli.NoteAddCommand,
		})
	case "lead":
		return dispatch(ctx, app, name, rest, map[string]command{
			"add":  cli.LeadAddCommand,
			"list": cli.LeadListCommand,
		})
	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", name)
	}
}

func dispatch(ctx context.Context, app *cli.App, group string, args []string, commands map[string]command) error {
	if len(args) == 0 {
		printUsage()
		return fmt.Errorf("%s requires a subcommand", group)
	}

	cmd, ok := commands[args[0]]
	if !ok {
		printUsage()
		return fmt.Errorf("unknown %s command: %s", group, args[0])
	}
	return cmd(ctx, app, args[1:])
}

func printUsage() {
	fmt.Printf(`leadflow v%s - Lead follow-ups mirrored to Google Calendar

USAGE:
  leadflow [global flags] <command> [subcommand] [flags]

GLOBAL FLAGS:
  --version              Show version and exit
  --db-path <path>       Database path (default: ~/.local/share/leadflow/leadflow.db)
  --init                 Initialize database and exit

COMMANDS:
  serve                  Run the HTTP API
    --addr <addr>            Listen address (default: :8080)
    --secure-cookies         Mark cookies Secure (behind HTTPS)

  mcp                    Start MCP server for Claude Desktop

  session-token          Print a session token for API clients
    --user <id>              User id (default: configured user)
    --ttl <duration>         Lifetime (default: 720h)

  config init            Write the config file with generated secrets
    --path <file>            Config file (default: ~/.config/leadflow/config.json)
    --google-client-id <id>  Google OAuth client ID
    --google-client-secret <secret>
    --google-redirect-url <url>
    --user <id>              User CLI commands act for
    --force                  Overwrite an existing file

  calendar connect       Connect Google Calendar through the browser
    --no-browser             Only print the consent URL
    --timeout <duration>     How long to wait (default: 5m)
  calendar status        Show whether Google Calendar is connected
  calendar disconnect    Remove the stored Google credential
  calendar upcoming      List upcoming events
    --days <n>               Days ahead (default: 30)
    --tui                    Open the interactive agenda

  followups list         List notes with follow-up dates
    --overdue-only           Only overdue follow-ups
    --limit <n>              Max results (default: 20)

  note add               Add a note to a lead
    --lead <id>              Lead ID (required)
    --content <text>         Note text (required)
    --date <YYYY-MM-DD>      Follow-up date, mirrored to the calendar

  lead add               Add a lead
    --name <name>            Lead name (required)
    --email <email>          Email address
    --company <company>      Company name
  lead list              List leads
    --limit <n>              Max results (default: 50)

CONFIGURATION:
  ~/.config/leadflow/config.json, .env, or environment:
  GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET, GOOGLE_REDIRECT_URL,
  LEADFLOW_DATABASE_URL, LEADFLOW_DB_PATH, LEADFLOW_LISTEN_ADDR,
  LEADFLOW_SESSION_SECRET, LEADFLOW_TOKEN_KEY, LEADFLOW_USER, LEADFLOW_LOG_LEVEL

EXAMPLES:
  # Write a config, connect your calendar, then add a follow-up
  leadflow config init --google-client-id <id> --google-client-secret <secret>
  leadflow calendar connect
  leadflow lead add --name "Jane Smith" --company "Acme Corp"
  leadflow note add --lead <id> --content "Send pricing" --date 2024-03-20

  # Browse the agenda
  leadflow calendar upcoming --tui

`, version)
}
