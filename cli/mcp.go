// ABOUTME: MCP server subcommand
// ABOUTME: Serves the calendar tools, lead resources, and follow-up prompts over stdio
package cli

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/leadflow/config"
	"github.com/harperreed/leadflow/handlers"
)

// NewMCPServer registers every tool, resource, and prompt for the configured user.
func NewMCPServer(app *App, version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    config.AppName,
		Version: version,
	}, nil)

	handlers.NewCalendarHandlers(app.Config.User, app.Store, app.connections(), app.calendarClient()).Register(server)
	handlers.NewResourceHandlers(app.Config.User, app.Store).Register(server)
	handlers.NewPromptHandlers(app.Config.User, app.Store).Register(server)

	return server
}

// MCPCommand starts the MCP server on stdio
func MCPCommand(ctx context.Context, app *App, version string) error {
	if err := app.requireOAuth(); err != nil {
		return err
	}

	config.Logger().Info("starting MCP server", "user", app.Config.User)
	return NewMCPServer(app, version).Run(ctx, &mcp.StdioTransport{})
}
