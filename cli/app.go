// ABOUTME: Shared wiring for CLI commands
// ABOUTME: Opens the configured store and builds the calendar services commands act through
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/oauth2"

	"github.com/harperreed/leadflow/config"
	"github.com/harperreed/leadflow/db"
	"github.com/harperreed/leadflow/sync"
)

// App holds what every command needs.
type App struct {
	Config *config.Config
	Store  *db.Store

	// OAuth is nil when Google client credentials are not configured.
	OAuth *oauth2.Config

	Out io.Writer

	// ServiceOptions are passed to the calendar client.
	ServiceOptions []sync.ClientOption

	now func() time.Time
}

// NewApp wraps an opened store.
func NewApp(cfg *config.Config, store *db.Store, oauthCfg *oauth2.Config) *App {
	return &App{
		Config: cfg,
		Store:  store,
		OAuth:  oauthCfg,
		Out:    os.Stdout,
		now:    time.Now,
	}
}

// Open connects to Postgres when a database URL is configured and to the
// local SQLite file otherwise.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	var (
		database *sql.DB
		opts     []db.StoreOption
		err      error
	)

	if cfg.DatabaseURL != "" {
		database, err = db.OpenPostgres(ctx, cfg.DatabaseURL)
		opts = append(opts, db.WithDialect(db.DialectPostgres))
	} else {
		database, err = db.OpenDatabase(cfg.DBPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if cfg.TokenKey != "" {
		sealer, err := db.NewTokenSealer(cfg.TokenKey)
		if err != nil {
			_ = database.Close()
			return nil, err
		}
		opts = append(opts, db.WithTokenSealer(sealer))
	}

	var oauthCfg *oauth2.Config
	if cfg.GoogleConfigured() {
		oauthCfg, err = sync.NewOAuthConfig(cfg)
		if err != nil {
			_ = database.Close()
			return nil, err
		}
	}

	return NewApp(cfg, db.NewStore(database, opts...), oauthCfg), nil
}

// Close releases the database.
func (a *App) Close() error {
	return a.Store.Close()
}

func (a *App) requireOAuth() error {
	if a.OAuth == nil {
		_, err := sync.NewOAuthConfig(a.Config)
		return err
	}
	return nil
}

func (a *App) today() string {
	return a.now().Format("2006-01-02")
}

func (a *App) connections() *sync.Connections {
	return sync.NewConnections(a.Store, a.OAuth)
}

func (a *App) calendarClient() *sync.CalendarClient {
	refresher := sync.NewTokenRefresher(a.Store, a.OAuth)
	return sync.NewCalendarClient(refresher, a.ServiceOptions...)
}

func (a *App) followUps() *sync.FollowUps {
	return sync.NewFollowUps(a.Store, a.calendarClient())
}
