// ABOUTME: Embedded goose migrations for the Postgres store
// ABOUTME: Applied by db.OpenPostgres on startup
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
