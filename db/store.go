// ABOUTME: Store wraps a SQLite or Postgres handle behind one query path
// ABOUTME: Rebinds ? placeholders for Postgres and carries the optional token sealer
package db

import (
	"database/sql"
	"strconv"
	"strings"

	"github.com/harperreed/leadflow/models"
)

var (
	ErrLeadNotFound = models.ErrLeadNotFound
	ErrNoteNotFound = models.ErrNoteNotFound
)

// Dialect selects placeholder syntax.
type Dialect int

const (
	DialectSQLite Dialect = iota
	DialectPostgres
)

// Store provides credential, lead, and note persistence.
type Store struct {
	db      *sql.DB
	dialect Dialect
	sealer  *TokenSealer
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithDialect sets the SQL dialect (SQLite by default).
func WithDialect(d Dialect) StoreOption {
	return func(s *Store) { s.dialect = d }
}

// WithTokenSealer encrypts access and refresh tokens at rest.
func WithTokenSealer(sealer *TokenSealer) StoreOption {
	return func(s *Store) { s.sealer = sealer }
}

// NewStore creates a store over an opened database.
func NewStore(database *sql.DB, opts ...StoreOption) *Store {
	s := &Store{db: database}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DB returns the underlying handle.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the underlying handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders to $n for Postgres.
func (s *Store) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
