// ABOUTME: Tests for Store placeholder rebinding
// ABOUTME: Ensures Postgres queries get numbered parameters
package db

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRebind(t *testing.T) {
	sqlite := NewStore(nil)
	pg := NewStore(nil, WithDialect(DialectPostgres))

	query := "UPDATE notes SET a = ?, b = ? WHERE id = ?"
	assert.Equal(t, query, sqlite.rebind(query))
	assert.Equal(t, "UPDATE notes SET a = $1, b = $2 WHERE id = $3", pg.rebind(query))
}
