package postgres

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestDefaultTxOptions(t *testing.T) {
	opts := DefaultTxOptions()
	assert.Equal(t, pgx.ReadCommitted, opts.IsoLevel)
	assert.Equal(t, pgx.ReadWrite, opts.AccessMode)
}

func TestIsUniqueViolation(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505"}
	assert.True(t, IsUniqueViolation(unique))
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", unique)))

	fk := &pgconn.PgError{Code: "23503"}
	assert.False(t, IsUniqueViolation(fk))
	assert.False(t, IsUniqueViolation(errors.New("plain error")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestIsNoRows(t *testing.T) {
	assert.True(t, IsNoRows(pgx.ErrNoRows))
	assert.True(t, IsNoRows(fmt.Errorf("select: %w", pgx.ErrNoRows)))
	assert.False(t, IsNoRows(errors.New("plain error")))
	assert.False(t, IsNoRows(nil))
}

func TestGetMigrations(t *testing.T) {
	migrations := GetMigrations()
	assert.NotEmpty(t, migrations)

	for i, m := range migrations {
		assert.Equal(t, i+1, m.Version, "versions must be sequential")
		assert.NotEmpty(t, m.Name)
		assert.NotEmpty(t, m.UpSQL)
	}
}

func TestGetMigrations_SchemaInvariants(t *testing.T) {
	all := strings.Builder{}
	for _, m := range GetMigrations() {
		all.WriteString(m.UpSQL)
	}
	schema := all.String()

	// A completed course keeps blocking re-enrollment.
	assert.Contains(t, schema, "WHERE status IN ('pending', 'active', 'completed')")

	// Exercise availability window.
	assert.Contains(t, schema, "available_from")
	assert.Contains(t, schema, "available_until")

	// Fresh assignments start pending; the expiry sweep sees both open statuses.
	assert.Contains(t, schema, "status TEXT NOT NULL DEFAULT 'pending'")
	assert.Contains(t, schema, "WHERE status IN ('pending', 'in_progress')")

	// Claimed reward snapshot.
	assert.Contains(t, schema, "challenge_completions")
}
