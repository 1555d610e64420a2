package database

import (
	"context"
	"io/fs"
	"strings"
	"testing"

	"ecotrace/internal/config"

	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestEmbeddedMigrations(t *testing.T) {
	files, err := fs.Glob(migrationFiles, "migrations/*.sql")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	up, err := fs.ReadFile(migrationFiles, "migrations/000001_init_schema.up.sql")
	require.NoError(t, err)
	schema := string(up)
	for _, table := range []string{"users", "activities", "emissions", "badges"} {
		assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS "+table)
	}
	assert.Contains(t, schema, "emissions_activity_id_key UNIQUE (activity_id)")

	source, err := iofs.New(migrationFiles, "migrations")
	require.NoError(t, err)
	version, err := source.First()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	require.NoError(t, source.Close())
}

func TestTruncateQuery(t *testing.T) {
	short := "SELECT 1"
	assert.Equal(t, short, truncateQuery(short))

	long := strings.Repeat("x", 250)
	got := truncateQuery(long)
	assert.Len(t, got, 203)
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestConnectRequiresURL(t *testing.T) {
	_, err := Connect(context.Background(), &config.DatabaseConfig{}, zap.NewNop(), nil)
	assert.Error(t, err)
}
