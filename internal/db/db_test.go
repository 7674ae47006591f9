package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"airdrop-go/internal/config"
)

func TestOpenAndEnsureSchema(t *testing.T) {
	ctx := context.Background()
	cfg := config.Config{
		DBDriver: config.DriverSQLite,
		DBPath:   filepath.Join(t.TempDir(), "nested", "store.db"),
	}

	conn, err := Open(ctx, cfg)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, EnsureSchema(ctx, conn))
	// applying twice must be harmless
	require.NoError(t, EnsureSchema(ctx, conn))

	var tables []string
	err = conn.SelectContext(ctx, &tables,
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name IN ('projects', 'requirements') ORDER BY name`)
	require.NoError(t, err)
	assert.Equal(t, []string{"projects", "requirements"}, tables)

	var fk int
	require.NoError(t, conn.GetContext(ctx, &fk, `PRAGMA foreign_keys`))
	assert.Equal(t, 1, fk)
}

func TestSchemaEmbeddedPerDriver(t *testing.T) {
	for _, driver := range []string{config.DriverSQLite, config.DriverPostgres} {
		content, err := schemas.ReadFile("schema/" + driver + ".sql")
		require.NoError(t, err, driver)
		assert.Contains(t, string(content), "CREATE TABLE IF NOT EXISTS requirements")
	}

	_, err := schemas.ReadFile("schema/mysql.sql")
	assert.Error(t, err)
}
