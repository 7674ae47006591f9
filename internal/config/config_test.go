package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultsFromEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "projects.db", cfg.DBPath)
	assert.Equal(t, "data/projects.json", cfg.DataFile)
	assert.Equal(t, "gpt-4o", cfg.Model)
	assert.InDelta(t, 0.8, float64(cfg.Temperature), 0.0001)
	assert.Equal(t, 60*time.Second, cfg.RequestTimeout)
	assert.Equal(t, "sk-test", cfg.OpenAIKey)
	assert.Empty(t, cfg.ReloadCron)
	assert.NoError(t, cfg.RequireModel())
}

func TestLoadMissingFileFallsBackToEnv(t *testing.T) {
	t.Setenv("DB_PATH", "other.db")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "other.db", cfg.DBPath)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := "db_path: from-file.db\nprojects_json: seed.json\nhttp_port: \"8088\"\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-file.db", cfg.DBPath)
	assert.Equal(t, "seed.json", cfg.DataFile)
	assert.Equal(t, "8088", cfg.HTTPPort)
}

func TestValidate(t *testing.T) {
	base := Config{DBDriver: DriverSQLite, DBPath: "x.db", DataFile: "p.json"}
	require.NoError(t, base.Validate())

	unknown := base
	unknown.DBDriver = "mysql"
	assert.Error(t, unknown.Validate())

	pg := base
	pg.DBDriver = DriverPostgres
	assert.Error(t, pg.Validate())
	pg.DBHost, pg.DBUser, pg.DBName = "localhost", "postgres", "airdrops"
	assert.NoError(t, pg.Validate())

	noData := base
	noData.DataFile = ""
	assert.Error(t, noData.Validate())
}

func TestRequireModel(t *testing.T) {
	assert.Error(t, Config{}.RequireModel())
}

func TestDSN(t *testing.T) {
	cfg := Config{DBDriver: DriverSQLite, DBPath: "p.db"}
	assert.Equal(t, "file:p.db?_foreign_keys=on", cfg.DSN())

	cfg = Config{
		DBDriver: DriverPostgres, DBUser: "u", DBPassword: "p", DBHost: "h",
		DBPort: "5432", DBName: "d", DBSSLMode: "disable",
	}
	assert.Equal(t, "postgres://u:p@h:5432/d?sslmode=disable", cfg.DSN())
}
