package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.test.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
database:
  host: db.internal
  dbname: inspect
jwt:
  secret: from-file
overdue:
  sweep_interval: 2m
  timezone: UTC
`)
	t.Setenv("DB_PASSWORD", "pw")
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, "pw", cfg.Database.Password)
	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 2*time.Minute, cfg.Overdue.SweepInterval)
	assert.Equal(t, "WO", cfg.WorkOrder.NumberPrefix)
	assert.Contains(t, cfg.Database.GetDSN(), "@tcp(db.internal:3306)/inspect?")
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.Overdue.SweepInterval)
	assert.Equal(t, "Asia/Shanghai", cfg.Overdue.Timezone)
}

func TestLoad_RequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	_, err := Load(writeConfig(t, "server:\n  port: 1\n"))
	assert.Error(t, err)
}

func TestLoad_BadTimezone(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	_, err := Load(writeConfig(t, "overdue:\n  timezone: Mars/Base\n"))
	assert.Error(t, err)
}

func TestIsDevelopment(t *testing.T) {
	cfg := Default()
	assert.True(t, cfg.IsDevelopment())
	cfg.Server.Env = "production"
	assert.False(t, cfg.IsDevelopment())
}

func TestDatabaseDriver(t *testing.T) {
	t.Setenv("JWT_SECRET", "s")
	t.Setenv("DB_DRIVER", "postgres")

	cfg, err := Load(writeConfig(t, "database:\n  host: pg\n  port: 5432\n  user: u\n  password: p\n  dbname: inspect\n"))
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://u:p@pg:5432/inspect?sslmode=disable&TimeZone=UTC", cfg.Database.GetPostgresDSN())
	assert.Equal(t, "0 0 * * *", cfg.Overdue.MidnightCron)

	t.Setenv("DB_DRIVER", "oracle")
	_, err = Load(writeConfig(t, "server:\n  port: 1\n"))
	assert.Error(t, err)
}
