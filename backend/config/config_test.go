package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("STORAGE_BACKEND", "database")
	t.Setenv("TOKEN_TTL_HOURS", "72")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("SERVER_PORT", "8080")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "database", cfg.StorageBackend)
	assert.Equal(t, 72*time.Hour, cfg.TokenTTL)
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLoadConfigRejectsUnknownBackend(t *testing.T) {
	t.Setenv("TOKEN_TTL_HOURS", "1")
	t.Setenv("STORAGE_BACKEND", "carrier-pigeon")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigRejectsBadTTL(t *testing.T) {
	t.Setenv("TOKEN_TTL_HOURS", "soon")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLocationFallsBackToUTC(t *testing.T) {
	cfg := &Config{Timezone: "Mars/Olympus_Mons"}
	assert.Equal(t, time.UTC, cfg.Location())

	cfg.Timezone = "Europe/Berlin"
	assert.Equal(t, "Europe/Berlin", cfg.Location().String())
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBHost: "db", DBPort: "5433", DBUser: "u", DBPassword: "p", DBName: "n"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=n sslmode=disable", cfg.DSN())
}
