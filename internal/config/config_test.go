package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("DB_LOCK_TIMEOUT", "")

	cfg := Load()
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, StoreDriverPostgres, cfg.StoreDriver)
	assert.Equal(t, 5*time.Second, cfg.DBLockTimeout)
	assert.True(t, cfg.ReminderDispatch)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("DB_MAX_CONNS", "25")
	t.Setenv("REMINDER_POLL_INTERVAL", "2s")
	t.Setenv("REMINDER_DISPATCH", "false")
	t.Setenv("APP_ENV", "dev")

	cfg := Load()
	assert.Equal(t, StoreDriverMemory, cfg.StoreDriver)
	assert.Equal(t, int32(25), cfg.DBMaxConns)
	assert.Equal(t, 2*time.Second, cfg.ReminderPollInterval)
	assert.False(t, cfg.ReminderDispatch)
	assert.True(t, cfg.IsDevelopment())
}

func TestMalformedValuesFallBack(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "lots")
	t.Setenv("JWT_TTL", "forever")
	t.Setenv("AUTO_MIGRATE", "maybe")

	cfg := Load()
	assert.Equal(t, int32(10), cfg.DBMaxConns)
	assert.Equal(t, 12*time.Hour, cfg.JWT.TTL)
	assert.True(t, cfg.AutoMigrate)
}
