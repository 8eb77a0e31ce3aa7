package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"HTTP_ADDR", "KAFKA_BROKERS", "STORAGE_DRIVER", "TAX_RATE", "LOGIN_WINDOW", "LOGIN_MAX_ATTEMPTS"} {
		t.Setenv(k, "")
	}

	cfg, warnings := Load()

	assert.Empty(t, warnings)
	assert.Equal(t, ":8081", cfg.HTTPAddr)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.Equal(t, "memory", cfg.StorageDriver)
	assert.Equal(t, 0.08, cfg.TaxRate)
	assert.Equal(t, 15*time.Minute, cfg.LoginWindow)
	assert.Equal(t, 5, cfg.LoginMaxAttempts)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("STORAGE_DRIVER", "Redis")
	t.Setenv("LOGIN_WINDOW", "1m")
	t.Setenv("PASSWORD_HASHING", "bcrypt")

	cfg, warnings := Load()

	assert.Empty(t, warnings)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "redis", cfg.StorageDriver)
	assert.Equal(t, time.Minute, cfg.LoginWindow)
	assert.Equal(t, "bcrypt", cfg.PasswordHashing)
}

func TestLoadMalformedFallsBack(t *testing.T) {
	t.Setenv("TAX_RATE", "lots")
	t.Setenv("LOGIN_MAX_ATTEMPTS", "-2")
	t.Setenv("STORAGE_DRIVER", "sqlite")

	cfg, warnings := Load()

	require.Len(t, warnings, 3)
	assert.Equal(t, 0.08, cfg.TaxRate)
	assert.Equal(t, 5, cfg.LoginMaxAttempts)
	assert.Equal(t, "memory", cfg.StorageDriver)
}
