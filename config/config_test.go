package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "development", cfg.App.Environment)
	assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
	assert.False(t, cfg.Aggregates.DecrementOnDelete)
	assert.Equal(t, 6, cfg.RateLimit.GenerationPerMinute)
	assert.Equal(t, "0 0 3 * * *", cfg.Reconcile.Schedule)
}

func TestValidate(t *testing.T) {
	t.Run("firestore requires credentials", func(t *testing.T) {
		cfg := &Config{
			Server: ServerConfig{Port: "8080"},
			Store:  StoreConfig{Backend: "firestore"},
		}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "FIREBASE_CREDENTIALS_PATH")
	})

	t.Run("postgres requires a dsn", func(t *testing.T) {
		cfg := &Config{
			Server: ServerConfig{Port: "8080"},
			Store:  StoreConfig{Backend: "postgres"},
		}
		assert.Error(t, cfg.Validate())
	})

	t.Run("rejects an unknown backend", func(t *testing.T) {
		cfg := &Config{
			Server: ServerConfig{Port: "8080"},
			Store:  StoreConfig{Backend: "cassandra"},
		}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cassandra")
	})

	t.Run("accepts a complete redis config", func(t *testing.T) {
		cfg := &Config{
			Server: ServerConfig{Port: "8080"},
			Store:  StoreConfig{Backend: "redis"},
			Redis:  RedisConfig{Addr: "localhost:6379"},
		}
		assert.NoError(t, cfg.Validate())
	})
}

func TestAggregatesFlag(t *testing.T) {
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("AGGREGATES_DECREMENT_ON_DELETE", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Aggregates.DecrementOnDelete)
}
