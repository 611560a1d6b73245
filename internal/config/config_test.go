package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 10*time.Second, cfg.Finnhub.Timeout)
	assert.Equal(t, "memory", cfg.Store.Backend)
	assert.Equal(t, "localhost:6379", cfg.Store.RedisAddr)
	assert.Equal(t, "watchlist-events", cfg.Kafka.Topic)
	assert.Equal(t, "watchlist-refresh", cfg.Kafka.RefreshTopic)
	assert.Equal(t, "watchdeck", cfg.Kafka.GroupID)
	assert.Equal(t, 25, cfg.Watchlist.Capacity)
	assert.Equal(t, 60*time.Second, cfg.Watchlist.RefreshInterval)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.Kafka.Enabled())
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("FINNHUB_API_KEY", "secret")
	t.Setenv("FINNHUB_TIMEOUT", "3s")
	t.Setenv("STORE_BACKEND", "redis")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092")
	t.Setenv("WATCHLIST_CAPACITY", "10")
	t.Setenv("REFRESH_INTERVAL", "30s")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "secret", cfg.Finnhub.APIKey)
	assert.Equal(t, 3*time.Second, cfg.Finnhub.Timeout)
	assert.Equal(t, "redis", cfg.Store.Backend)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.Kafka.Brokers)
	assert.True(t, cfg.Kafka.Enabled())
	assert.Equal(t, 10, cfg.Watchlist.Capacity)
	assert.Equal(t, 30*time.Second, cfg.Watchlist.RefreshInterval)
}

func TestLoadIgnoresInvalidValues(t *testing.T) {
	t.Setenv("WATCHLIST_CAPACITY", "lots")
	t.Setenv("REFRESH_INTERVAL", "soon")

	cfg := Load()

	assert.Equal(t, 25, cfg.Watchlist.Capacity)
	assert.Equal(t, 60*time.Second, cfg.Watchlist.RefreshInterval)
}
