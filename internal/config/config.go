package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Finnhub   FinnhubConfig
	Store     StoreConfig
	Kafka     KafkaConfig
	Watchlist WatchlistConfig
	LogLevel  string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port string
	Host string
}

// FinnhubConfig holds the quote API credential and endpoint
type FinnhubConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// StoreConfig selects and configures the snapshot store backend
type StoreConfig struct {
	// Backend is one of "memory", "redis", "postgres".
	Backend       string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	PostgresURL   string
}

// KafkaConfig holds event bus configuration. Disabled when no brokers are
// configured.
type KafkaConfig struct {
	Brokers      []string
	Topic        string
	RefreshTopic string
	GroupID      string
}

// Enabled reports whether event publishing is configured
func (k *KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0 && k.Brokers[0] != ""
}

// WatchlistConfig holds the core's tunable scheduling knobs
type WatchlistConfig struct {
	Capacity        int
	RefreshInterval time.Duration
}

// Load reads configuration from environment variables
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
		},
		Finnhub: FinnhubConfig{
			APIKey:  getEnv("FINNHUB_API_KEY", ""),
			BaseURL: getEnv("FINNHUB_BASE_URL", ""),
			Timeout: getDuration("FINNHUB_TIMEOUT", 10*time.Second),
		},
		Store: StoreConfig{
			Backend:       getEnv("STORE_BACKEND", "memory"),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getInt("REDIS_DB", 0),
			PostgresURL:   getEnv("POSTGRES_URL", ""),
		},
		Kafka: KafkaConfig{
			Brokers:      splitList(getEnv("KAFKA_BROKERS", "")),
			Topic:        getEnv("KAFKA_TOPIC", "watchlist-events"),
			RefreshTopic: getEnv("KAFKA_REFRESH_TOPIC", "watchlist-refresh"),
			GroupID:      getEnv("KAFKA_GROUP_ID", "watchdeck"),
		},
		Watchlist: WatchlistConfig{
			Capacity:        getInt("WATCHLIST_CAPACITY", 25),
			RefreshInterval: getDuration("REFRESH_INTERVAL", 60*time.Second),
		},
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
