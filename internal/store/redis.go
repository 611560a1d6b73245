package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/watchdeck/watchdeck/internal/models"
)

// RedisStore persists snapshots as JSON strings in Redis. Values have no
// TTL: the watchlist survives restarts until explicitly overwritten.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore creates a store backed by the given Redis client
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (r *RedisStore) set(ctx context.Context, key string, value interface{}) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := r.rdb.Set(ctx, key, b, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (r *RedisStore) get(ctx context.Context, key string, dest interface{}) (bool, error) {
	b, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

// SaveWatchlist stores the watchlist snapshot
func (r *RedisStore) SaveWatchlist(ctx context.Context, stocks []models.Stock) error {
	return r.set(ctx, keyWatchlist, stocks)
}

// LoadWatchlist retrieves the watchlist snapshot
func (r *RedisStore) LoadWatchlist(ctx context.Context) ([]models.Stock, error) {
	var stocks []models.Stock
	if _, err := r.get(ctx, keyWatchlist, &stocks); err != nil {
		return nil, err
	}
	return stocks, nil
}

// SaveSelected stores the selected stock; nil clears it
func (r *RedisStore) SaveSelected(ctx context.Context, stock *models.Stock) error {
	return r.set(ctx, keySelected, stock)
}

// LoadSelected retrieves the selected stock, nil when none
func (r *RedisStore) LoadSelected(ctx context.Context) (*models.Stock, error) {
	var stock *models.Stock
	if _, err := r.get(ctx, keySelected, &stock); err != nil {
		return nil, err
	}
	return stock, nil
}

// SaveRefreshHistory stores the manual refresh timestamp history
func (r *RedisStore) SaveRefreshHistory(ctx context.Context, history []time.Time) error {
	return r.set(ctx, keyRefreshHistory, history)
}

// LoadRefreshHistory retrieves the manual refresh timestamp history
func (r *RedisStore) LoadRefreshHistory(ctx context.Context) ([]time.Time, error) {
	var history []time.Time
	if _, err := r.get(ctx, keyRefreshHistory, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// SaveLastManualRefresh stores the most recent manual refresh timestamp
func (r *RedisStore) SaveLastManualRefresh(ctx context.Context, t time.Time) error {
	return r.set(ctx, keyLastManualRefresh, t)
}

// LoadLastManualRefresh retrieves the most recent manual refresh timestamp
func (r *RedisStore) LoadLastManualRefresh(ctx context.Context) (time.Time, error) {
	var t time.Time
	if _, err := r.get(ctx, keyLastManualRefresh, &t); err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// SaveCompanyNames stores the symbol-to-name resolution cache
func (r *RedisStore) SaveCompanyNames(ctx context.Context, names map[string]string) error {
	return r.set(ctx, keyCompanyNames, names)
}

// LoadCompanyNames retrieves the symbol-to-name resolution cache
func (r *RedisStore) LoadCompanyNames(ctx context.Context) (map[string]string, error) {
	names := make(map[string]string)
	if _, err := r.get(ctx, keyCompanyNames, &names); err != nil {
		return nil, err
	}
	return names, nil
}
