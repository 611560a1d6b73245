package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/watchdeck/watchdeck/internal/models"
)

// MemoryStore keeps snapshots in a process-local map. It round-trips values
// through JSON so it behaves identically to the Redis and Postgres stores.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) set(key string, value interface{}) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = b
	return nil
}

// get unmarshals the stored value into dest; it reports false when the key
// has never been written.
func (m *MemoryStore) get(key string, dest interface{}) (bool, error) {
	m.mu.Lock()
	b, ok := m.data[key]
	m.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

// SaveWatchlist stores the watchlist snapshot
func (m *MemoryStore) SaveWatchlist(_ context.Context, stocks []models.Stock) error {
	return m.set(keyWatchlist, stocks)
}

// LoadWatchlist retrieves the watchlist snapshot
func (m *MemoryStore) LoadWatchlist(_ context.Context) ([]models.Stock, error) {
	var stocks []models.Stock
	if _, err := m.get(keyWatchlist, &stocks); err != nil {
		return nil, err
	}
	return stocks, nil
}

// SaveSelected stores the selected stock; nil clears it
func (m *MemoryStore) SaveSelected(_ context.Context, stock *models.Stock) error {
	return m.set(keySelected, stock)
}

// LoadSelected retrieves the selected stock, nil when none
func (m *MemoryStore) LoadSelected(_ context.Context) (*models.Stock, error) {
	var stock *models.Stock
	if _, err := m.get(keySelected, &stock); err != nil {
		return nil, err
	}
	return stock, nil
}

// SaveRefreshHistory stores the manual refresh timestamp history
func (m *MemoryStore) SaveRefreshHistory(_ context.Context, history []time.Time) error {
	return m.set(keyRefreshHistory, history)
}

// LoadRefreshHistory retrieves the manual refresh timestamp history
func (m *MemoryStore) LoadRefreshHistory(_ context.Context) ([]time.Time, error) {
	var history []time.Time
	if _, err := m.get(keyRefreshHistory, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// SaveLastManualRefresh stores the most recent manual refresh timestamp
func (m *MemoryStore) SaveLastManualRefresh(_ context.Context, t time.Time) error {
	return m.set(keyLastManualRefresh, t)
}

// LoadLastManualRefresh retrieves the most recent manual refresh timestamp
func (m *MemoryStore) LoadLastManualRefresh(_ context.Context) (time.Time, error) {
	var t time.Time
	if _, err := m.get(keyLastManualRefresh, &t); err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// SaveCompanyNames stores the symbol-to-name resolution cache
func (m *MemoryStore) SaveCompanyNames(_ context.Context, names map[string]string) error {
	return m.set(keyCompanyNames, names)
}

// LoadCompanyNames retrieves the symbol-to-name resolution cache
func (m *MemoryStore) LoadCompanyNames(_ context.Context) (map[string]string, error) {
	names := make(map[string]string)
	if _, err := m.get(keyCompanyNames, &names); err != nil {
		return nil, err
	}
	return names, nil
}
