package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"github.com/watchdeck/watchdeck/internal/models"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// PostgresStore persists snapshots in a single key/value table with JSONB
// values. Migrations are embedded and applied by RunMigrations.
type PostgresStore struct {
	conn *sql.DB
}

// NewPostgresStore connects to PostgreSQL and verifies the connection
func NewPostgresStore(connStr string) (*PostgresStore, error) {
	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return &PostgresStore{conn: conn}, nil
}

// RunMigrations applies all embedded database migrations
func (p *PostgresStore) RunMigrations() error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load embedded migrations: %w", err)
	}

	driver, err := postgres.WithInstance(p.conn, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

// Close closes the database connection
func (p *PostgresStore) Close() error {
	return p.conn.Close()
}

func (p *PostgresStore) set(ctx context.Context, key string, value interface{}) error {
	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	query := `
		INSERT INTO snapshots (key, value, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := p.conn.ExecContext(ctx, query, key, b, time.Now()); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (p *PostgresStore) get(ctx context.Context, key string, dest interface{}) (bool, error) {
	var b []byte
	err := p.conn.QueryRowContext(ctx, `SELECT value FROM snapshots WHERE key = $1`, key).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
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
func (p *PostgresStore) SaveWatchlist(ctx context.Context, stocks []models.Stock) error {
	return p.set(ctx, keyWatchlist, stocks)
}

// LoadWatchlist retrieves the watchlist snapshot
func (p *PostgresStore) LoadWatchlist(ctx context.Context) ([]models.Stock, error) {
	var stocks []models.Stock
	if _, err := p.get(ctx, keyWatchlist, &stocks); err != nil {
		return nil, err
	}
	return stocks, nil
}

// SaveSelected stores the selected stock; nil clears it
func (p *PostgresStore) SaveSelected(ctx context.Context, stock *models.Stock) error {
	return p.set(ctx, keySelected, stock)
}

// LoadSelected retrieves the selected stock, nil when none
func (p *PostgresStore) LoadSelected(ctx context.Context) (*models.Stock, error) {
	var stock *models.Stock
	if _, err := p.get(ctx, keySelected, &stock); err != nil {
		return nil, err
	}
	return stock, nil
}

// SaveRefreshHistory stores the manual refresh timestamp history
func (p *PostgresStore) SaveRefreshHistory(ctx context.Context, history []time.Time) error {
	return p.set(ctx, keyRefreshHistory, history)
}

// LoadRefreshHistory retrieves the manual refresh timestamp history
func (p *PostgresStore) LoadRefreshHistory(ctx context.Context) ([]time.Time, error) {
	var history []time.Time
	if _, err := p.get(ctx, keyRefreshHistory, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// SaveLastManualRefresh stores the most recent manual refresh timestamp
func (p *PostgresStore) SaveLastManualRefresh(ctx context.Context, t time.Time) error {
	return p.set(ctx, keyLastManualRefresh, t)
}

// LoadLastManualRefresh retrieves the most recent manual refresh timestamp
func (p *PostgresStore) LoadLastManualRefresh(ctx context.Context) (time.Time, error) {
	var t time.Time
	if _, err := p.get(ctx, keyLastManualRefresh, &t); err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// SaveCompanyNames stores the symbol-to-name resolution cache
func (p *PostgresStore) SaveCompanyNames(ctx context.Context, names map[string]string) error {
	return p.set(ctx, keyCompanyNames, names)
}

// LoadCompanyNames retrieves the symbol-to-name resolution cache
func (p *PostgresStore) LoadCompanyNames(ctx context.Context) (map[string]string, error) {
	names := make(map[string]string)
	if _, err := p.get(ctx, keyCompanyNames, &names); err != nil {
		return nil, err
	}
	return names, nil
}
