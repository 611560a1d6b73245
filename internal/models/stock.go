package models

import (
	"strings"
	"time"
)

// EntryStatus is the lifecycle state of a watchlist entry. An entry is in
// exactly one state at any time.
type EntryStatus string

const (
	StatusLoading EntryStatus = "loading"
	StatusLoaded  EntryStatus = "loaded"
	StatusFailed  EntryStatus = "failed"
)

// LoadingName is the placeholder company name shown while a quote fetch is
// in flight.
const LoadingName = "Loading..."

// Stock represents one watchlist entry
type Stock struct {
	Symbol        string       `json:"symbol"`
	CompanyName   string       `json:"company_name"`
	CurrentPrice  float64      `json:"current_price"`
	Change        float64      `json:"change"`
	ChangePercent float64      `json:"change_percent"`
	DayHigh       float64      `json:"day_high"`
	DayLow        float64      `json:"day_low"`
	DayOpen       float64      `json:"day_open"`
	PreviousClose float64      `json:"previous_close"`
	LastUpdated   time.Time    `json:"last_updated"`
	Status        EntryStatus  `json:"status"`
	Error         *QuoteError  `json:"error,omitempty"`
	PriceHistory  []PricePoint `json:"price_history"`
}

// NewPlaceholder returns the optimistic entry inserted when a symbol is
// added, before its first quote resolves.
func NewPlaceholder(symbol string, now time.Time) Stock {
	return Stock{
		Symbol:      NormalizeSymbol(symbol),
		CompanyName: LoadingName,
		LastUpdated: now,
		Status:      StatusLoading,
	}
}

// NormalizeSymbol uppercases and trims a ticker symbol
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// IsLoading reports whether a fetch is in flight for this entry
func (s *Stock) IsLoading() bool {
	return s.Status == StatusLoading
}

// IsFailed reports whether the entry's last fetch ended in an error
func (s *Stock) IsFailed() bool {
	return s.Status == StatusFailed
}

// PricePoint is one intraday price sample feeding the charts
type PricePoint struct {
	Timestamp     time.Time `json:"timestamp"`
	Price         float64   `json:"price"`
	Change        float64   `json:"change"`
	ChangePercent float64   `json:"change_percent"`
}

// SearchResult is one symbol lookup hit. Transient; never persisted.
type SearchResult struct {
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// StockEvent represents a Kafka event for watchlist changes
type StockEvent struct {
	EventType string    `json:"event_type"`
	Stock     *Stock    `json:"stock,omitempty"`
	Symbol    string    `json:"symbol"`
	Timestamp time.Time `json:"timestamp"`
}

// Event types published to the stock events topic.
const (
	EventStockAdded       = "STOCK_ADDED"
	EventStockRemoved     = "STOCK_REMOVED"
	EventQuoteUpdated     = "QUOTE_UPDATED"
	EventRefreshCompleted = "REFRESH_COMPLETED"
	// EventRefreshRequested is consumed, not produced: an external scheduler
	// may request a refresh pass over the event bus.
	EventRefreshRequested = "REFRESH_REQUESTED"
)
