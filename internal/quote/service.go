package quote

import (
	"context"
	"time"

	"github.com/watchdeck/watchdeck/internal/finnhub"
	"github.com/watchdeck/watchdeck/internal/models"
)

// DefaultTimeout bounds a single quote fetch end to end
const DefaultTimeout = 10 * time.Second

// Client fetches raw quotes from the upstream API
type Client interface {
	GetQuote(ctx context.Context, symbol string) (*finnhub.Quote, error)
}

// NameResolver resolves a ticker symbol to a display name
type NameResolver interface {
	Resolve(ctx context.Context, symbol string) string
}

// Service produces normalized, cached Stock records from raw upstream quotes
type Service struct {
	client Client
	names  NameResolver
	cache  *Cache
	now    func() time.Time
}

// NewService wires a quote service from its collaborators
func NewService(client Client, names NameResolver, cache *Cache) *Service {
	if cache == nil {
		cache = NewCache(DefaultCacheTTL)
	}
	return &Service{
		client: client,
		names:  names,
		cache:  cache,
		now:    time.Now,
	}
}

// GetQuote returns a fully populated Stock for the symbol, serving from the
// cache when fresh. Errors are always *models.QuoteError.
func (s *Service) GetQuote(ctx context.Context, symbol string) (models.Stock, error) {
	symbol = models.NormalizeSymbol(symbol)

	if stock, ok := s.cache.Get(symbol); ok {
		return stock, nil
	}

	q, err := s.client.GetQuote(ctx, symbol)
	if err != nil {
		return models.Stock{}, models.ClassifyError(err)
	}

	var change, changePct float64
	if q.Change != nil {
		change = *q.Change
	}
	if q.ChangePercent != nil {
		changePct = *q.ChangePercent
	}

	stock := models.Stock{
		Symbol:        symbol,
		CompanyName:   s.names.Resolve(ctx, symbol),
		CurrentPrice:  q.Current,
		Change:        change,
		ChangePercent: changePct,
		DayHigh:       q.High,
		DayLow:        q.Low,
		DayOpen:       q.Open,
		PreviousClose: q.PreviousClose,
		LastUpdated:   s.now(),
		Status:        models.StatusLoaded,
		PriceHistory:  []models.PricePoint{},
	}

	s.cache.Put(stock)
	return stock, nil
}

// GetQuoteWithTimeout races GetQuote against a deadline and fails with a
// TIMEOUT error when exceeded.
func (s *Service) GetQuoteWithTimeout(ctx context.Context, symbol string, timeout time.Duration) (models.Stock, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stock, err := s.GetQuote(ctx, symbol)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return models.Stock{}, models.NewQuoteError(models.ErrTimeout, "quote for %s timed out after %s", symbol, timeout)
		}
		return models.Stock{}, err
	}
	return stock, nil
}
