// Package finnhub provides a client for the Finnhub stock quote and symbol
// search endpoints.
package finnhub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/watchdeck/watchdeck/internal/models"
)

// DefaultBaseURL is the production Finnhub API endpoint
const DefaultBaseURL = "https://finnhub.io/api/v1"

// Quote is the raw quote payload. Change and ChangePercent are pointers
// because Finnhub returns null for unknown symbols.
type Quote struct {
	Current       float64  `json:"c"`
	Change        *float64 `json:"d"`
	ChangePercent *float64 `json:"dp"`
	High          float64  `json:"h"`
	Low           float64  `json:"l"`
	Open          float64  `json:"o"`
	PreviousClose float64  `json:"pc"`
	Timestamp     int64    `json:"t"`
}

type searchResponse struct {
	Count  int                   `json:"count"`
	Result []models.SearchResult `json:"result"`
}

// Client calls the Finnhub REST API
type Client struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// NewClient creates a Finnhub client. An empty baseURL falls back to the
// production endpoint.
func NewClient(apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// GetQuote fetches the current quote for a symbol. Failures are returned as
// *models.QuoteError so callers can branch on the error kind.
func (c *Client) GetQuote(ctx context.Context, symbol string) (*Quote, error) {
	if c.apiKey == "" {
		return nil, models.NewQuoteError(models.ErrAPIKey, "no API key configured")
	}

	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("token", c.apiKey)

	var quote Quote
	if err := c.getJSON(ctx, "/quote", q, &quote); err != nil {
		return nil, err
	}

	// Finnhub answers 200 for unknown symbols; the tell is a zero price or
	// null change fields. A valid quote has all three.
	if quote.Current == 0 || quote.Change == nil || quote.ChangePercent == nil {
		return nil, models.NewQuoteError(models.ErrInvalidSymbol, "no quote data for %s", symbol)
	}

	return &quote, nil
}

// Search looks up symbols matching a query on US exchanges. Results are not
// filtered here; the search service applies type and cap rules.
func (c *Client) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	if c.apiKey == "" {
		return nil, models.NewQuoteError(models.ErrAPIKey, "no API key configured")
	}

	q := url.Values{}
	q.Set("q", query)
	q.Set("exchange", "US")
	q.Set("token", c.apiKey)

	var body searchResponse
	if err := c.getJSON(ctx, "/search", q, &body); err != nil {
		return nil, err
	}
	return body.Result, nil
}

// getJSON performs a GET request and decodes the JSON response, mapping HTTP
// failures onto the quote error taxonomy.
func (c *Client) getJSON(ctx context.Context, path string, q url.Values, dest interface{}) error {
	u := fmt.Sprintf("%s%s?%s", c.baseURL, path, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return models.NewQuoteError(models.ErrNetwork, "build request: %v", err)
	}

	res, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return models.NewQuoteError(models.ErrTimeout, "request timed out")
		}
		return models.NewQuoteError(models.ErrNetwork, "%v", err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusUnauthorized || res.StatusCode == http.StatusForbidden:
		return models.NewQuoteError(models.ErrAPIKey, "http %d: invalid API key", res.StatusCode)
	case res.StatusCode == http.StatusTooManyRequests:
		return models.NewQuoteError(models.ErrRateLimit, "http 429: API rate limit exceeded")
	case res.StatusCode < 200 || res.StatusCode > 299:
		return models.NewQuoteError(models.ErrNetwork, "http %d", res.StatusCode)
	}

	if err := json.NewDecoder(res.Body).Decode(dest); err != nil {
		return models.NewQuoteError(models.ErrParsing, "decode response: %v", err)
	}
	return nil
}
