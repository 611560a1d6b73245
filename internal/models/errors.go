package models

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies quote fetch failures. The string values are stable:
// they are persisted and shown to clients as "<KIND>:<detail>".
type ErrorKind string

const (
	// ErrAPIKey means the API credential is missing or rejected. Not retried
	// automatically.
	ErrAPIKey ErrorKind = "API_KEY_ERROR"
	// ErrRateLimit means the upstream quota was exceeded.
	ErrRateLimit ErrorKind = "RATE_LIMIT"
	// ErrNetwork covers transport failures and unexpected HTTP statuses.
	// Eligible for retry and auto-recovery.
	ErrNetwork ErrorKind = "NETWORK_ERROR"
	// ErrInvalidSymbol means the quote payload was semantically empty. The
	// entry is removed from the watchlist since retrying cannot help.
	ErrInvalidSymbol ErrorKind = "INVALID_SYMBOL"
	// ErrTimeout means the client-side deadline was exceeded.
	ErrTimeout ErrorKind = "TIMEOUT"
	// ErrParsing is the catch-all for unclassified fetch failures.
	ErrParsing ErrorKind = "PARSING_ERROR"
)

// QuoteError is a classified quote fetch failure
type QuoteError struct {
	Kind   ErrorKind
	Detail string
}

// NewQuoteError creates a QuoteError with a formatted detail message
func NewQuoteError(kind ErrorKind, format string, args ...interface{}) *QuoteError {
	return &QuoteError{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// Error implements the error interface, rendering as "<KIND>:<detail>"
func (e *QuoteError) Error() string {
	return string(e.Kind) + ":" + e.Detail
}

// Retryable reports whether the failure can plausibly succeed on retry
func (e *QuoteError) Retryable() bool {
	return e.Kind == ErrNetwork || e.Kind == ErrTimeout || e.Kind == ErrParsing
}

// MarshalJSON encodes the error in its wire form "<KIND>:<detail>"
func (e *QuoteError) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Error())
}

// UnmarshalJSON decodes the "<KIND>:<detail>" wire form
func (e *QuoteError) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	kind, detail, found := strings.Cut(s, ":")
	if !found {
		kind, detail = string(ErrParsing), s
	}
	e.Kind = ErrorKind(kind)
	e.Detail = detail
	return nil
}

// ClassifyError converts an arbitrary fetch error into a QuoteError. Errors
// already classified pass through; context deadlines map to TIMEOUT;
// everything else is wrapped as a parsing error.
func ClassifyError(err error) *QuoteError {
	if err == nil {
		return nil
	}
	var qe *QuoteError
	if errors.As(err, &qe) {
		return qe
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &QuoteError{Kind: ErrTimeout, Detail: "request timed out"}
	}
	return &QuoteError{Kind: ErrParsing, Detail: err.Error()}
}
