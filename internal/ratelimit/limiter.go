// Package ratelimit enforces layered cooldown rules on manual refresh-all
// actions, backed by a persisted rolling history of refresh timestamps.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Layered rule constants, evaluated in order.
const (
	// Cooldown is the minimum gap between two manual refreshes.
	Cooldown = 30 * time.Second
	// BurstWindow / BurstMax: at most BurstMax manual refreshes within any
	// trailing BurstWindow.
	BurstWindow = 2 * time.Minute
	BurstMax    = 3
	// HourlyWindow / HourlyMax: the long-horizon cap.
	HourlyWindow = time.Hour
	HourlyMax    = 20
	// HistoryLimit bounds the persisted rolling history.
	HistoryLimit = 10
)

// Rejection reasons.
const (
	ReasonBasicCooldown   = "basic_cooldown"
	ReasonBurstProtection = "burst_protection"
	ReasonHourlyLimit     = "hourly_limit"
)

// Result is the outcome of a rate limit check
type Result struct {
	Allowed  bool          `json:"allowed"`
	Reason   string        `json:"reason,omitempty"`
	WaitTime time.Duration `json:"wait_time,omitempty"`
}

// HistoryStore persists the manual refresh history across sessions
type HistoryStore interface {
	SaveRefreshHistory(ctx context.Context, history []time.Time) error
	LoadRefreshHistory(ctx context.Context) ([]time.Time, error)
	SaveLastManualRefresh(ctx context.Context, t time.Time) error
	LoadLastManualRefresh(ctx context.Context) (time.Time, error)
}

// Limiter evaluates manual refresh requests against the layered rules
type Limiter struct {
	store  HistoryStore
	logger *slog.Logger
	now    func() time.Time
}

// NewLimiter creates a limiter backed by the given store
func NewLimiter(store HistoryStore, logger *slog.Logger) *Limiter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Limiter{store: store, logger: logger, now: time.Now}
}

// Check evaluates the three rules in order and returns the first violation.
// A zero lastManualRefresh (never refreshed) passes the cooldown rule.
func (l *Limiter) Check(ctx context.Context) Result {
	now := l.now()

	last, err := l.store.LoadLastManualRefresh(ctx)
	if err != nil {
		l.logger.Warn("failed to load last manual refresh, allowing", "error", err)
		return Result{Allowed: true}
	}
	history, err := l.store.LoadRefreshHistory(ctx)
	if err != nil {
		l.logger.Warn("failed to load refresh history, allowing", "error", err)
		return Result{Allowed: true}
	}

	// Rule 1: basic cooldown since the previous manual refresh.
	if !last.IsZero() {
		if elapsed := now.Sub(last); elapsed < Cooldown {
			return Result{
				Allowed:  false,
				Reason:   ReasonBasicCooldown,
				WaitTime: Cooldown - elapsed,
			}
		}
	}

	// Rule 2: burst protection over the trailing window.
	if wait, violated := windowViolation(history, now, BurstWindow, BurstMax); violated {
		return Result{
			Allowed:  false,
			Reason:   ReasonBurstProtection,
			WaitTime: wait,
		}
	}

	// Rule 3: hourly cap.
	if wait, violated := windowViolation(history, now, HourlyWindow, HourlyMax); violated {
		return Result{
			Allowed:  false,
			Reason:   ReasonHourlyLimit,
			WaitTime: wait,
		}
	}

	return Result{Allowed: true}
}

// Record appends a manual refresh timestamp to the persisted history,
// truncating it to the HistoryLimit most recent entries.
func (l *Limiter) Record(ctx context.Context) error {
	now := l.now()

	history, err := l.store.LoadRefreshHistory(ctx)
	if err != nil {
		return fmt.Errorf("failed to load refresh history: %w", err)
	}
	history = append(history, now)
	if len(history) > HistoryLimit {
		history = history[len(history)-HistoryLimit:]
	}

	if err := l.store.SaveRefreshHistory(ctx, history); err != nil {
		return fmt.Errorf("failed to save refresh history: %w", err)
	}
	if err := l.store.SaveLastManualRefresh(ctx, now); err != nil {
		return fmt.Errorf("failed to save last manual refresh: %w", err)
	}
	return nil
}

// windowViolation counts history entries inside the trailing window ending
// at now. When the count reaches max, it returns how long until the oldest
// in-window entry ages out.
func windowViolation(history []time.Time, now time.Time, window time.Duration, max int) (time.Duration, bool) {
	cutoff := now.Add(-window)
	var oldest time.Time
	count := 0
	for _, t := range history {
		if t.After(cutoff) {
			if count == 0 || t.Before(oldest) {
				oldest = t
			}
			count++
		}
	}
	if count < max {
		return 0, false
	}
	return oldest.Sub(cutoff), true
}

// ErrorMessage derives the user-facing rejection text
func ErrorMessage(r Result) string {
	wait := int(r.WaitTime.Round(time.Second).Seconds())
	switch r.Reason {
	case ReasonBasicCooldown:
		return fmt.Sprintf("Please wait %d seconds before refreshing again", wait)
	case ReasonBurstProtection:
		return fmt.Sprintf("Too many refreshes. Try again in %d seconds", wait)
	case ReasonHourlyLimit:
		return fmt.Sprintf("Hourly refresh limit reached. Try again in %d seconds", wait)
	default:
		return ""
	}
}

// ButtonText derives the refresh button label from the check result
func ButtonText(r Result) string {
	if r.Allowed {
		return "Refresh All"
	}
	return fmt.Sprintf("Wait %ds", int(r.WaitTime.Round(time.Second).Seconds()))
}
