package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/watchdeck/watchdeck/internal/models"
	"github.com/watchdeck/watchdeck/internal/ratelimit"
)

// RefreshTrigger is the slice of the watchlist core the consumer drives
type RefreshTrigger interface {
	RefreshAll(ctx context.Context, manual bool) ratelimit.Result
}

// RefreshConsumer handles refresh requests arriving over Kafka. It is the
// message-passing alternative to the in-process ticker: an external
// scheduler publishes REFRESH_REQUESTED events and this consumer invokes
// the core's refresh pass. Selection policy, rate limiting, and stuck-entry
// recovery all live in the core, so the semantics are identical whichever
// scheduler fires.
type RefreshConsumer struct {
	reader  *kafka.Reader
	trigger RefreshTrigger
	logger  *slog.Logger
}

// NewRefreshConsumer creates a Kafka consumer for refresh request events
func NewRefreshConsumer(brokers []string, topic, groupID string, trigger RefreshTrigger, logger *slog.Logger) *RefreshConsumer {
	if logger == nil {
		logger = slog.Default()
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.LastOffset,
		CommitInterval: time.Second,
	})

	return &RefreshConsumer{
		reader:  reader,
		trigger: trigger,
		logger:  logger,
	}
}

// Start begins consuming messages from Kafka
func (c *RefreshConsumer) Start(ctx context.Context) error {
	c.logger.Info("starting refresh consumer", "topic", c.reader.Config().Topic)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("refresh consumer shutting down")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil // Context cancelled, normal shutdown
				}
				c.logger.Error("failed to read message", "error", err)
				continue
			}

			if err := c.processMessage(ctx, msg); err != nil {
				c.logger.Error("failed to process message", "error", err)
				// Continue processing other messages
			}
		}
	}
}

// processMessage handles a single Kafka message. Events other than refresh
// requests are skipped; they come from this service's own producer.
func (c *RefreshConsumer) processMessage(ctx context.Context, msg kafka.Message) error {
	var event models.StockEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal event: %w", err)
	}

	if event.EventType != models.EventRefreshRequested {
		return nil
	}

	// The "manual" key marks user-initiated requests relayed through the
	// bus; these go through the rate limiter like any manual refresh.
	manual := string(msg.Key) == "manual"
	res := c.trigger.RefreshAll(ctx, manual)
	if !res.Allowed {
		c.logger.Info("relayed manual refresh rejected",
			"reason", res.Reason, "wait", res.WaitTime)
	}
	return nil
}

// Close closes the Kafka consumer
func (c *RefreshConsumer) Close() error {
	return c.reader.Close()
}
