// Package kafka publishes watchlist lifecycle events and consumes refresh
// requests from an external scheduler.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/watchdeck/watchdeck/internal/models"
)

// Producer handles publishing watchlist events to Kafka
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer creates a new Kafka producer
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Producer{
		writer: writer,
		topic:  topic,
	}
}

// PublishStockAdded publishes a stock added event
func (p *Producer) PublishStockAdded(ctx context.Context, stock *models.Stock) error {
	event := models.StockEvent{
		EventType: models.EventStockAdded,
		Stock:     stock,
		Symbol:    stock.Symbol,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, stock.Symbol, event)
}

// PublishStockRemoved publishes a stock removed event
func (p *Producer) PublishStockRemoved(ctx context.Context, symbol string) error {
	event := models.StockEvent{
		EventType: models.EventStockRemoved,
		Symbol:    symbol,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, symbol, event)
}

// PublishQuoteUpdated publishes a quote updated event
func (p *Producer) PublishQuoteUpdated(ctx context.Context, stock *models.Stock) error {
	event := models.StockEvent{
		EventType: models.EventQuoteUpdated,
		Stock:     stock,
		Symbol:    stock.Symbol,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, stock.Symbol, event)
}

// PublishRefreshCompleted publishes a refresh pass completion marker. The
// key distinguishes manual from automatic passes for downstream consumers.
func (p *Producer) PublishRefreshCompleted(ctx context.Context, manual bool) error {
	key := "auto"
	if manual {
		key = "manual"
	}
	event := models.StockEvent{
		EventType: models.EventRefreshCompleted,
		Symbol:    key,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, key, event)
}

func (p *Producer) publish(ctx context.Context, key string, event models.StockEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(key),
		Value: data,
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to write message to kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	return p.writer.Close()
}
