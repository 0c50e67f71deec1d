package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/mjaszc/stocks-watcher/internal/models"
)

// Normalizer recomputes the rebased series for one symbol
type Normalizer interface {
	Recompute(ctx context.Context, symbol string) error
}

// Consumer reacts to bar events from Kafka. When another producer
// ingests bars for a symbol, the consumer recomputes that symbol's
// rebased series so the anchor follows the advancing as-of date.
// Recomputation is whole-symbol and idempotent, so reprocessing a
// message is harmless.
type Consumer struct {
	reader     *kafka.Reader
	normalizer Normalizer
}

// NewConsumer creates a new Kafka consumer for bar events
func NewConsumer(brokers []string, topic, groupID string, normalizer Normalizer) *Consumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          topic,
		GroupID:        groupID,
		MinBytes:       10e3, // 10KB
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		StartOffset:    kafka.FirstOffset,
		CommitInterval: time.Second,
	})

	return &Consumer{
		reader:     reader,
		normalizer: normalizer,
	}
}

// Start begins consuming messages from Kafka
func (c *Consumer) Start(ctx context.Context) error {
	log.Printf("Starting Kafka consumer for topic: %s", c.reader.Config().Topic)

	for {
		select {
		case <-ctx.Done():
			log.Println("Kafka consumer shutting down...")
			return c.reader.Close()
		default:
			msg, err := c.reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return nil // Context cancelled, normal shutdown
				}
				log.Printf("Error reading message: %v", err)
				continue
			}

			if err := c.processMessage(ctx, msg); err != nil {
				log.Printf("Error processing message: %v", err)
				// Continue processing other messages
			}
		}
	}
}

// processMessage handles a single Kafka message
func (c *Consumer) processMessage(ctx context.Context, msg kafka.Message) error {
	log.Printf("Received message from partition %d offset %d: key=%s",
		msg.Partition, msg.Offset, string(msg.Key))

	var event models.BarEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		return fmt.Errorf("failed to unmarshal bar event: %w", err)
	}

	switch event.EventType {
	case models.EventBarsIngested:
		if event.Symbol == "" {
			return fmt.Errorf("bar event missing symbol")
		}
		if err := c.normalizer.Recompute(ctx, event.Symbol); err != nil {
			return fmt.Errorf("failed to recompute %s: %w", event.Symbol, err)
		}
		log.Printf("Recomputed rebased series for %s (%d new rows)", event.Symbol, event.Rows)
		return nil
	case models.EventBarsRebased:
		// Published by this service after its own recomputation.
		return nil
	default:
		log.Printf("Ignoring unknown event type: %s", event.EventType)
		return nil
	}
}

// Close closes the Kafka consumer
func (c *Consumer) Close() error {
	return c.reader.Close()
}
