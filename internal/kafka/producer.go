package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/mjaszc/stocks-watcher/internal/models"
)

// Producer handles publishing bar events to Kafka
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

// PublishBarsIngested announces that new bars were stored for a symbol
func (p *Producer) PublishBarsIngested(ctx context.Context, symbol string, rows int) error {
	event := models.BarEvent{
		EventType: models.EventBarsIngested,
		Symbol:    symbol,
		Rows:      rows,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, symbol, event)
}

// PublishBarsRebased announces that a symbol's rebased series were recomputed
func (p *Producer) PublishBarsRebased(ctx context.Context, symbol string) error {
	event := models.BarEvent{
		EventType: models.EventBarsRebased,
		Symbol:    symbol,
		Timestamp: time.Now(),
	}
	return p.publish(ctx, symbol, event)
}

func (p *Producer) publish(ctx context.Context, key string, event models.BarEvent) error {
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
