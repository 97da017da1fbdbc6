package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

type StockEventType string

const (
	EventMaterialIssued  StockEventType = "material_issued"
	EventMaterialReturn  StockEventType = "material_returned"
	EventSiteTransfer    StockEventType = "site_transfer"
	EventMaterialCreated StockEventType = "material_created"
)

// StockEvent: one stock movement, keyed by material so consumers see per
// material ordering.
type StockEvent struct {
	Type       StockEventType `json:"type"`
	MaterialID uint           `json:"material_id"`
	ProjectID  uint           `json:"project_id"`
	Quantity   float64        `json:"quantity"`
	Reference  string         `json:"reference"` // e.g. MRR number or batch id
	Timestamp  time.Time      `json:"timestamp"`
}

type StockEventProducer interface {
	PublishStockEvent(ctx context.Context, event *StockEvent) error
	Close() error
}

type kafkaProducer struct {
	writer *kafka.Writer
}

func NewKafkaProducer(brokers []string, topic string) StockEventProducer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Compression:  kafka.Snappy,
	}

	return &kafkaProducer{writer: writer}
}

func (p *kafkaProducer) PublishStockEvent(ctx context.Context, event *StockEvent) error {
	eventJSON, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal stock event: %w", err)
	}

	message := kafka.Message{
		Key:   []byte(strconv.FormatUint(uint64(event.MaterialID), 10)),
		Value: eventJSON,
		Time:  event.Timestamp,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(event.Type)},
		},
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := p.writer.WriteMessages(ctx, message); err != nil {
		return fmt.Errorf("failed to write stock event to kafka: %w", err)
	}

	return nil
}

func (p *kafkaProducer) Close() error {
	return p.writer.Close()
}

// noopProducer: used when no broker is configured. Events are logged and
// dropped; stock mutations never depend on the broker being up.
type noopProducer struct{}

func NewNoopProducer() StockEventProducer {
	return noopProducer{}
}

func (noopProducer) PublishStockEvent(_ context.Context, event *StockEvent) error {
	log.Printf("stock event (not published): %s material=%d qty=%.2f ref=%s",
		event.Type, event.MaterialID, event.Quantity, event.Reference)
	return nil
}

func (noopProducer) Close() error { return nil }
