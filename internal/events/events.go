// Package events publishes cart and order domain events after commit.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// Topics.
const (
	TopicCartCreated     = "cart.created"
	TopicCartItemAdded   = "cart.item.added"
	TopicCartItemUpdated = "cart.item.updated"
	TopicCartItemRemoved = "cart.item.removed"
	TopicCartDeleted     = "cart.deleted"
	TopicOrderCreated    = "order.created"
)

// Publisher sends a JSON payload keyed by the aggregate id.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload any) error
	Close() error
}

// CartEvent is emitted for every committed cart mutation.
type CartEvent struct {
	CartID        string          `json:"cart_id"`
	CartItemID    string          `json:"cart_item_id,omitempty"`
	CatalogItemID string          `json:"catalog_item_id,omitempty"`
	Quantity      int             `json:"quantity,omitempty"`
	TotalDelta    decimal.Decimal `json:"total_delta"`
	Timestamp     time.Time       `json:"timestamp"`
}

// OrderCreatedEvent is emitted once per order.
type OrderCreatedEvent struct {
	OrderID   string          `json:"order_id"`
	UserID    string          `json:"user_id"`
	CartID    string          `json:"cart_id"`
	FinalSum  decimal.Decimal `json:"final_sum"`
	Timestamp time.Time       `json:"timestamp"`
}

// NopPublisher drops every event. Used when no brokers are configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, any) error { return nil }
func (NopPublisher) Close() error                                       { return nil }

// DefaultPublishTimeout bounds one Publish call, retries included.
const DefaultPublishTimeout = 2 * time.Second

// KafkaPublisher writes events to Kafka, one writer for all topics.
type KafkaPublisher struct {
	writer  *kafka.Writer
	timeout time.Duration
}

// NewKafkaPublisher creates a publisher; topics are set per message.
// Batches flush after a few milliseconds so a single event does not wait
// for a full batch.
func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireOne,
			AllowAutoTopicCreation: true,
			BatchTimeout:           5 * time.Millisecond,
			MaxAttempts:            3,
			WriteTimeout:           time.Second,
		},
		timeout: DefaultPublishTimeout,
	}
}

// WithTimeout changes the per-call bound.
func (p *KafkaPublisher) WithTimeout(d time.Duration) *KafkaPublisher {
	p.timeout = d
	return p
}

// Publish runs after the write has committed, so it ignores cancellation of
// the caller's request and is bounded by its own timeout instead.
func (p *KafkaPublisher) Publish(ctx context.Context, topic, key string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()
	return p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now().UTC(),
	})
}

func (p *KafkaPublisher) Close() error { return p.writer.Close() }

// New picks the Kafka publisher when brokers are configured.
func New(brokers []string) Publisher {
	if len(brokers) == 0 {
		return NopPublisher{}
	}
	return NewKafkaPublisher(brokers)
}
