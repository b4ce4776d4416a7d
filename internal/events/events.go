// Package events publishes account lifecycle events for downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/IBM/sarama"

	"github.com/Gopher0727/Accounts/config"
	logger "github.com/Gopher0727/Accounts/middleware/log"
)

type Type string

const (
	BotCreated  Type = "bot.create"
	BotDeleted  Type = "bot.delete"
	UserCreated Type = "user.create"
)

// AccountEvent is the message body written to the account topic.
type AccountEvent struct {
	Type       Type      `json:"type"`
	AccountID  uint64    `json:"account_id"`
	OwnerID    uint64    `json:"owner_id,omitempty"`
	Username   string    `json:"username,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
	TraceID    string    `json:"trace_id,omitempty"`
}

// Publisher is called after the owning transaction committed.
type Publisher interface {
	Publish(ctx context.Context, event AccountEvent) error
	Close() error
}

// Nop drops every event. Used when no brokers are configured.
type Nop struct{}

func (Nop) Publish(context.Context, AccountEvent) error { return nil }

func (Nop) Close() error { return nil }

// KafkaPublisher writes events to one topic, keyed by the owning account so
// events of one owner stay ordered.
type KafkaPublisher struct {
	producer   sarama.SyncProducer
	topic      string
	maxRetries int
	backoff    time.Duration
}

// ProducerConfig is the sarama configuration used for account events.
func ProducerConfig(cfg config.KafkaConfig) *sarama.Config {
	sc := sarama.NewConfig()
	sc.Producer.Return.Successes = true
	sc.Producer.Return.Errors = true
	sc.Producer.RequiredAcks = sarama.WaitForAll
	if cfg.MaxRetries > 0 {
		sc.Producer.Retry.Max = cfg.MaxRetries
	}
	sc.Producer.Compression = sarama.CompressionSnappy
	sc.Producer.Idempotent = true
	sc.Net.MaxOpenRequests = 1
	sc.Net.DialTimeout = 10 * time.Second
	sc.Net.ReadTimeout = 10 * time.Second
	sc.Net.WriteTimeout = 10 * time.Second
	sc.Metadata.Retry.Max = 3
	sc.Metadata.Retry.Backoff = 250 * time.Millisecond
	return sc
}

// NewPublisher connects to the configured brokers, or returns Nop when there are none.
func NewPublisher(cfg config.KafkaConfig) (Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return Nop{}, nil
	}
	producer, err := sarama.NewSyncProducer(cfg.Brokers, ProducerConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return NewKafkaPublisher(producer, cfg.Topic, cfg.MaxRetries), nil
}

func NewKafkaPublisher(producer sarama.SyncProducer, topic string, maxRetries int) *KafkaPublisher {
	return &KafkaPublisher{
		producer:   producer,
		topic:      topic,
		maxRetries: maxRetries,
		backoff:    100 * time.Millisecond,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event AccountEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if event.TraceID == "" {
		event.TraceID = logger.GetTraceID(ctx)
	}
	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", event.Type, err)
	}

	key := event.OwnerID
	if key == 0 {
		key = event.AccountID
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatUint(key, 10)),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("type"), Value: []byte(event.Type)},
		},
	}

	var lastErr error
	backoff := p.backoff
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		_, _, lastErr = p.producer.SendMessage(msg)
		if lastErr == nil {
			return nil
		}
		if attempt == p.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	return fmt.Errorf("failed to publish %s event after %d attempts: %w", event.Type, p.maxRetries+1, lastErr)
}

func (p *KafkaPublisher) Close() error {
	if err := p.producer.Close(); err != nil {
		return fmt.Errorf("failed to close kafka producer: %w", err)
	}
	return nil
}
