// Package kafka publishes delivery events and user notifications to Kafka.
//
// Events are keyed by delivery id so that one delivery's events land on one
// partition and keep their order. Notifications are keyed by user id.
package kafka

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/core/ports"

	"github.com/IBM/sarama"
)

// Topics names the destination topics.
type Topics struct {
	Events        string
	Notifications string
}

// Producer implements ports.Broadcaster and ports.Notifier over a sarama SyncProducer.
type Producer struct {
	producer sarama.SyncProducer
	topics   Topics
	now      func() time.Time
}

// Dial connects to the brokers. It returns nil, nil when brokers or topics are
// not configured, so the caller can fall back to another sink.
func Dial(brokers []string, topics Topics) (*Producer, error) {
	if len(brokers) == 0 || strings.TrimSpace(topics.Events) == "" || strings.TrimSpace(topics.Notifications) == "" {
		return nil, nil
	}

	cfg := sarama.NewConfig()
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true
	cfg.Producer.Partitioner = sarama.NewHashPartitioner

	p, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return NewProducer(p, topics), nil
}

// NewProducer wraps an existing SyncProducer.
func NewProducer(p sarama.SyncProducer, topics Topics) *Producer {
	return &Producer{producer: p, topics: topics, now: time.Now}
}

// Publish sends event to the events topic.
func (p *Producer) Publish(ctx context.Context, deliveryID kernel.UUID, event delivery.Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	value, err := json.Marshal(eventFromDomain(event))
	if err != nil {
		return err
	}
	return p.send(p.topics.Events, deliveryID.String(), string(event.Type), value)
}

// Notify sends n to the notifications topic.
func (p *Producer) Notify(ctx context.Context, n ports.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	value, err := json.Marshal(notificationFromDomain(n, p.now()))
	if err != nil {
		return err
	}
	return p.send(p.topics.Notifications, n.UserID.String(), n.Category, value)
}

func (p *Producer) send(topic, key, kind string, value []byte) error {
	_, _, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(key),
		Value: sarama.ByteEncoder(value),
		Headers: []sarama.RecordHeader{
			{Key: []byte("type"), Value: []byte(kind)},
		},
	})
	return err
}

// Close flushes and closes the underlying producer.
func (p *Producer) Close() error {
	if p == nil {
		return nil
	}
	return p.producer.Close()
}

var (
	_ ports.Broadcaster = (*Producer)(nil)
	_ ports.Notifier    = (*Producer)(nil)
)
