package kafka_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"ecodeli/internal/adapters/out/kafka"
	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/core/ports"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var topics = kafka.Topics{Events: "delivery-events", Notifications: "notifications"}

func expectMessage(topic, key string, into any) mocks.MessageChecker {
	return func(msg *sarama.ProducerMessage) error {
		if msg.Topic != topic {
			return fmt.Errorf("topic %q, want %q", msg.Topic, topic)
		}
		k, err := msg.Key.Encode()
		if err != nil {
			return err
		}
		if string(k) != key {
			return fmt.Errorf("key %q, want %q", k, key)
		}
		v, err := msg.Value.Encode()
		if err != nil {
			return err
		}
		return json.Unmarshal(v, into)
	}
}

func TestProducer_PublishKeysByDelivery(t *testing.T) {
	sync := mocks.NewSyncProducer(t, nil)
	defer func() { require.NoError(t, sync.Close()) }()

	deliveryID := kernel.NewUUID()
	var got kafka.EventDTO
	sync.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(
		expectMessage(topics.Events, deliveryID.String(), &got))

	event := delivery.Event{
		Type:       delivery.EventStatusUpdate,
		DeliveryID: deliveryID,
		OccurredAt: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Payload:    map[string]any{"status": "NEARBY"},
	}
	require.NoError(t, kafka.NewProducer(sync, topics).Publish(t.Context(), deliveryID, event))

	assert.Equal(t, "STATUS_UPDATE", got.Type)
	assert.Equal(t, deliveryID.String(), got.DeliveryID)
	assert.Equal(t, "NEARBY", got.Payload["status"])
}

func TestProducer_NotifyKeysByUser(t *testing.T) {
	sync := mocks.NewSyncProducer(t, nil)
	defer func() { require.NoError(t, sync.Close()) }()

	userID := kernel.NewUUID()
	var got kafka.NotificationDTO
	sync.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(
		expectMessage(topics.Notifications, userID.String(), &got))

	err := kafka.NewProducer(sync, topics).Notify(t.Context(), ports.Notification{
		UserID:   userID,
		Title:    "Courier found",
		Message:  "A courier accepted your announcement",
		Category: "DELIVERY_UPDATE",
		Link:     "/client/deliveries/1",
	})
	require.NoError(t, err)

	assert.Equal(t, "Courier found", got.Title)
	assert.Equal(t, "DELIVERY_UPDATE", got.Category)
	assert.False(t, got.SentAt.IsZero())
}

func TestProducer_SendFailure(t *testing.T) {
	sync := mocks.NewSyncProducer(t, nil)
	defer func() { require.NoError(t, sync.Close()) }()

	sync.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	err := kafka.NewProducer(sync, topics).Publish(t.Context(), kernel.NewUUID(), delivery.Event{Type: delivery.EventETAUpdate})
	require.True(t, errors.Is(err, sarama.ErrOutOfBrokers))
}

func TestProducer_CancelledContextSendsNothing(t *testing.T) {
	sync := mocks.NewSyncProducer(t, nil)
	defer func() { require.NoError(t, sync.Close()) }()

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	err := kafka.NewProducer(sync, topics).Notify(ctx, ports.Notification{UserID: kernel.NewUUID()})
	require.ErrorIs(t, err, context.Canceled)
}

func TestDial_NotConfigured(t *testing.T) {
	p, err := kafka.Dial(nil, topics)
	require.NoError(t, err)
	assert.Nil(t, p)
	assert.NoError(t, p.Close())
}
