package events_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"ecodeli/internal/core/application/events"
	"ecodeli/internal/core/domain/model/delivery"
	"ecodeli/internal/core/domain/model/kernel"
	"ecodeli/internal/core/domain/model/matching"
	"ecodeli/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockBroadcaster struct{ mock.Mock }

func (m *MockBroadcaster) Publish(ctx context.Context, deliveryID kernel.UUID, event delivery.Event) error {
	args := m.Called(ctx, deliveryID, event)
	return args.Error(0)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) Notify(ctx context.Context, n ports.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

type MockRecorder struct{ mock.Mock }

func (m *MockRecorder) Dispatched(kind, name string)                 { m.Called(kind, name) }
func (m *MockRecorder) Failed(kind, name string)                     { m.Called(kind, name) }
func (m *MockRecorder) Transitioned(from, to string, automatic bool) { m.Called(from, to, automatic) }
func (m *MockRecorder) LocationIngested()                            { m.Called() }
func (m *MockRecorder) ETARecomputed(calculationType string)         { m.Called(calculationType) }
func (m *MockRecorder) CandidatesScored(n int)                       { m.Called(n) }
func (m *MockRecorder) MatchResponded(decision string)               { m.Called(decision) }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestDispatcher_Flush(t *testing.T) {
	ctx := t.Context()
	deliveryID := kernel.NewUUID()
	first := delivery.Event{Type: delivery.EventLocationUpdate, DeliveryID: deliveryID, OccurredAt: time.Now()}
	second := delivery.Event{Type: delivery.EventStatusUpdate, DeliveryID: deliveryID, OccurredAt: time.Now()}
	note := ports.Notification{UserID: kernel.NewUUID(), Title: "Update", Category: "DELIVERY_UPDATE"}

	t.Run("delivers in order and empties the outbox", func(t *testing.T) {
		broadcaster, notifier, recorder := new(MockBroadcaster), new(MockNotifier), new(MockRecorder)
		mock.InOrder(
			broadcaster.On("Publish", ctx, deliveryID, first).Return(nil).Once(),
			broadcaster.On("Publish", ctx, deliveryID, second).Return(nil).Once(),
		)
		notifier.On("Notify", ctx, note).Return(nil).Once()
		recorder.On("Dispatched", mock.Anything, mock.Anything).Return()

		outbox := events.NewOutbox()
		outbox.Broadcast(deliveryID, first)
		outbox.Broadcast(deliveryID, second)
		outbox.Notify(note)
		assert.Equal(t, 3, outbox.Len())

		events.NewDispatcher(broadcaster, notifier, recorder, discardLogger()).Flush(ctx, outbox)

		assert.Equal(t, 0, outbox.Len())
		broadcaster.AssertExpectations(t)
		notifier.AssertExpectations(t)
		recorder.AssertNumberOfCalls(t, "Dispatched", 3)
	})

	t.Run("failures are swallowed and counted", func(t *testing.T) {
		broadcaster, notifier, recorder := new(MockBroadcaster), new(MockNotifier), new(MockRecorder)
		broadcaster.On("Publish", ctx, deliveryID, first).Return(errors.New("broker down")).Once()
		broadcaster.On("Publish", ctx, deliveryID, second).Return(nil).Once()
		notifier.On("Notify", ctx, note).Return(errors.New("smtp down")).Once()
		recorder.On("Failed", events.KindBroadcast, string(delivery.EventLocationUpdate)).Return().Once()
		recorder.On("Dispatched", events.KindBroadcast, string(delivery.EventStatusUpdate)).Return().Once()
		recorder.On("Failed", events.KindNotification, "DELIVERY_UPDATE").Return().Once()

		outbox := events.NewOutbox()
		outbox.Broadcast(deliveryID, first)
		outbox.Broadcast(deliveryID, second)
		outbox.Notify(note)

		events.NewDispatcher(broadcaster, notifier, recorder, discardLogger()).Flush(ctx, outbox)

		broadcaster.AssertExpectations(t)
		notifier.AssertExpectations(t)
		recorder.AssertExpectations(t)
	})

	t.Run("observations are reported after dispatch", func(t *testing.T) {
		recorder := new(MockRecorder)
		mock.InOrder(
			recorder.On("Transitioned", "IN_TRANSIT", "NEARBY", true).Return().Once(),
			recorder.On("LocationIngested").Return().Once(),
			recorder.On("ETARecomputed", "REAL_TIME").Return().Once(),
			recorder.On("CandidatesScored", 4).Return().Once(),
			recorder.On("MatchResponded", "ACCEPTED").Return().Once(),
		)

		outbox := events.NewOutbox()
		outbox.StatusChanged(delivery.InTransit, delivery.Nearby, true)
		outbox.LocationIngested()
		outbox.ETARecomputed(delivery.RealTime)
		outbox.CandidatesScored(4)
		outbox.MatchResponded(matching.Accepted)

		dispatcher := events.NewDispatcher(new(MockBroadcaster), new(MockNotifier), recorder, discardLogger())
		dispatcher.Flush(ctx, outbox)
		dispatcher.Flush(ctx, outbox)

		recorder.AssertExpectations(t)
	})

	t.Run("degradations are logged as warnings", func(t *testing.T) {
		var buf bytes.Buffer
		logger := slog.New(slog.NewJSONHandler(&buf, nil))
		outbox := events.NewOutbox()
		outbox.Degraded(deliveryID, "drop-off address could not be geocoded", errors.New("timeout"))

		dispatcher := events.NewDispatcher(new(MockBroadcaster), new(MockNotifier), nil, logger)
		dispatcher.Flush(ctx, outbox)
		dispatcher.Flush(ctx, outbox)

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "WARN", entry["level"])
		assert.Equal(t, "drop-off address could not be geocoded", entry["msg"])
		assert.Equal(t, deliveryID.String(), entry["delivery_id"])
		assert.Equal(t, "timeout", entry["error"])
		assert.Equal(t, "events_dispatcher", entry["component"])
		assert.Empty(t, outbox.Degradations())
	})

	t.Run("nil outbox is a no-op", func(t *testing.T) {
		events.NewDispatcher(new(MockBroadcaster), new(MockNotifier), nil, discardLogger()).Flush(ctx, nil)
	})
}
