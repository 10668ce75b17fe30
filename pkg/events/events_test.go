package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/example/clickmenu/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var at = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (s *recordingSink) Handle(_ context.Context, e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return s.err
}

func (s *recordingSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.events)
}

func TestActorDispatcherFansOut(t *testing.T) {
	failing := &recordingSink{err: errors.New("broker down")}
	ok := &recordingSink{}
	d, err := NewActorDispatcher(zap.NewNop(), failing, ok)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		require.NoError(t, d.Dispatch(context.Background(), OrderCreated{RequestID: "ORD-1", StoreID: "S1", At: at}))
	}

	require.Eventually(t, func() bool { return ok.count() == 3 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 3, failing.count())

	require.NoError(t, d.Close())
	assert.ErrorIs(t, d.Dispatch(context.Background(), OrderCreated{}), ErrDispatcherStopped)
	assert.NoError(t, d.Close())
}

func TestEncode(t *testing.T) {
	data, err := Encode(OrderStatusChanged{RequestID: "ORD-1", StoreID: "S1", From: "new", To: "ready", Actor: "merchant", At: at})
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, TypeOrderStatusChanged, env.Type)
	assert.Equal(t, "S1", env.Key)
	assert.True(t, at.Equal(env.OccurredAt))

	var payload OrderStatusChanged
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	assert.Equal(t, "ready", payload.To)
}

func producerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	return cfg
}

func TestKafkaSink(t *testing.T) {
	t.Run("publishes envelope keyed by store", func(t *testing.T) {
		producer := mocks.NewSyncProducer(t, producerConfig())
		producer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
			key, err := msg.Key.Encode()
			if err != nil {
				return err
			}
			if string(key) != "S1" {
				return errors.New("unexpected key " + string(key))
			}
			if msg.Topic != "order-events" {
				return errors.New("unexpected topic " + msg.Topic)
			}
			return nil
		})

		sink := NewKafkaSink(producer, "order-events", zap.NewNop())
		require.NoError(t, sink.Handle(context.Background(), OrderCreated{RequestID: "ORD-1", StoreID: "S1", At: at}))
		require.NoError(t, sink.Close())
	})

	t.Run("surfaces producer errors", func(t *testing.T) {
		producer := mocks.NewSyncProducer(t, producerConfig())
		producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

		sink := NewKafkaSink(producer, "order-events", zap.NewNop())
		err := sink.Handle(context.Background(), PasscodeReset{StoreID: "S1", At: at})
		assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
		require.NoError(t, sink.Close())
	})
}

type fakeAuditWriter struct {
	logs []*repository.AuditLog
}

func (f *fakeAuditWriter) CreateAuditLog(_ context.Context, log *repository.AuditLog) error {
	f.logs = append(f.logs, log)
	return nil
}

func TestAuditSink(t *testing.T) {
	w := &fakeAuditWriter{}
	sink := NewAuditSink(w, "order-service")

	require.NoError(t, sink.Handle(context.Background(), OrderStatusChanged{
		RequestID: "ORD-7", StoreID: "S1", From: "new", To: "confirmed", Actor: "admin", At: at,
	}))
	require.NoError(t, sink.Handle(context.Background(), MenuItemChanged{StoreID: "S1", ItemID: "jerk", Status: "hidden", At: at}))
	require.NoError(t, sink.Handle(context.Background(), StoresBulkUpdated{
		Action: "pause", Succeeded: []string{"S1", "S2"}, Actor: "admin:ops", At: at,
	}))

	require.Len(t, w.logs, 3)
	assert.Equal(t, "order-service", w.logs[0].Service)
	assert.Equal(t, TypeOrderStatusChanged, w.logs[0].Action)
	assert.Equal(t, "ORD-7", w.logs[0].EntityID)
	assert.Equal(t, "admin", w.logs[0].Actor)
	assert.Equal(t, "confirmed", w.logs[0].Data["to"])
	assert.Equal(t, "S1", w.logs[0].StoreID)
	assert.Equal(t, "S1/jerk", w.logs[1].EntityID)
	assert.Equal(t, "S1", w.logs[1].StoreID)

	bulk := w.logs[2]
	assert.Equal(t, TypeStoresBulkUpdated, bulk.Action)
	assert.Empty(t, bulk.StoreID)
	assert.Equal(t, "pause", bulk.EntityID)
	assert.Equal(t, "admin:ops", bulk.Actor)
}
