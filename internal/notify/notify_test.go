package notify

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWriter struct {
	mu          sync.Mutex
	msgs        []kafka.Message
	closed      bool
	afterClosed int
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		w.afterClosed++
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

type fakeHub struct {
	published [][]byte
}

func (h *fakeHub) Publish(message []byte) bool {
	h.published = append(h.published, message)
	return true
}

func TestKafkaNotifierPublishesKeyedByType(t *testing.T) {
	w := &fakeWriter{}
	k := newKafkaNotifier(w, 0, zap.NewNop())

	k.Notify(context.Background(), NewEvent(TypeOrderUpdate, "order_created", map[string]string{"id": "o1"}))
	require.NoError(t, k.Close())

	require.Len(t, w.msgs, 1)
	assert.Equal(t, TypeOrderUpdate, string(w.msgs[0].Key))
	assert.True(t, w.closed)

	var decoded Event
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &decoded))
	assert.Equal(t, "order_created", decoded.Action)
}

func TestKafkaNotifierRejectsAfterClose(t *testing.T) {
	w := &fakeWriter{}
	k := newKafkaNotifier(w, 0, zap.NewNop())
	require.NoError(t, k.Close())
	require.NoError(t, k.Close())

	assert.ErrorIs(t, k.publish(NewEvent(TypeStockUpdate, "stock_adjusted", nil)), ErrNotifierClosed)
	assert.Empty(t, w.msgs)
}

func TestKafkaNotifierCloseWhilePublishing(t *testing.T) {
	w := &fakeWriter{}
	k := newKafkaNotifier(w, 0, zap.NewNop())

	var accepted atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if k.publish(NewEvent(TypeStockUpdate, "stock_adjusted", nil)) == nil {
					accepted.Add(1)
				}
			}
		}()
	}
	require.NoError(t, k.Close())
	wg.Wait()

	w.mu.Lock()
	defer w.mu.Unlock()
	assert.Zero(t, w.afterClosed)
	assert.Len(t, w.msgs, int(accepted.Load()))
}

func TestMultiFansOut(t *testing.T) {
	hub := &fakeHub{}
	rec := &Recorder{}
	m := Multi{NewHubNotifier(hub, zap.NewNop()), rec, nil}

	m.Notify(context.Background(), NewEvent(TypeStockUpdate, "stock_adjusted", nil))

	assert.Len(t, hub.published, 1)
	assert.Equal(t, []string{"stock_adjusted"}, rec.Actions())
}
