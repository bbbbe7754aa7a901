package ws

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPublishDropsWhenFull(t *testing.T) {
	h := NewHub(nil)
	for i := 0; i < broadcastBuffer; i++ {
		assert.True(t, h.Publish([]byte("x")))
	}
	assert.False(t, h.Publish([]byte("overflow")))
}

func TestRunDrainsAndStops(t *testing.T) {
	h := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(done)
	}()

	assert.True(t, h.Publish([]byte(`{"type":"ping"}`)))
	assert.Eventually(t, func() bool { return len(h.Broadcast) == 0 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, 0, h.ClientCount())

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
}

func TestJoinAndLeaveReturnAfterStop(t *testing.T) {
	h := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	go h.Run(ctx)
	cancel()

	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}

	left := make(chan struct{})
	go func() {
		h.Leave(nil)
		close(left)
	}()
	select {
	case <-left:
	case <-time.After(time.Second):
		t.Fatal("leave blocked after the hub stopped")
	}
	assert.False(t, h.Join(nil))
}
