package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vetlink-systems/vetlink-triage/internal/models"
)

func TestHub_PublishFansOut(t *testing.T) {
	hub := NewHub()

	a := hub.Subscribe()
	b := hub.Subscribe()
	defer a.Cancel()
	defer b.Cancel()

	snap := &models.QueueSnapshot{TakenAt: time.Now()}
	hub.Publish(snap)

	for _, sub := range []*Subscription{a, b} {
		select {
		case got := <-sub.C():
			assert.Same(t, snap, got)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive snapshot")
		}
	}
}

func TestHub_SlowSubscriberDropsUpdates(t *testing.T) {
	hub := NewHub()

	sub := hub.Subscribe()
	defer sub.Cancel()

	// Overfill the buffer; publishes past capacity must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < defaultBuffer*3; i++ {
			hub.Publish(&models.QueueSnapshot{})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on slow subscriber")
	}

	// The subscriber still drains exactly one buffer's worth.
	received := 0
	for {
		select {
		case <-sub.C():
			received++
			continue
		default:
		}
		break
	}
	assert.Equal(t, defaultBuffer, received)
}

func TestHub_CancelClosesChannel(t *testing.T) {
	hub := NewHub()

	sub := hub.Subscribe()
	require.Equal(t, 1, hub.Len())

	sub.Cancel()
	assert.Equal(t, 0, hub.Len())

	_, ok := <-sub.C()
	assert.False(t, ok)

	// Cancel is idempotent.
	sub.Cancel()
}

func TestHub_PublishAfterCancel(t *testing.T) {
	hub := NewHub()

	sub := hub.Subscribe()
	sub.Cancel()

	// Must not panic on the closed channel.
	hub.Publish(&models.QueueSnapshot{})
}
