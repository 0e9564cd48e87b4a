package queue

import (
	"sync"

	"github.com/vetlink-systems/vetlink-triage/internal/models"
)

// defaultBuffer is the per-subscriber channel depth. A subscriber that falls
// further behind than this loses updates and must call Refresh to catch up.
const defaultBuffer = 8

// Hub broadcasts queue snapshots to in-process subscribers. Delivery is
// at-most-once per snapshot: a publish never blocks on a slow or disconnected
// subscriber, the update is simply dropped for that subscriber.
type Hub struct {
	mu   sync.Mutex
	subs map[*Subscription]struct{}
}

// Subscription is one subscriber's snapshot stream.
type Subscription struct {
	hub *Hub
	ch  chan *models.QueueSnapshot
}

// C returns the snapshot channel. It is closed when the subscription is
// cancelled.
func (s *Subscription) C() <-chan *models.QueueSnapshot {
	return s.ch
}

// Cancel detaches the subscription and closes its channel.
func (s *Subscription) Cancel() {
	s.hub.remove(s)
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{})}
}

// Subscribe attaches a new snapshot subscriber.
func (h *Hub) Subscribe() *Subscription {
	s := &Subscription{
		hub: h,
		ch:  make(chan *models.QueueSnapshot, defaultBuffer),
	}
	h.mu.Lock()
	h.subs[s] = struct{}{}
	h.mu.Unlock()
	return s
}

// Publish fans the snapshot out to every subscriber without blocking.
func (h *Hub) Publish(snap *models.QueueSnapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for s := range h.subs {
		select {
		case s.ch <- snap:
		default:
			// Subscriber is behind; drop this update for it.
		}
	}
}

// Len returns the current subscriber count.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) remove(s *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[s]; ok {
		delete(h.subs, s)
		close(s.ch)
	}
}
