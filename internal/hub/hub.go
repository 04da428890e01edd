package hub

import (
	"log/slog"
	"sync"

	"github.com/pricestream/relay/internal/metrics"
	"github.com/pricestream/relay/internal/model"
)

// Subscriber is one downstream connection able to receive price points.
type Subscriber interface {
	// ID identifies the subscriber in logs.
	ID() string

	// Send delivers one price point. An error drops the subscriber.
	Send(pt model.PricePoint) error

	// Close releases the underlying connection.
	Close() error
}

// Hub tracks the subscriber set and fans events out to it.
type Hub struct {
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu   sync.Mutex
	subs map[Subscriber]struct{}
}

// New creates an empty hub.
func New(logger *slog.Logger, m *metrics.Metrics) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.New()
	}
	return &Hub{
		logger:  logger,
		metrics: m,
		subs:    make(map[Subscriber]struct{}),
	}
}

// Register adds a subscriber to the set.
func (h *Hub) Register(sub Subscriber) {
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	n := len(h.subs)
	h.mu.Unlock()

	h.metrics.Subscribers.Set(float64(n))
	h.logger.Info("subscriber connected", "id", sub.ID(), "subscribers", n)
}

// Unregister removes a subscriber and reports whether it was still a
// member. The disconnect path and a failed send may both try to remove the
// same subscriber; only the first remove wins.
func (h *Hub) Unregister(sub Subscriber) bool {
	h.mu.Lock()
	_, ok := h.subs[sub]
	if ok {
		delete(h.subs, sub)
	}
	n := len(h.subs)
	h.mu.Unlock()

	if ok {
		h.metrics.Subscribers.Set(float64(n))
		h.logger.Info("subscriber disconnected", "id", sub.ID(), "subscribers", n)
	}
	return ok
}

// Broadcast sends one price point to every subscriber. The set is
// snapshotted under the lock and sends happen outside it, so a slow
// subscriber never blocks membership changes. A failing subscriber is
// dropped and closed; the rest still receive the event.
func (h *Hub) Broadcast(pt model.PricePoint) {
	h.mu.Lock()
	subs := make([]Subscriber, 0, len(h.subs))
	for sub := range h.subs {
		subs = append(subs, sub)
	}
	h.mu.Unlock()

	for _, sub := range subs {
		if err := sub.Send(pt); err != nil {
			h.metrics.SendFailures.Inc()
			h.logger.Warn("subscriber send failed, dropping",
				"id", sub.ID(),
				"error", err,
			)
			h.Unregister(sub)
			sub.Close()
		}
	}

	h.metrics.BroadcastEvents.Inc()
}

// Count returns the current subscriber count.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
