package hub

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/pricestream/relay/internal/model"
	"github.com/pricestream/relay/internal/state"
)

// Broadcaster drains the event queue into the hub, one event at a time in
// queue order.
type Broadcaster struct {
	queue  *state.Queue[model.PricePoint]
	hub    *Hub
	logger *slog.Logger

	mu      sync.Mutex
	started bool
	wg      sync.WaitGroup
}

// NewBroadcaster creates a broadcaster for the given queue and hub.
func NewBroadcaster(queue *state.Queue[model.PricePoint], hub *Hub, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		queue:  queue,
		hub:    hub,
		logger: logger,
	}
}

// Start launches the broadcast loop. The loop drains the queue and ends
// once the queue is closed and empty.
func (b *Broadcaster) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		return errors.New("broadcaster already started")
	}
	b.started = true

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		b.loop()
	}()

	b.logger.Info("broadcaster started")
	return nil
}

func (b *Broadcaster) loop() {
	for {
		pt, ok := b.queue.Receive()
		if !ok {
			b.logger.Info("event queue closed, broadcaster exiting")
			return
		}
		b.hub.Broadcast(pt)
	}
}

// Stop waits for the loop to finish draining, bounded by ctx. Close the
// queue first; Stop does not close it.
func (b *Broadcaster) Stop(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
