package feed

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/pricestream/relay/internal/metrics"
	"github.com/pricestream/relay/internal/model"
	"github.com/pricestream/relay/internal/state"
)

var defaultSymbols = []string{"btcusdt", "ethusdt"}

// Service runs one Listener per configured instrument.
type Service struct {
	listeners []*Listener
	logger    *slog.Logger

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewService creates the listener set. Duplicate and blank symbols are
// dropped; an empty list falls back to the default instruments.
func NewService(cfg Config, table *state.Table, queue *state.Queue[model.PricePoint], logger *slog.Logger, m *metrics.Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.New()
	}

	symbols := cfg.Symbols
	if len(symbols) == 0 {
		symbols = defaultSymbols
	}

	s := &Service{logger: logger}
	seen := make(map[string]struct{}, len(symbols))
	for _, sym := range symbols {
		key := strings.ToLower(strings.TrimSpace(sym))
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		s.listeners = append(s.listeners, NewListener(cfg, key, table, queue, logger, m))
	}

	return s
}

// Start launches every listener.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.New("feed service already started")
	}
	s.started = true

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for _, l := range s.listeners {
		s.wg.Add(1)
		go func(l *Listener) {
			defer s.wg.Done()
			l.Run(runCtx)
		}(l)
	}

	s.logger.Info("feed service started", "streams", len(s.listeners))
	return nil
}

// Stop signals every listener and waits for them to exit, bounded by ctx.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("feed service stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Status reports per-instrument connection state.
func (s *Service) Status() map[string]bool {
	out := make(map[string]bool, len(s.listeners))
	for _, l := range s.listeners {
		out[l.Symbol()] = l.Connected()
	}
	return out
}
