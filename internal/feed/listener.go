package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/pricestream/relay/internal/metrics"
	"github.com/pricestream/relay/internal/model"
	"github.com/pricestream/relay/internal/state"
)

// Listener maintains the stream for one instrument and relays its events
// into the price table and the event queue. A listener never gives up: any
// connection failure leads to a backed-off reconnect.
type Listener struct {
	cfg     Config
	symbol  string // lowercase, as used in the stream path
	label   string // normalized, used in logs and metrics
	table   *state.Table
	queue   *state.Queue[model.PricePoint]
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu     sync.RWMutex
	client Client
}

// NewListener creates a listener for one instrument.
func NewListener(cfg Config, symbol string, table *state.Table, queue *state.Queue[model.PricePoint], logger *slog.Logger, m *metrics.Metrics) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.New()
	}

	label := model.NormalizeSymbol(symbol)
	return &Listener{
		cfg:     cfg.withDefaults(),
		symbol:  strings.ToLower(strings.TrimSpace(symbol)),
		label:   label,
		table:   table,
		queue:   queue,
		logger:  logger.With("symbol", label),
		metrics: m,
	}
}

// Symbol returns the normalized instrument name.
func (l *Listener) Symbol() string {
	return l.label
}

// Connected reports whether the listener currently holds a live connection.
func (l *Listener) Connected() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.client != nil && l.client.IsConnected()
}

func (l *Listener) streamURL() string {
	return strings.TrimRight(l.cfg.URL, "/") + "/" + l.symbol + "@ticker"
}

// Run connects and relays events until ctx is canceled. The backoff resets
// after every successful connect, so a long-lived stream that drops starts
// over from the shortest wait.
func (l *Listener) Run(ctx context.Context) {
	bo := newBackoff(l.cfg.ReconnectBase, l.cfg.ReconnectMax)

	for {
		err := l.stream(ctx, bo)
		if ctx.Err() != nil {
			return
		}

		wait := bo.next()
		l.logger.Warn("stream failed, reconnecting",
			"error", err,
			"wait", wait,
		)
		l.metrics.FeedReconnects.WithLabelValues(l.label).Inc()

		select {
		case <-ctx.Done():
			return
		case <-time.After(wait):
		}
	}
}

// stream runs one connection until it fails or ctx is canceled.
func (l *Listener) stream(ctx context.Context, bo *backoff) error {
	cl := NewClient(ClientConfig{
		URL:          l.streamURL(),
		PingTimeout:  l.cfg.PingTimeout,
		WriteTimeout: l.cfg.WriteTimeout,
		BufferSize:   l.cfg.BufferSize,
	}, l.logger)

	if err := cl.Connect(ctx); err != nil {
		return err
	}
	defer cl.Close()

	l.setClient(cl)
	defer l.setClient(nil)

	bo.reset()
	l.logger.Info("stream connected", "url", l.streamURL())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-cl.Errors():
			return err
		case msg := <-cl.Messages():
			l.handleMessage(msg)
		}
	}
}

func (l *Listener) setClient(cl Client) {
	l.mu.Lock()
	l.client = cl
	l.mu.Unlock()
}

// handleMessage decodes one frame and relays it. Undecodable frames are
// dropped without breaking the connection. The table is only written when
// the event names a symbol; the queue receives every decoded event.
func (l *Listener) handleMessage(msg TimestampedMessage) {
	var ev tickerEvent
	if err := json.Unmarshal(msg.Data, &ev); err != nil {
		l.metrics.FeedParseErrors.Inc()
		l.logger.Debug("dropping undecodable frame", "error", err)
		return
	}

	pt := model.PricePoint{
		Symbol:    model.NormalizeSymbol(ev.Symbol),
		LastPrice: ev.LastPrice,
		Timestamp: ev.EventTime,
	}
	if pt.Timestamp == 0 {
		pt.Timestamp = msg.ReceivedAt.UnixMilli()
	}
	if ev.ChangePct != "" {
		pt.ChangePct = model.Pct(ev.ChangePct)
	}

	if pt.Symbol != "" {
		l.table.Update(pt)
	}
	l.queue.Send(pt)
	l.metrics.FeedEvents.WithLabelValues(l.label).Inc()
}
