package resolve

import (
	"context"
	"log/slog"
	"time"

	"github.com/pricestream/relay/internal/metrics"
	"github.com/pricestream/relay/internal/model"
	"github.com/pricestream/relay/internal/source"
	"github.com/pricestream/relay/internal/state"
)

// DefaultRetryWait separates the batch source's two attempts.
const DefaultRetryWait = 500 * time.Millisecond

// PrimarySource answers many symbols in one call.
type PrimarySource interface {
	Known(symbol string) bool
	FetchBatch(ctx context.Context, symbols []string) (map[string]model.PricePoint, source.Attempt, error)
}

// SecondarySource answers one symbol per call.
type SecondarySource interface {
	FetchSymbol(ctx context.Context, symbol string) (*model.PricePoint, source.Attempt, error)
}

// Config holds the resolver's tunables.
type Config struct {
	// DefaultSymbols are resolved when a request names no symbols.
	DefaultSymbols []string
	// RetryWait is the sleep before the batch source's single retry.
	RetryWait time.Duration
}

// Resolver answers price lookups by consulting, in order: the live table,
// the TTL cache, the batch source, then the per-symbol fallback source.
// Symbols no step can answer are left out of the result.
type Resolver struct {
	table     *state.Table
	cache     *Cache
	primary   PrimarySource
	secondary SecondarySource
	defaults  []string
	retryWait time.Duration
	logger    *slog.Logger
	metrics   *metrics.Metrics

	sleep func(context.Context, time.Duration)
}

// New creates a Resolver.
func New(table *state.Table, cache *Cache, primary PrimarySource, secondary SecondarySource, cfg Config, logger *slog.Logger, m *metrics.Metrics) *Resolver {
	if cfg.RetryWait <= 0 {
		cfg.RetryWait = DefaultRetryWait
	}
	if logger == nil {
		logger = slog.Default()
	}
	if m == nil {
		m = metrics.New()
	}

	defaults := make([]string, 0, len(cfg.DefaultSymbols))
	for _, s := range cfg.DefaultSymbols {
		if sym := model.NormalizeSymbol(s); sym != "" {
			defaults = append(defaults, sym)
		}
	}

	return &Resolver{
		table:     table,
		cache:     cache,
		primary:   primary,
		secondary: secondary,
		defaults:  defaults,
		retryWait: cfg.RetryWait,
		logger:    logger,
		metrics:   m,
		sleep:     sleepCtx,
	}
}

// Resolve looks up the given symbols, falling back to DefaultSymbols when
// none are given. The result holds only the symbols some step answered; the
// trace records every step taken.
func (r *Resolver) Resolve(ctx context.Context, symbols []string) (map[string]model.PricePoint, *Trace) {
	wanted := r.normalize(symbols)
	trace := newTrace(wanted)
	result := make(map[string]model.PricePoint, len(wanted))

	pending := r.fromTable(wanted, result, trace)
	if len(pending) > 0 {
		pending = r.fromCache(pending, result, trace)
	}
	if len(pending) > 0 {
		pending = r.fromPrimary(ctx, pending, result, trace)
	}
	if len(pending) > 0 {
		pending = r.fromSecondary(ctx, pending, result, trace)
	}

	if len(pending) > 0 {
		trace.Missing = pending
		r.metrics.ResolverMisses.Add(float64(len(pending)))
		r.logger.Warn("symbols unresolved after every step",
			"missing", pending,
			"attempts", len(trace.Attempts),
		)
	}

	return result, trace
}

func (r *Resolver) normalize(symbols []string) []string {
	out := make([]string, 0, len(symbols))
	seen := make(map[string]struct{}, len(symbols))
	for _, s := range symbols {
		sym := model.NormalizeSymbol(s)
		if sym == "" {
			continue
		}
		if _, dup := seen[sym]; dup {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	if len(out) == 0 {
		return append(out, r.defaults...)
	}
	return out
}

func (r *Resolver) fromTable(symbols []string, result map[string]model.PricePoint, trace *Trace) []string {
	var pending []string
	for _, sym := range symbols {
		pt, ok := r.table.Lookup(sym)
		trace.Table[sym] = ok
		if !ok {
			pending = append(pending, sym)
			continue
		}
		result[sym] = pt
		trace.Resolved[sym] = StepTable
		r.metrics.ResolverLookups.WithLabelValues(StepTable).Inc()
	}
	return pending
}

func (r *Resolver) fromCache(symbols []string, result map[string]model.PricePoint, trace *Trace) []string {
	var pending []string
	for _, sym := range symbols {
		pt, ok := r.cache.Get(sym)
		trace.Cache[sym] = ok
		if !ok {
			pending = append(pending, sym)
			continue
		}
		result[sym] = pt
		trace.Resolved[sym] = StepCache
		r.metrics.ResolverLookups.WithLabelValues(StepCache).Inc()
	}
	return pending
}

func (r *Resolver) fromPrimary(ctx context.Context, symbols []string, result map[string]model.PricePoint, trace *Trace) []string {
	mapped := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		if r.primary.Known(sym) {
			mapped = append(mapped, sym)
		}
	}
	if len(mapped) == 0 {
		return symbols
	}

	points, att, err := r.primary.FetchBatch(ctx, mapped)
	trace.Attempts = append(trace.Attempts, att)
	if err != nil {
		r.logger.Warn("batch source failed", "source", att.Source, "error", err)
	}

	// One retry with a short pause when the first attempt yields nothing.
	if len(points) == 0 && ctx.Err() == nil {
		r.sleep(ctx, r.retryWait)
		points, att, err = r.primary.FetchBatch(ctx, mapped)
		trace.Attempts = append(trace.Attempts, att)
		if err != nil {
			r.logger.Warn("batch source retry failed", "source", att.Source, "error", err)
		}
	}

	for sym, pt := range points {
		result[sym] = pt
		r.cache.Put(pt)
		trace.Resolved[sym] = att.Source
		r.metrics.ResolverLookups.WithLabelValues(att.Source).Inc()
	}

	var pending []string
	for _, sym := range symbols {
		if _, ok := result[sym]; !ok {
			pending = append(pending, sym)
		}
	}
	return pending
}

func (r *Resolver) fromSecondary(ctx context.Context, symbols []string, result map[string]model.PricePoint, trace *Trace) []string {
	var pending []string
	for _, sym := range symbols {
		if ctx.Err() != nil {
			pending = append(pending, sym)
			continue
		}

		pt, att, err := r.secondary.FetchSymbol(ctx, sym)
		trace.Attempts = append(trace.Attempts, att)
		if err != nil {
			r.logger.Warn("fallback source failed", "source", att.Source, "symbol", sym, "error", err)
			pending = append(pending, sym)
			continue
		}

		result[sym] = *pt
		r.cache.Put(*pt)
		trace.Resolved[sym] = att.Source
		r.metrics.ResolverLookups.WithLabelValues(att.Source).Inc()
	}
	return pending
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
