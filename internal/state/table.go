package state

import (
	"sync"

	"github.com/pricestream/relay/internal/model"
)

// Table holds the most recent PricePoint per instrument. Writers are the
// feed listeners; readers are the resolver and the catch-up path. Last
// write wins.
type Table struct {
	mu     sync.RWMutex
	points map[string]model.PricePoint
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		points: make(map[string]model.PricePoint),
	}
}

// Update stores p under its normalized symbol, replacing any previous
// entry. Points without a symbol are ignored.
func (t *Table) Update(p model.PricePoint) {
	sym := model.NormalizeSymbol(p.Symbol)
	if sym == "" {
		return
	}
	p.Symbol = sym

	t.mu.Lock()
	t.points[sym] = p
	t.mu.Unlock()
}

// Lookup returns the current point for a symbol (read-locked).
func (t *Table) Lookup(symbol string) (model.PricePoint, bool) {
	sym := model.NormalizeSymbol(symbol)

	t.mu.RLock()
	defer t.mu.RUnlock()

	p, ok := t.points[sym]
	return p, ok
}

// Snapshot returns a copy of every current point. Order is unspecified.
func (t *Table) Snapshot() []model.PricePoint {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]model.PricePoint, 0, len(t.points))
	for _, p := range t.points {
		result = append(result, p)
	}
	return result
}

// Len returns the number of tracked symbols.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.points)
}
