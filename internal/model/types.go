package model

import (
	"strings"
	"time"
)

// PricePoint is the normalized payload for one instrument observation.
// Every source (live stream, fallback cache, REST lookups) converts into
// this type at its own boundary; nothing downstream sees provider formats.
type PricePoint struct {
	Symbol    string  `json:"symbol"`               // Canonical uppercase symbol (e.g. "BTCUSDT")
	LastPrice string  `json:"last_price"`           // Decimal string, never a binary float
	ChangePct *string `json:"change_pct,omitempty"` // 24h change percent, nil when the source has none
	Timestamp int64   `json:"timestamp"`            // Milliseconds since epoch
}

// NormalizeSymbol returns the canonical form of an instrument symbol.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// NowMillis returns the current wall-clock time in milliseconds since epoch,
// the fallback timestamp for observations that carry none.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// Pct wraps a change-percent string for assignment to PricePoint.ChangePct.
func Pct(s string) *string {
	return &s
}
