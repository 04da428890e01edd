package source

import (
	"fmt"
	"net/http"

	"github.com/sony/gobreaker"
)

// Step names recorded in resolution attempts.
const (
	SourceCoinGecko = "coingecko"
	SourceBinance   = "binance"
)

// bodyLimit caps how much of an upstream response body is kept in an Attempt.
const bodyLimit = 512

// Breaker trip thresholds, shared by both sources.
var (
	maxFailingRequests = 10
	failingRatio       = 0.6
)

// APIError represents an error response from a price source.
type APIError struct {
	StatusCode int
	Message    string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("price source error %d: %s", e.StatusCode, e.Message)
}

// Attempt records a single upstream fetch for diagnostics. One Attempt is
// produced per HTTP round trip, success or failure.
type Attempt struct {
	Source     string `json:"source"`
	URL        string `json:"url"`
	Status     int    `json:"status,omitempty"`
	Body       string `json:"body,omitempty"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

func truncate(b []byte) string {
	if len(b) > bodyLimit {
		return string(b[:bodyLimit]) + "..."
	}
	return string(b)
}

// newBreaker returns a circuit breaker that opens once a source has served
// enough requests with a high enough failure ratio.
func newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name: name,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return int(counts.Requests) > maxFailingRequests && ratio >= failingRatio
		},
	})
}

// statusText mirrors http.StatusText but never returns an empty string.
func statusText(code int) string {
	if s := http.StatusText(code); s != "" {
		return s
	}
	return "unknown status"
}
