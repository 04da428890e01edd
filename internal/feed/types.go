package feed

import (
	"errors"
	"time"
)

// DefaultStreamURL is the public combined stream endpoint.
const DefaultStreamURL = "wss://stream.binance.com:9443/ws"

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrAlreadyClosed   = errors.New("already closed")
)

// TimestampedMessage wraps raw frame data with a receive timestamp.
type TimestampedMessage struct {
	Data       []byte    // Raw frame bytes from the stream
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// tickerEvent is the upstream 24hr ticker payload, reduced to the fields
// the relay forwards.
type tickerEvent struct {
	EventType string `json:"e"`
	EventTime int64  `json:"E"`
	Symbol    string `json:"s"`
	LastPrice string `json:"c"`
	ChangePct string `json:"P"`
}

// ClientConfig configures a single stream connection.
type ClientConfig struct {
	URL          string        // Full stream URL including the instrument path
	PingTimeout  time.Duration // Max time without ping/pong before the connection is stale
	WriteTimeout time.Duration // Write deadline for control frames
	BufferSize   int           // Message channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		PingTimeout:  75 * time.Second,
		WriteTimeout: 5 * time.Second,
		BufferSize:   1024,
	}
}

// Config configures the listener set.
type Config struct {
	URL           string        // Stream base URL, instrument paths are appended
	Symbols       []string      // Instruments to listen for, lowercase pair names
	ReconnectBase time.Duration // First reconnect wait
	ReconnectMax  time.Duration // Reconnect wait ceiling
	PingTimeout   time.Duration
	WriteTimeout  time.Duration
	BufferSize    int
}

func (c Config) withDefaults() Config {
	if c.URL == "" {
		c.URL = DefaultStreamURL
	}
	if c.ReconnectBase <= 0 {
		c.ReconnectBase = time.Second
	}
	if c.ReconnectMax <= 0 {
		c.ReconnectMax = 30 * time.Second
	}
	if c.ReconnectMax < c.ReconnectBase {
		c.ReconnectMax = c.ReconnectBase
	}

	def := DefaultClientConfig()
	if c.PingTimeout <= 0 {
		c.PingTimeout = def.PingTimeout
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = def.WriteTimeout
	}
	if c.BufferSize <= 0 {
		c.BufferSize = def.BufferSize
	}
	return c
}
