package config

import (
	"time"

	"github.com/pricestream/relay/internal/model"
)

// Default values for optional configuration fields.
const (
	DefaultServerAddr       = ":8000"
	DefaultWriteTimeout     = 5 * time.Second
	DefaultShutdownTimeout  = 10 * time.Second
	DefaultFeedURL          = "wss://stream.binance.com:9443/ws"
	DefaultReconnectBase    = 1 * time.Second
	DefaultReconnectMax     = 30 * time.Second
	DefaultPingTimeout      = 75 * time.Second
	DefaultFeedBufferSize   = 1024
	DefaultCacheTTL         = 5 * time.Second
	DefaultPrimaryURL       = "https://api.coingecko.com/api/v3"
	DefaultPrimaryTimeout   = 4 * time.Second
	DefaultRetryWait        = 500 * time.Millisecond
	DefaultRateLimit        = 1
	DefaultSecondaryURL     = "https://api.binance.com/api/v3"
	DefaultSecondaryTimeout = 2 * time.Second
	DefaultMetricsPath      = "/metrics"
	DefaultLogLevel         = "info"
)

// DefaultFeedSymbols are the streams tracked when none are configured.
var DefaultFeedSymbols = []string{"btcusdt", "ethusdt"}

func (c *RelayConfig) applyDefaults() {
	// Server defaults
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = DefaultWriteTimeout
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Feed defaults
	if c.Feed.URL == "" {
		c.Feed.URL = DefaultFeedURL
	}
	if len(c.Feed.Symbols) == 0 {
		c.Feed.Symbols = append([]string(nil), DefaultFeedSymbols...)
	}
	if c.Feed.ReconnectBase == 0 {
		c.Feed.ReconnectBase = DefaultReconnectBase
	}
	if c.Feed.ReconnectMax == 0 {
		c.Feed.ReconnectMax = DefaultReconnectMax
	}
	if c.Feed.PingTimeout == 0 {
		c.Feed.PingTimeout = DefaultPingTimeout
	}
	if c.Feed.WriteTimeout == 0 {
		c.Feed.WriteTimeout = DefaultWriteTimeout
	}
	if c.Feed.BufferSize == 0 {
		c.Feed.BufferSize = DefaultFeedBufferSize
	}

	// Resolver defaults
	if c.Resolver.CacheTTL == 0 {
		c.Resolver.CacheTTL = DefaultCacheTTL
	}
	if len(c.Resolver.DefaultSymbols) == 0 {
		// Queries with no symbols fall back to the tracked streams.
		for _, s := range c.Feed.Symbols {
			if sym := model.NormalizeSymbol(s); sym != "" {
				c.Resolver.DefaultSymbols = append(c.Resolver.DefaultSymbols, sym)
			}
		}
	}
	if c.Resolver.Primary.URL == "" {
		c.Resolver.Primary.URL = DefaultPrimaryURL
	}
	if c.Resolver.Primary.Timeout == 0 {
		c.Resolver.Primary.Timeout = DefaultPrimaryTimeout
	}
	if c.Resolver.Primary.RetryWait == 0 {
		c.Resolver.Primary.RetryWait = DefaultRetryWait
	}
	if c.Resolver.Primary.RateLimit == 0 {
		c.Resolver.Primary.RateLimit = DefaultRateLimit
	}
	if c.Resolver.Secondary.URL == "" {
		c.Resolver.Secondary.URL = DefaultSecondaryURL
	}
	if c.Resolver.Secondary.Timeout == 0 {
		c.Resolver.Secondary.Timeout = DefaultSecondaryTimeout
	}

	// Metrics defaults
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}
