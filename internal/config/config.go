package config

import (
	"log/slog"
	"strings"
	"time"
)

// RelayConfig is the root configuration for a relay instance.
type RelayConfig struct {
	Server   ServerConfig   `yaml:"server"`
	Feed     FeedConfig     `yaml:"feed"`
	Resolver ResolverConfig `yaml:"resolver"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds the HTTP/WebSocket listener settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	WriteTimeout    time.Duration `yaml:"write_timeout"` // per-subscriber send deadline
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// FeedConfig holds the upstream stream settings.
type FeedConfig struct {
	URL           string        `yaml:"url"`
	Symbols       []string      `yaml:"symbols"` // stream names, lowercase (e.g. btcusdt)
	ReconnectBase time.Duration `yaml:"reconnect_base"`
	ReconnectMax  time.Duration `yaml:"reconnect_max"`
	PingTimeout   time.Duration `yaml:"ping_timeout"`
	WriteTimeout  time.Duration `yaml:"write_timeout"`
	BufferSize    int           `yaml:"buffer_size"`
}

// ResolverConfig holds the price-resolver settings.
type ResolverConfig struct {
	CacheTTL       time.Duration   `yaml:"cache_ttl"`
	DefaultSymbols []string        `yaml:"default_symbols"` // empty = feed symbols
	Primary        PrimaryConfig   `yaml:"primary"`
	Secondary      SecondaryConfig `yaml:"secondary"`
}

// PrimaryConfig holds the batch lookup source settings.
type PrimaryConfig struct {
	URL       string        `yaml:"url"`
	Timeout   time.Duration `yaml:"timeout"`
	APIKey    string        `yaml:"api_key"` // optional demo API key
	RetryWait time.Duration `yaml:"retry_wait"`
	RateLimit int           `yaml:"rate_limit"` // requests per second
}

// SecondaryConfig holds the per-symbol lookup source settings.
type SecondaryConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Path string `yaml:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// SlogLevel maps the configured level name to a slog level. Unknown names
// fall back to info.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
