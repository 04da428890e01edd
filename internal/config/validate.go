package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate checks that all required fields are set and values are valid.
func (c *RelayConfig) Validate() error {
	if c.Server.Addr == "" {
		return errors.New("server.addr is required")
	}

	if c.Feed.URL == "" {
		return errors.New("feed.url is required")
	}
	if len(c.Feed.Symbols) == 0 {
		return errors.New("feed.symbols must list at least one stream")
	}
	for _, s := range c.Feed.Symbols {
		if strings.TrimSpace(s) == "" {
			return errors.New("feed.symbols must not contain empty entries")
		}
	}
	if c.Feed.ReconnectBase <= 0 {
		return errors.New("feed.reconnect_base must be positive")
	}
	if c.Feed.ReconnectMax < c.Feed.ReconnectBase {
		return fmt.Errorf("feed.reconnect_max (%v) must be at least feed.reconnect_base (%v)",
			c.Feed.ReconnectMax, c.Feed.ReconnectBase)
	}
	if c.Feed.BufferSize < 1 {
		return errors.New("feed.buffer_size must be >= 1")
	}

	if c.Resolver.CacheTTL <= 0 {
		return errors.New("resolver.cache_ttl must be positive")
	}
	if c.Resolver.Primary.URL == "" {
		return errors.New("resolver.primary.url is required")
	}
	if c.Resolver.Primary.Timeout <= 0 {
		return errors.New("resolver.primary.timeout must be positive")
	}
	if c.Resolver.Primary.RateLimit < 1 {
		return errors.New("resolver.primary.rate_limit must be >= 1")
	}
	if c.Resolver.Secondary.URL == "" {
		return errors.New("resolver.secondary.url is required")
	}
	if c.Resolver.Secondary.Timeout <= 0 {
		return errors.New("resolver.secondary.timeout must be positive")
	}

	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return fmt.Errorf("metrics.path must start with /, got %q", c.Metrics.Path)
	}

	return nil
}
