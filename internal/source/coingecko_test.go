package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestNewCoinGecko_Defaults(t *testing.T) {
	c := NewCoinGecko(CoinGeckoConfig{}, nil)

	if c.baseURL != "https://api.coingecko.com/api/v3" {
		t.Errorf("baseURL = %q, want public API default", c.baseURL)
	}
	if c.httpClient.Timeout != 4*time.Second {
		t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 4*time.Second)
	}
	if c.logger == nil {
		t.Error("logger should not be nil")
	}
}

func TestCoinGecko_Known(t *testing.T) {
	c := NewCoinGecko(CoinGeckoConfig{}, nil)

	if !c.Known("BTCUSDT") {
		t.Error("Known(BTCUSDT) = false, want true")
	}
	if !c.Known("  ethusdt ") {
		t.Error("Known should normalize before the lookup")
	}
	if c.Known("UNMAPPED") {
		t.Error("Known(UNMAPPED) = true, want false")
	}
}

func TestCoinGecko_FetchBatch(t *testing.T) {
	t.Run("successful batch", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			q := r.URL.Query()
			if q.Get("ids") != "bitcoin,ethereum" {
				t.Errorf("ids = %q, want %q", q.Get("ids"), "bitcoin,ethereum")
			}
			if q.Get("vs_currencies") != "usd" {
				t.Errorf("vs_currencies = %q, want %q", q.Get("vs_currencies"), "usd")
			}
			if q.Get("include_24hr_change") != "true" {
				t.Errorf("include_24hr_change = %q, want %q", q.Get("include_24hr_change"), "true")
			}
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{
				"bitcoin": {"usd": 65000.5, "usd_24h_change": 1.23456, "last_updated_at": 1756100000},
				"ethereum": {"usd": 3200, "usd_24h_change": -0.5, "last_updated_at": 1756100000}
			}`))
		}))
		defer server.Close()

		c := NewCoinGecko(CoinGeckoConfig{BaseURL: server.URL, RateLimit: 100}, nil)
		points, att, err := c.FetchBatch(context.Background(), []string{"btcusdt", "ETHUSDT"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(points) != 2 {
			t.Fatalf("len(points) = %d, want 2", len(points))
		}
		btc := points["BTCUSDT"]
		if btc.LastPrice != "65000.5" {
			t.Errorf("BTC LastPrice = %q, want %q", btc.LastPrice, "65000.5")
		}
		if btc.ChangePct == nil || *btc.ChangePct != "1.2346" {
			t.Errorf("BTC ChangePct = %v, want 1.2346", btc.ChangePct)
		}
		if btc.Timestamp != 1756100000*1000 {
			t.Errorf("BTC Timestamp = %d, want %d", btc.Timestamp, int64(1756100000*1000))
		}
		eth := points["ETHUSDT"]
		if eth.LastPrice != "3200" {
			t.Errorf("ETH LastPrice = %q, want %q", eth.LastPrice, "3200")
		}

		if att.Source != SourceCoinGecko {
			t.Errorf("attempt Source = %q, want %q", att.Source, SourceCoinGecko)
		}
		if att.Status != http.StatusOK {
			t.Errorf("attempt Status = %d, want %d", att.Status, http.StatusOK)
		}
		if att.Error != "" {
			t.Errorf("attempt Error = %q, want empty", att.Error)
		}
	})

	t.Run("api key header", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if got := r.Header.Get("X-Cg-Demo-Api-Key"); got != "demo-key" {
				t.Errorf("api key header = %q, want %q", got, "demo-key")
			}
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		c := NewCoinGecko(CoinGeckoConfig{BaseURL: server.URL, APIKey: "demo-key", RateLimit: 100}, nil)
		if _, _, err := c.FetchBatch(context.Background(), []string{"btcusdt"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("unmapped symbols are skipped", func(t *testing.T) {
		var called bool
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			w.Write([]byte(`{}`))
		}))
		defer server.Close()

		c := NewCoinGecko(CoinGeckoConfig{BaseURL: server.URL, RateLimit: 100}, nil)
		points, att, err := c.FetchBatch(context.Background(), []string{"UNMAPPED"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if called {
			t.Error("no request should be made when nothing is mapped")
		}
		if len(points) != 0 {
			t.Errorf("len(points) = %d, want 0", len(points))
		}
		if att.Source != SourceCoinGecko {
			t.Errorf("attempt Source = %q, want %q", att.Source, SourceCoinGecko)
		}
	})

	t.Run("missing usd field is omitted", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"bitcoin": {"last_updated_at": 1756100000}}`))
		}))
		defer server.Close()

		c := NewCoinGecko(CoinGeckoConfig{BaseURL: server.URL, RateLimit: 100}, nil)
		points, _, err := c.FetchBatch(context.Background(), []string{"btcusdt"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(points) != 0 {
			t.Errorf("len(points) = %d, want 0", len(points))
		}
	})

	t.Run("http error recorded in attempt", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"status": {"error_code": 429}}`))
		}))
		defer server.Close()

		c := NewCoinGecko(CoinGeckoConfig{BaseURL: server.URL, RateLimit: 100}, nil)
		_, att, err := c.FetchBatch(context.Background(), []string{"btcusdt"})
		if err == nil {
			t.Fatal("expected error for 429 response")
		}

		var apiErr *APIError
		if !errors.As(err, &apiErr) {
			t.Fatalf("error type = %T, want *APIError", err)
		}
		if apiErr.StatusCode != http.StatusTooManyRequests {
			t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, http.StatusTooManyRequests)
		}
		if att.Status != http.StatusTooManyRequests {
			t.Errorf("attempt Status = %d, want %d", att.Status, http.StatusTooManyRequests)
		}
		if att.Error == "" {
			t.Error("attempt Error should be recorded")
		}
		if !strings.Contains(att.Body, "429") {
			t.Errorf("attempt Body = %q, should keep the response body", att.Body)
		}
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`not json`))
		}))
		defer server.Close()

		c := NewCoinGecko(CoinGeckoConfig{BaseURL: server.URL, RateLimit: 100}, nil)
		_, att, err := c.FetchBatch(context.Background(), []string{"btcusdt"})
		if err == nil {
			t.Fatal("expected decode error")
		}
		if !strings.Contains(att.Error, "decode response") {
			t.Errorf("attempt Error = %q, want decode failure", att.Error)
		}
	})

	t.Run("breaker opens after repeated failures", func(t *testing.T) {
		var requests int
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests++
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		c := NewCoinGecko(CoinGeckoConfig{BaseURL: server.URL, RateLimit: 1000}, nil)
		for i := 0; i < 15; i++ {
			c.FetchBatch(context.Background(), []string{"btcusdt"})
		}

		if requests >= 15 {
			t.Errorf("requests = %d, breaker should have stopped some calls", requests)
		}

		_, att, err := c.FetchBatch(context.Background(), []string{"btcusdt"})
		if err == nil {
			t.Fatal("expected error while breaker is open")
		}
		if att.Error == "" {
			t.Error("attempt should record the breaker refusal")
		}
		if att.Status != 0 {
			t.Errorf("attempt Status = %d, want 0 for a refused call", att.Status)
		}
	})
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("x", bodyLimit+100)
	got := truncate([]byte(long))
	if len(got) != bodyLimit+3 {
		t.Errorf("len = %d, want %d", len(got), bodyLimit+3)
	}
	if !strings.HasSuffix(got, "...") {
		t.Error("truncated body should end with ellipsis")
	}

	short := "short body"
	if truncate([]byte(short)) != short {
		t.Errorf("truncate(%q) should be unchanged", short)
	}
}
