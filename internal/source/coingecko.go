package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"go.uber.org/ratelimit"

	"github.com/pricestream/relay/internal/model"
)

// coinIDs maps exchange pair symbols to CoinGecko coin identifiers. Symbols
// without a mapping cannot be served by this source.
var coinIDs = map[string]string{
	"BTCUSDT":  "bitcoin",
	"ETHUSDT":  "ethereum",
	"BNBUSDT":  "binancecoin",
	"SOLUSDT":  "solana",
	"XRPUSDT":  "ripple",
	"ADAUSDT":  "cardano",
	"DOGEUSDT": "dogecoin",
	"DOTUSDT":  "polkadot",
	"LTCUSDT":  "litecoin",
}

// CoinGeckoConfig configures the batch price source.
type CoinGeckoConfig struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	RateLimit int
}

// CoinGecko fetches spot prices in batches from the CoinGecko simple price
// endpoint. Calls are rate limited and guarded by a circuit breaker.
type CoinGecko struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    ratelimit.Limiter
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

// NewCoinGecko creates a CoinGecko client. Zero config fields fall back to
// the public API defaults.
func NewCoinGecko(cfg CoinGeckoConfig, logger *slog.Logger) *CoinGecko {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.coingecko.com/api/v3"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 4 * time.Second
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &CoinGecko{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    ratelimit.New(cfg.RateLimit),
		breaker:    newBreaker(SourceCoinGecko),
		logger:     logger,
	}
}

// Known reports whether the symbol has a CoinGecko mapping.
func (c *CoinGecko) Known(symbol string) bool {
	_, ok := coinIDs[model.NormalizeSymbol(symbol)]
	return ok
}

type simplePriceEntry struct {
	USD           *float64 `json:"usd"`
	USD24hChange  *float64 `json:"usd_24h_change"`
	LastUpdatedAt int64    `json:"last_updated_at"`
}

// FetchBatch resolves every mapped symbol in one request. Unmapped symbols
// are skipped; the result holds only the symbols the source answered for.
func (c *CoinGecko) FetchBatch(ctx context.Context, symbols []string) (map[string]model.PricePoint, Attempt, error) {
	ids := make([]string, 0, len(symbols))
	bySymbol := make(map[string]string, len(symbols))
	for _, s := range symbols {
		sym := model.NormalizeSymbol(s)
		id, ok := coinIDs[sym]
		if !ok {
			continue
		}
		if _, dup := bySymbol[sym]; dup {
			continue
		}
		bySymbol[sym] = id
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, Attempt{Source: SourceCoinGecko}, nil
	}
	sort.Strings(ids)

	query := url.Values{}
	query.Set("ids", strings.Join(ids, ","))
	query.Set("vs_currencies", "usd")
	query.Set("include_24hr_change", "true")
	query.Set("include_last_updated_at", "true")
	fullURL := c.baseURL + "/simple/price?" + query.Encode()

	var extra http.Header
	if c.apiKey != "" {
		extra = http.Header{"X-Cg-Demo-Api-Key": []string{c.apiKey}}
	}

	c.limiter.Take()

	var att Attempt
	res, err := c.breaker.Execute(func() (interface{}, error) {
		body, a, err := doGet(ctx, c.httpClient, SourceCoinGecko, fullURL, extra)
		att = a
		if err != nil {
			return nil, err
		}
		return body, nil
	})
	if err != nil {
		if att.Source == "" {
			// The breaker refused the call, so no round trip happened.
			att = Attempt{Source: SourceCoinGecko, URL: fullURL, Error: err.Error()}
		}
		return nil, att, err
	}
	body := res.([]byte)

	var raw map[string]simplePriceEntry
	if err := json.Unmarshal(body, &raw); err != nil {
		err = fmt.Errorf("decode response: %w", err)
		att.Error = err.Error()
		return nil, att, err
	}

	points := make(map[string]model.PricePoint, len(raw))
	for sym, id := range bySymbol {
		entry, ok := raw[id]
		if !ok || entry.USD == nil {
			continue
		}

		pt := model.PricePoint{
			Symbol:    sym,
			LastPrice: decimal.NewFromFloat(*entry.USD).String(),
		}
		if entry.USD24hChange != nil {
			pt.ChangePct = model.Pct(decimal.NewFromFloat(*entry.USD24hChange).Round(4).String())
		}
		if entry.LastUpdatedAt > 0 {
			pt.Timestamp = entry.LastUpdatedAt * 1000
		} else {
			pt.Timestamp = model.NowMillis()
		}
		points[sym] = pt
	}

	return points, att, nil
}
