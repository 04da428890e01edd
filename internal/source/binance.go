package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"

	"github.com/pricestream/relay/internal/model"
)

// BinanceRESTConfig configures the per-symbol fallback source.
type BinanceRESTConfig struct {
	BaseURL string
	Timeout time.Duration
}

// BinanceREST fetches a single symbol's 24h ticker from the Binance REST
// API. It backs up the batch source, so its timeout is kept short.
type BinanceREST struct {
	baseURL    string
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
	logger     *slog.Logger
}

// NewBinanceREST creates a BinanceREST client. Zero config fields fall back
// to the public API defaults.
func NewBinanceREST(cfg BinanceRESTConfig, logger *slog.Logger) *BinanceREST {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.binance.com/api/v3"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &BinanceREST{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    newBreaker(SourceBinance),
		logger:     logger,
	}
}

type ticker24h struct {
	Symbol             string `json:"symbol"`
	LastPrice          string `json:"lastPrice"`
	PriceChangePercent string `json:"priceChangePercent"`
	CloseTime          int64  `json:"closeTime"`
}

// FetchSymbol resolves one symbol via the 24hr ticker endpoint.
func (b *BinanceREST) FetchSymbol(ctx context.Context, symbol string) (*model.PricePoint, Attempt, error) {
	sym := model.NormalizeSymbol(symbol)

	query := url.Values{}
	query.Set("symbol", sym)
	fullURL := b.baseURL + "/ticker/24hr?" + query.Encode()

	var att Attempt
	res, err := b.breaker.Execute(func() (interface{}, error) {
		body, a, err := doGet(ctx, b.httpClient, SourceBinance, fullURL, nil)
		att = a
		if err != nil {
			return nil, err
		}
		return body, nil
	})
	if err != nil {
		if att.Source == "" {
			att = Attempt{Source: SourceBinance, URL: fullURL, Error: err.Error()}
		}
		return nil, att, err
	}
	body := res.([]byte)

	var raw ticker24h
	if err := json.Unmarshal(body, &raw); err != nil {
		err = fmt.Errorf("decode response: %w", err)
		att.Error = err.Error()
		return nil, att, err
	}

	price, err := decimal.NewFromString(raw.LastPrice)
	if err != nil {
		err = fmt.Errorf("parse lastPrice %q: %w", raw.LastPrice, err)
		att.Error = err.Error()
		return nil, att, err
	}

	pt := &model.PricePoint{
		Symbol:    sym,
		LastPrice: price.String(),
	}
	if raw.PriceChangePercent != "" {
		if pct, err := decimal.NewFromString(raw.PriceChangePercent); err == nil {
			pt.ChangePct = model.Pct(pct.String())
		}
	}
	if raw.CloseTime > 0 {
		pt.Timestamp = raw.CloseTime
	} else {
		pt.Timestamp = model.NowMillis()
	}

	return pt, att, nil
}
