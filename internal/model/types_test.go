package model

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestNormalizeSymbol(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercase", "btcusdt", "BTCUSDT"},
		{"already canonical", "ETHUSDT", "ETHUSDT"},
		{"mixed case", "SolUsdt", "SOLUSDT"},
		{"surrounding whitespace", "  btcusdt\n", "BTCUSDT"},
		{"empty", "", ""},
		{"whitespace only", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeSymbol(tt.input); got != tt.want {
				t.Errorf("NormalizeSymbol(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestPricePoint_JSONShape(t *testing.T) {
	p := PricePoint{
		Symbol:    "BTCUSDT",
		LastPrice: "16850.00",
		ChangePct: Pct("-2.50"),
		Timestamp: 1672515782136,
	}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	for _, key := range []string{`"symbol"`, `"last_price"`, `"change_pct"`, `"timestamp"`} {
		if !strings.Contains(string(data), key) {
			t.Errorf("marshaled payload missing %s: %s", key, data)
		}
	}
	if !strings.Contains(string(data), `"last_price":"16850.00"`) {
		t.Errorf("last_price should stay a string: %s", data)
	}
}

func TestPricePoint_ChangePctOmittedWhenNil(t *testing.T) {
	p := PricePoint{
		Symbol:    "ETHUSDT",
		LastPrice: "1200.10",
		Timestamp: 1672515782136,
	}

	data, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	if strings.Contains(string(data), "change_pct") {
		t.Errorf("nil ChangePct should be omitted: %s", data)
	}
}
