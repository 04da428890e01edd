// Package source implements the external price sources used when the live
// table cannot answer a symbol:
//
//   - CoinGecko: batch resolution over the simple price endpoint, rate
//     limited, for symbols with a known coin mapping
//   - BinanceREST: per-symbol fallback over the 24hr ticker endpoint with a
//     shorter timeout
//
// Both sources run behind independent circuit breakers and record an Attempt
// per round trip for the resolver's diagnostics.
package source
