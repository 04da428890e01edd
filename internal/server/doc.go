// Package server exposes the relay over HTTP.
//
// Endpoints:
//   - GET /          service banner
//   - GET /price     resolved prices for the requested symbols
//   - GET /ws        live price feed, table snapshot first
//   - GET /healthz   component health
//   - GET /debug/resolve   resolver trace for the default symbols
//   - GET /metrics   Prometheus exposition
//
// A recover middleware keeps a panicking handler from taking the process
// down.
package server
