// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Feed event, parse-error and reconnect rates per stream
//   - Broadcast throughput and subscriber send failures
//   - Current subscriber count
//   - Resolver lookups by source and unresolved symbols
package metrics
