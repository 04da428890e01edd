// Package feed implements the upstream side of the relay.
//
// The feed:
//   - Holds one WebSocket stream per configured instrument
//   - Decodes 24hr ticker events into price points
//   - Writes each point to the shared table and the event queue
//   - Reconnects forever with exponential backoff, per stream
//
// Streams are independent. One instrument's connection failing never
// touches another's.
package feed
