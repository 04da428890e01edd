// Package resolve answers price lookups through a fixed fallback chain:
//
//  1. the live price table fed by the stream listeners
//  2. a short-TTL cache of earlier external fetches
//  3. the batch source, for symbols it has a mapping for
//  4. the per-symbol fallback source
//
// Partial results are normal. Unresolved symbols are omitted, never
// reported as nulls, and every step's outcome lands in a Trace.
package resolve
