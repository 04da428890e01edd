// Package model defines the shared data types of the relay.
//
// Conventions:
//   - Symbols: canonical uppercase (NormalizeSymbol applied at every boundary)
//   - Prices: decimal strings, never binary floats
//   - Timestamps: int64 milliseconds since Unix epoch
package model
