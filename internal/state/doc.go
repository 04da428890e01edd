// Package state holds the in-memory state shared between the feed side and
// the serving side of the relay:
//   - Table: most recent PricePoint per instrument
//   - Queue: unbounded FIFO between the feed listeners and the broadcaster
//
// A listener's table write and queue send for one event are two separate
// steps; readers may observe the table ahead of the broadcast.
package state
