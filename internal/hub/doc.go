// Package hub implements the downstream side of the relay.
//
// The Hub owns the subscriber set. Broadcast snapshots the set under its
// lock and sends outside it, dropping any subscriber whose send fails. The
// Broadcaster is the single consumer of the event queue and feeds every
// dequeued price point into the hub, preserving queue order.
package hub
