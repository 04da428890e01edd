package feed

import "time"

// backoff produces the reconnect wait sequence: the floor first, doubling
// after every failure, capped at the ceiling. reset returns it to the floor.
type backoff struct {
	floor time.Duration
	ceil  time.Duration
	cur   time.Duration
}

func newBackoff(floor, ceil time.Duration) *backoff {
	if floor <= 0 {
		floor = time.Second
	}
	if ceil < floor {
		ceil = floor
	}
	return &backoff{floor: floor, ceil: ceil, cur: floor}
}

func (b *backoff) next() time.Duration {
	d := b.cur
	b.cur *= 2
	if b.cur > b.ceil {
		b.cur = b.ceil
	}
	return d
}

func (b *backoff) reset() {
	b.cur = b.floor
}
