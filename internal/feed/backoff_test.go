package feed

import (
	"testing"
	"time"
)

func TestBackoff_Sequence(t *testing.T) {
	bo := newBackoff(time.Second, 30*time.Second)

	want := []time.Duration{
		1 * time.Second,
		2 * time.Second,
		4 * time.Second,
		8 * time.Second,
		16 * time.Second,
		30 * time.Second,
		30 * time.Second,
	}
	for i, w := range want {
		if got := bo.next(); got != w {
			t.Errorf("wait %d = %v, want %v", i+1, got, w)
		}
	}
}

func TestBackoff_Reset(t *testing.T) {
	bo := newBackoff(time.Second, 30*time.Second)

	bo.next()
	bo.next()
	bo.next()
	bo.reset()

	if got := bo.next(); got != time.Second {
		t.Errorf("wait after reset = %v, want %v", got, time.Second)
	}
	if got := bo.next(); got != 2*time.Second {
		t.Errorf("second wait after reset = %v, want %v", got, 2*time.Second)
	}
}

func TestBackoff_CeilingBelowFloor(t *testing.T) {
	bo := newBackoff(10*time.Second, 5*time.Second)

	if got := bo.next(); got != 10*time.Second {
		t.Errorf("first wait = %v, want the floor", got)
	}
	if got := bo.next(); got != 10*time.Second {
		t.Errorf("second wait = %v, want capped at the floor", got)
	}
}

func TestBackoff_ZeroFloor(t *testing.T) {
	bo := newBackoff(0, 30*time.Second)

	if got := bo.next(); got != time.Second {
		t.Errorf("first wait = %v, want %v", got, time.Second)
	}
}
