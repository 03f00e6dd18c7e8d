package main

import "time"

// tickLimiter paces the loop to a fixed tick rate.
type tickLimiter struct {
	target time.Duration
	next   time.Time
}

// newTickLimiter returns a limiter for rate ticks per second. A rate of zero
// or less never waits.
func newTickLimiter(rate int) *tickLimiter {
	if rate <= 0 {
		return &tickLimiter{}
	}
	return &tickLimiter{target: time.Second / time.Duration(rate)}
}

// Wait blocks until the next tick is due. Sleeps cover all but the last
// 200µs, which are spun for precision.
func (l *tickLimiter) Wait() {
	if l.target <= 0 {
		return
	}
	if l.next.IsZero() {
		l.next = time.Now().Add(l.target)
	} else {
		l.next = l.next.Add(l.target)
	}

	for {
		remaining := time.Until(l.next)
		if remaining <= 0 {
			break
		}
		if remaining > 200*time.Microsecond {
			time.Sleep(remaining - 200*time.Microsecond)
		}
	}

	// after a hitch, resync instead of bursting to catch up
	if late := -time.Until(l.next); late > l.target {
		l.next = time.Now().Add(l.target)
	}
}
