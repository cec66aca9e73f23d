// Package backoff provides reconnection delay policies for the session
// connection manager.
package backoff

import (
	"math/rand"
	"time"
)

// Policy yields the delay before reconnection attempt number attempt
// (starting at 1). Returning ok=false tells the caller to give up.
type Policy interface {
	Next(attempt int) (delay time.Duration, ok bool)
}

// Constant retries forever with a fixed delay. This mirrors the original
// dashboard behaviour of one retry per second with no cap.
type Constant time.Duration

// Next implements Policy.
func (c Constant) Next(int) (time.Duration, bool) {
	return time.Duration(c), true
}

// Exponential doubles the delay per attempt up to Max.
type Exponential struct {
	Base time.Duration
	Max  time.Duration
}

// Next implements Policy.
func (e Exponential) Next(attempt int) (time.Duration, bool) {
	if attempt < 1 {
		attempt = 1
	}

	delay := e.Base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if e.Max > 0 && delay >= e.Max {
			return e.Max, true
		}
	}
	if e.Max > 0 && delay > e.Max {
		delay = e.Max
	}
	return delay, true
}

// WithMaxAttempts stops retrying once attempts exceed limit.
func WithMaxAttempts(p Policy, limit int) Policy {
	return maxAttempts{inner: p, limit: limit}
}

type maxAttempts struct {
	inner Policy
	limit int
}

func (m maxAttempts) Next(attempt int) (time.Duration, bool) {
	if m.limit > 0 && attempt > m.limit {
		return 0, false
	}
	return m.inner.Next(attempt)
}

// WithJitter spreads delays by up to fraction (0..1) of the base delay to
// avoid reconnect stampedes when a server restarts.
func WithJitter(p Policy, fraction float64) Policy {
	if fraction < 0 {
		fraction = 0
	}
	if fraction > 1 {
		fraction = 1
	}
	return jitter{inner: p, fraction: fraction}
}

type jitter struct {
	inner    Policy
	fraction float64
}

func (j jitter) Next(attempt int) (time.Duration, bool) {
	delay, ok := j.inner.Next(attempt)
	if !ok || j.fraction == 0 {
		return delay, ok
	}

	spread := float64(delay) * j.fraction
	offset := (rand.Float64()*2 - 1) * spread
	adjusted := time.Duration(float64(delay) + offset)
	if adjusted < 0 {
		adjusted = 0
	}
	return adjusted, true
}
