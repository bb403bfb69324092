// Package retry provides backoff computation and permanent-error marking
// for the realtime reconnect loop.
package retry

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"
)

// Policy controls the delay between reconnection attempts.
//
// The default policy is a fixed delay (Factor 1), matching the behavior
// the backend was tuned against; exponential growth and jitter are
// available by configuration for deployments that want them.
type Policy struct {
	// Initial is the delay after the first failure.
	Initial time.Duration
	// Max caps the delay between attempts.
	Max time.Duration
	// Factor is the multiplier applied per attempt. 1 keeps the delay fixed.
	Factor float64
	// Jitter randomizes each delay into [0.5, 1.5) of its computed value.
	Jitter bool
}

// Fixed returns a policy that waits the same delay before every attempt.
func Fixed(delay time.Duration) Policy {
	return Policy{Initial: delay, Max: delay, Factor: 1}
}

// Exponential returns a jittered doubling policy bounded by max.
func Exponential(initial, max time.Duration) Policy {
	return Policy{Initial: initial, Max: max, Factor: 2, Jitter: true}
}

// Delay computes the delay before the given attempt (1-based).
func (p Policy) Delay(attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}
	initial := p.Initial
	if initial <= 0 {
		initial = 5 * time.Second
	}
	max := p.Max
	if max <= 0 {
		max = initial
	}
	factor := p.Factor
	if factor <= 0 {
		factor = 1
	}

	d := float64(initial) * math.Pow(factor, float64(attempt-1))
	if d > float64(max) {
		d = float64(max)
	}
	if p.Jitter {
		d *= 0.5 + rand.Float64() // #nosec G404 -- jitter needs no crypto randomness
	}
	return time.Duration(d)
}

// Wait sleeps for the attempt's delay or returns early when the context
// is done. It returns ctx.Err() on cancellation, nil otherwise.
func (p Policy) Wait(ctx context.Context, attempt int) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(p.Delay(attempt)):
		return nil
	}
}

// PermanentError marks an error that must not trigger another attempt.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so IsPermanent reports true for it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err (or anything it wraps) was marked permanent.
func IsPermanent(err error) bool {
	var p *PermanentError
	return errors.As(err, &p)
}
