// Package poll implements bounded polling against asynchronous infrastructure
// state with an injectable clock.
package poll

import (
	"context"
	"errors"
	"time"

	"k8s.io/utils/clock"
)

// ErrExhausted is returned by Retry.Do when every attempt completed without
// the condition being met.
var ErrExhausted = errors.New("retry budget exhausted")

// Condition is evaluated once per attempt. It returns done=true to stop
// early. A non-nil error aborts the retry immediately.
type Condition func(ctx context.Context, attempt int) (done bool, err error)

// Retry runs a Condition up to Attempts times, sleeping Interval between
// consecutive attempts. There is no sleep after the last attempt.
type Retry struct {
	Attempts int
	Interval time.Duration

	// Clock drives the sleeps. Nil means the real clock.
	Clock clock.Clock
}

// Do evaluates cond until it reports done, fails, or the budget runs out.
// It returns the number of attempts made.
func (r Retry) Do(ctx context.Context, cond Condition) (int, error) {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	c := r.Clock
	if c == nil {
		c = clock.RealClock{}
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		done, err := cond(ctx, attempt)
		if err != nil {
			return attempt, err
		}
		if done {
			return attempt, nil
		}
		if attempt == attempts {
			break
		}
		if err := sleep(ctx, c, r.Interval); err != nil {
			return attempt, err
		}
	}
	return attempts, ErrExhausted
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, c clock.Clock, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := c.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C():
		return nil
	}
}
