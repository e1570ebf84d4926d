package news

import (
	"context"
	"math/rand"
	"time"
)

// BackoffPolicy bounds the fetch retry loop: at most MaxAttempts HTTP
// attempts, with a uniformly jittered sleep in [MinDelay, MaxDelay] between
// transient failures. Float64 and Sleep are injectable for tests.
type BackoffPolicy struct {
	MaxAttempts int
	MinDelay    time.Duration
	MaxDelay    time.Duration
	Float64     func() float64
	Sleep       Sleeper
}

// DefaultBackoffPolicy matches the pipeline contract: 4 attempts, 1-2 s
// jittered waits.
func DefaultBackoffPolicy() BackoffPolicy {
	return BackoffPolicy{
		MaxAttempts: 4,
		MinDelay:    time.Second,
		MaxDelay:    2 * time.Second,
	}
}

// Attempts returns the retry ceiling, never less than 1.
func (p BackoffPolicy) Attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Delay returns one jittered backoff duration.
func (p BackoffPolicy) Delay() time.Duration {
	if p.MaxDelay <= p.MinDelay {
		return p.MinDelay
	}
	f := p.Float64
	if f == nil {
		f = rand.Float64
	}
	spread := float64(p.MaxDelay - p.MinDelay)
	return p.MinDelay + time.Duration(f()*spread)
}

// Wait sleeps one backoff interval, honoring context cancellation.
func (p BackoffPolicy) Wait(ctx context.Context) {
	sleep := p.Sleep
	if sleep == nil {
		sleep = SleepContext
	}
	sleep(ctx, p.Delay())
}
