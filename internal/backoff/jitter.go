package backoff

import (
	"math/rand"
	"time"
)

// JitterType selects how NewJitterFunc spreads a computed interval.
type JitterType int

const (
	// NoJitter returns the interval unchanged.
	NoJitter JitterType = iota
	// FullJitter returns a random duration in [0, interval].
	FullJitter
	// Jitter returns a random duration in [interval/2, interval*1.5].
	Jitter
)

// NewJitterFunc returns a function applying jt to any interval. Zero
// and negative intervals always jitter to zero.
func NewJitterFunc(jt JitterType) func(time.Duration) time.Duration {
	return func(interval time.Duration) time.Duration {
		if interval <= 0 {
			return 0
		}
		switch jt {
		case FullJitter:
			return time.Duration(rand.Int63n(int64(interval) + 1))
		case Jitter:
			half := int64(interval) / 2
			return time.Duration(half + rand.Int63n(int64(interval)))
		default:
			return interval
		}
	}
}

// WithJitter wraps policy so every computed interval is passed through
// jt before being returned, leaving retry-exhaustion errors untouched.
func WithJitter(policy RetryPolicy, jt JitterType) RetryPolicy {
	return &jitteredPolicy{policy: policy, jitter: NewJitterFunc(jt)}
}

type jitteredPolicy struct {
	policy RetryPolicy
	jitter func(time.Duration) time.Duration
}

func (p *jitteredPolicy) ComputeNextInterval(retryCount int, elapsedTime time.Duration, err error) (time.Duration, error) {
	interval, computeErr := p.policy.ComputeNextInterval(retryCount, elapsedTime, err)
	if computeErr != nil {
		return 0, computeErr
	}
	return p.jitter(interval), nil
}
