// Package backoff implements the exponential-backoff retry a watcher
// uses when its fsnotify queue overflows or drops events: rebuilding
// the whole watch list immediately would risk hammering inotify in a
// tight loop, so each rebuild attempt waits a growing interval first.
package backoff

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"
)

// Inspired by the code from Temporal's retry policy implementation (License: MIT License).
// https://github.com/temporalio/temporal/blob/2a1044994085bffbeeee789cad52ecf2650c501c/common/backoff/retrypolicy.go

var (
	// ErrRetriesExhausted is returned when the maximum number of retries has been reached.
	ErrRetriesExhausted = errors.New("retries exhausted")
	// ErrOperationCanceled is returned when the retry operation is canceled via context.
	ErrOperationCanceled = errors.New("operation canceled")
)

// Retrier paces a sequence of rewatch attempts.
type Retrier interface {
	// Next waits for the next retry interval or returns an error if
	// retries are exhausted. It blocks until the interval has passed
	// or the context is canceled.
	Next(ctx context.Context, err error) error
	// Reset resets the retrier to its initial state, called once a
	// rewatch succeeds.
	Reset()
}

const (
	defaultBackoffFactor = 2.0
	defaultMaxInterval   = 10 * time.Second
)

// ExponentialPolicy grows the retry interval geometrically from
// InitialInterval by BackoffFactor on every attempt, capped at
// MaxInterval. MaxRetries == 0 means unlimited attempts.
type ExponentialPolicy struct {
	InitialInterval time.Duration
	BackoffFactor   float64
	MaxInterval     time.Duration
	MaxRetries      int
}

// NewExponentialPolicy returns an ExponentialPolicy with ekam's default
// growth factor and interval cap, starting from initialInterval.
func NewExponentialPolicy(initialInterval time.Duration) ExponentialPolicy {
	return ExponentialPolicy{
		InitialInterval: initialInterval,
		BackoffFactor:   defaultBackoffFactor,
		MaxInterval:     defaultMaxInterval,
	}
}

// nextInterval computes the interval to wait before the given retry
// attempt, or ErrRetriesExhausted once MaxRetries is reached.
func (p ExponentialPolicy) nextInterval(retryCount int) (time.Duration, error) {
	if p.MaxRetries > 0 && retryCount >= p.MaxRetries {
		return 0, ErrRetriesExhausted
	}

	interval := float64(p.InitialInterval) * math.Pow(p.BackoffFactor, float64(retryCount))
	if interval > float64(p.MaxInterval) {
		interval = float64(p.MaxInterval)
	}

	return time.Duration(interval), nil
}

// NewRetrier returns a Retrier pacing attempts according to policy.
func NewRetrier(policy ExponentialPolicy) Retrier {
	return &retrierImpl{policy: policy}
}

type retrierImpl struct {
	policy     ExponentialPolicy
	retryCount int
	mu         sync.Mutex
}

// Next implements Retrier.
func (r *retrierImpl) Next(ctx context.Context, err error) error {
	r.mu.Lock()
	interval, computeErr := r.policy.nextInterval(r.retryCount)
	if computeErr != nil {
		r.mu.Unlock()
		return computeErr
	}
	r.retryCount++
	r.mu.Unlock()

	timer := time.NewTimer(interval)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ErrOperationCanceled
	}
}

// Reset implements Retrier.
func (r *retrierImpl) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retryCount = 0
}
