package reasoner

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/autopaper/autopaper/core"
)

// RetryOptions configures the retry decorator.
type RetryOptions struct {
	// MaxAttempts bounds the total number of Step invocations per call.
	MaxAttempts int

	// InitialBackoff seeds the exponential backoff between attempts.
	InitialBackoff time.Duration
}

// Retrying wraps a Reasoner and retries Step on transient failures. Errors
// classified as retryable (timeouts, network, upstream service faults) are
// retried with exponential backoff; anything else fails immediately. When
// attempts are exhausted the last error is reported as a
// reasoning-unavailable condition so the session can abort cleanly.
type Retrying struct {
	inner Reasoner
	opts  RetryOptions
}

// WithRetry decorates a Reasoner with bounded exponential-backoff retries.
func WithRetry(inner Reasoner, optFns ...func(o *RetryOptions)) *Retrying {
	opts := RetryOptions{
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	return &Retrying{inner: inner, opts: opts}
}

// Step implements Reasoner.
func (r *Retrying) Step(ctx context.Context, turns []core.Turn) (*Output, error) {
	var out *Output

	op := func() error {
		var err error
		out, err = r.inner.Step(ctx, turns)
		if err == nil {
			return nil
		}
		if !core.ClassOf(err).Retryable() {
			return backoff.Permanent(err)
		}
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = r.opts.InitialBackoff
	bo.MaxElapsedTime = 0

	err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(r.opts.MaxAttempts-1)), ctx))
	if err != nil {
		if core.ClassOf(err).Retryable() {
			return nil, core.NewReasoningUnavailable("reasoning step failed after retries", err)
		}
		return nil, err
	}
	return out, nil
}

// Info implements Reasoner.
func (r *Retrying) Info() Info { return r.inner.Info() }
