// Package retry wraps network-dependent operations with bounded exponential
// backoff. The delay before attempt n+1 is BaseDelay × 2^(n-1), without jitter.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

// ErrInvalidAttempts is returned without calling the operation when a policy
// allows zero attempts.
var ErrInvalidAttempts = errors.New("retry: max attempts must be at least 1")

// Policy holds the attempt budget for one logical operation.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultPolicy is three attempts with 3s, then 6s between them.
func DefaultPolicy() Policy {
	return Policy{MaxAttempts: 3, BaseDelay: 3 * time.Second}
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.BaseDelay
	exp.RandomizationFactor = 0
	exp.Multiplier = 2
	exp.MaxInterval = time.Duration(math.MaxInt64)
	exp.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(exp, uint64(p.MaxAttempts-1)), ctx)
}

// Do calls op until it succeeds or the policy's attempts are exhausted. The
// final error names label and the number of attempts made. op may run several
// times, so any partial side effect of a failed attempt must be safe to redo.
func Do[T any](ctx context.Context, p Policy, label string, op func() (T, error)) (T, error) {
	var zero T
	if p.MaxAttempts < 1 {
		return zero, fmt.Errorf("%s: %w", label, ErrInvalidAttempts)
	}

	attempt := 0
	wrapped := func() (T, error) {
		attempt++
		v, err := op()
		if err == nil && attempt > 1 {
			log.WithField("attempt", attempt).Infof("%s succeeded after retry", label)
		}
		return v, err
	}
	notify := func(err error, next time.Duration) {
		log.WithFields(log.Fields{
			"attempt": attempt,
			"max":     p.MaxAttempts,
			"delay":   next,
		}).Warnf("%s failed, retrying: %v", label, err)
	}

	v, err := backoff.RetryNotifyWithData(wrapped, p.backOff(ctx), notify)
	if err == nil {
		return v, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
		return zero, fmt.Errorf("%s cancelled after %d attempts: %w", label, attempt, err)
	}
	log.WithField("attempts", attempt).Errorf("%s failed permanently", label)
	return zero, fmt.Errorf("%s failed after %d attempts: %w", label, attempt, err)
}

// Run is Do for operations without a result value.
func Run(ctx context.Context, p Policy, label string, op func() error) error {
	_, err := Do(ctx, p, label, func() (struct{}, error) {
		return struct{}{}, op()
	})
	return err
}
