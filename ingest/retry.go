package ingest

import (
	"context"
	"errors"
	"time"

	"search-gateway/domain"

	"github.com/cenkalti/backoff/v5"
)

const (
	DefaultMaxAttempts uint = 3
	DefaultRetryDelay       = 30 * time.Second
)

// RetryPolicy retries transient failures a fixed number of times with a
// constant delay between attempts.
type RetryPolicy struct {
	MaxAttempts uint
	Delay       time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: DefaultMaxAttempts, Delay: DefaultRetryDelay}
}

// RetryNotify is called after a failed attempt that will be retried.
type RetryNotify func(attempt uint, err error, next time.Duration)

// Run calls op until it succeeds, fails permanently or the attempts are
// exhausted. Only errors for which domain.IsTransient holds are retried.
// It returns the number of attempts made and the last error.
func (p RetryPolicy) Run(ctx context.Context, op func(ctx context.Context) error, notify RetryNotify) (uint, error) {
	maxAttempts := p.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = DefaultMaxAttempts
	}
	delay := p.Delay
	if delay < 0 {
		delay = 0
	}

	var attempt uint
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		err := op(ctx)
		if err == nil {
			return struct{}{}, nil
		}
		if !domain.IsTransient(err) {
			return struct{}{}, backoff.Permanent(err)
		}
		return struct{}{}, err
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(delay)),
		backoff.WithMaxTries(maxAttempts),
		backoff.WithNotify(func(err error, next time.Duration) {
			if notify != nil {
				notify(attempt, err, next)
			}
		}),
	)

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Err
	}
	return attempt, err
}
