package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/rs/zerolog"

	"github.com/nurpe/contracts-service/internal/repository"
)

type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// runUnitOfWork runs op until it succeeds, fails permanently, or runs out of
// attempts. Only transient storage failures are retried, and every attempt
// starts from scratch.
func runUnitOfWork[T any](
	ctx context.Context,
	policy RetryPolicy,
	log zerolog.Logger,
	name string,
	op func() (T, error),
) (T, error) {
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	b := backoff.NewExponentialBackOff()
	if policy.BaseDelay > 0 {
		b.InitialInterval = policy.BaseDelay
	}

	attempt := 0
	result, err := backoff.Retry(ctx, func() (T, error) {
		attempt++
		res, err := op()
		if err == nil {
			return res, nil
		}
		if !repository.IsTransient(err) {
			return res, backoff.Permanent(err)
		}
		log.Warn().Err(err).Str("operation", name).Int("attempt", attempt).Msg("transient storage failure")
		return res, err
	}, backoff.WithBackOff(b), backoff.WithMaxTries(uint(attempts)))
	if err == nil {
		return result, nil
	}

	var permanent *backoff.PermanentError
	if errors.As(err, &permanent) {
		err = permanent.Err
	}
	if repository.IsTransient(err) {
		var zero T
		return zero, fmt.Errorf("%w: %s: %v", ErrTransient, name, err)
	}
	return result, err
}
