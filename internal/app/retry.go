package app

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/samvad-hq/samvad-items-client/internal/config"
	"github.com/samvad-hq/samvad-items-client/internal/logger"
	"github.com/samvad-hq/samvad-items-client/pkg/items"
)

// RetryPolicy bounds how often a failed request is re-issued.
type RetryPolicy struct {
	MaxAttempts     int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func retryPolicyFromConfig(cfg *config.Config) RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     cfg.RetryMaxAttempts,
		InitialInterval: cfg.RetryInitialInterval,
		MaxInterval:     cfg.RetryMaxInterval,
	}
}

// Do runs fn until it succeeds, fails permanently, or attempts run out.
func (p RetryPolicy) Do(ctx context.Context, op string, log logger.Logger, fn func() error) error {
	if p.MaxAttempts <= 1 {
		return fn()
	}

	exp := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		exp.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		exp.MaxInterval = p.MaxInterval
	}
	exp.Multiplier = 2
	exp.MaxElapsedTime = 0
	exp.Reset()

	b := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(p.MaxAttempts-1)), ctx)

	attempt := 0
	return backoff.RetryNotify(func() error {
		attempt++
		err := fn()
		if err != nil && !isRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, b, func(err error, wait time.Duration) {
		log.WarnObj("request failed; retrying", "retry", map[string]any{
			"op":      op,
			"attempt": attempt,
			"wait_ms": wait.Milliseconds(),
			"error":   err.Error(),
		})
	})
}

// isRetryable treats transport failures and transient statuses as worth
// another attempt. Encoding, decoding and client errors are final.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var rf *items.RequestFailedError
	if errors.As(err, &rf) {
		return rf.Retryable()
	}
	var de *items.DecodeError
	if errors.As(err, &de) {
		return false
	}
	var ee *items.EncodeError
	return !errors.As(err, &ee)
}
