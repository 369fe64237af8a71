package db

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/yaddak/yaddak/internal/common/constants"
	"github.com/yaddak/yaddak/internal/common/logger"
)

type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

var DefaultRetryConfig = RetryConfig{
	MaxAttempts:  constants.DBRetryMaxAttempts,
	InitialDelay: constants.DBRetryInitialDelay,
	MaxDelay:     constants.DBRetryMaxDelay,
}

// withDefaults fills unset fields; the exponential backoff rejects a
// non-positive base delay.
func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	if c.InitialDelay <= 0 {
		c.InitialDelay = constants.DBRetryInitialDelay
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = constants.DBRetryMaxDelay
	}
	if c.MaxDelay < c.InitialDelay {
		c.MaxDelay = c.InitialDelay
	}
	return c
}

// RetryWithBackoff runs operation until it succeeds, fails with a
// non-retryable error, or MaxAttempts is reached.
func RetryWithBackoff(ctx context.Context, log *logger.Logger, config RetryConfig, operation func(ctx context.Context) error) error {
	config = config.withDefaults()

	backoff := retry.NewExponential(config.InitialDelay)
	backoff = retry.WithCappedDuration(config.MaxDelay, backoff)
	backoff = retry.WithMaxRetries(uint64(config.MaxAttempts-1), backoff)

	attempt := 0
	exhausted := false
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := operation(ctx)
		if err == nil {
			if attempt > 1 {
				log.Infof("database operation succeeded after %d attempts", attempt)
			}
			return nil
		}

		if !IsRetryable(err) {
			return err
		}

		if attempt == config.MaxAttempts {
			exhausted = true
		} else {
			log.Warnf("database operation failed (attempt %d/%d): %v, retrying", attempt, config.MaxAttempts, err)
		}
		return retry.RetryableError(err)
	})

	if err != nil && exhausted && config.MaxAttempts > 1 {
		return fmt.Errorf("database operation failed after %d attempts: %w", config.MaxAttempts, err)
	}
	return err
}
