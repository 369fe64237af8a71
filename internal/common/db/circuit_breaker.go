package db

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	commonerrors "github.com/yaddak/yaddak/internal/common/errors"
	"github.com/yaddak/yaddak/internal/common/logger"
	"github.com/yaddak/yaddak/internal/observability/metrics"
)

// DBCircuitBreaker rejects calls while the database keeps failing with
// availability errors. Not-found and conflict results do not count.
type DBCircuitBreaker struct {
	failures    atomic.Int32
	lastFailure atomic.Value
	threshold   int32
	timeout     time.Duration
	resetAfter  time.Duration
	log         *logger.Logger
}

func NewDBCircuitBreaker(threshold int32, timeout, resetAfter time.Duration, log *logger.Logger) *DBCircuitBreaker {
	cb := &DBCircuitBreaker{
		threshold:  threshold,
		timeout:    timeout,
		resetAfter: resetAfter,
		log:        log,
	}
	cb.lastFailure.Store(time.Time{})
	return cb
}

func (cb *DBCircuitBreaker) isOpen() bool {
	if cb.failures.Load() < cb.threshold {
		metrics.CircuitBreakerState.WithLabelValues("database").Set(0)
		return false
	}

	lastFailure := cb.lastFailure.Load().(time.Time)
	if lastFailure.IsZero() {
		metrics.CircuitBreakerState.WithLabelValues("database").Set(0)
		return false
	}

	if time.Since(lastFailure) > cb.resetAfter {
		cb.reset()
		metrics.CircuitBreakerState.WithLabelValues("database").Set(0)
		return false
	}

	metrics.CircuitBreakerState.WithLabelValues("database").Set(1)
	return true
}

func (cb *DBCircuitBreaker) recordFailure() {
	cb.failures.Add(1)
	cb.lastFailure.Store(time.Now())
	metrics.CircuitBreakerFailures.WithLabelValues("database").Inc()
	cb.log.Warn("database circuit breaker: failure recorded")
}

func (cb *DBCircuitBreaker) reset() {
	cb.failures.Store(0)
	cb.lastFailure.Store(time.Time{})
}

func (cb *DBCircuitBreaker) Call(ctx context.Context, fn func(context.Context) error) error {
	if cb == nil {
		return fn(ctx)
	}

	if cb.isOpen() {
		cb.log.Warn("database circuit breaker: circuit is open, rejecting request")
		return commonerrors.ErrUnavailable.WithCause(commonerrors.ErrCircuitOpen)
	}

	callCtx := ctx
	if cb.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, cb.timeout)
		defer cancel()
	}

	err := fn(callCtx)
	if err != nil {
		if errors.Is(Classify(err), commonerrors.ErrUnavailable) {
			cb.recordFailure()
		}
		return err
	}

	cb.reset()
	return nil
}
