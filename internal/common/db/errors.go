package db

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgerrcode"
	pgx "github.com/jackc/pgx/v4"

	commonerrors "github.com/yaddak/yaddak/internal/common/errors"
	"github.com/yaddak/yaddak/internal/observability/metrics"
)

// Classify maps a driver error onto the storage error taxonomy. Errors that
// are already domain errors pass through unchanged.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if commonerrors.IsDomainError(err) {
		return err
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return commonerrors.ErrNotFound.WithCause(err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgerrcode.IsIntegrityConstraintViolation(pgErr.Code):
			return commonerrors.ErrConflict.WithCause(err)
		case pgerrcode.IsConnectionException(pgErr.Code),
			pgerrcode.IsInsufficientResources(pgErr.Code),
			pgErr.Code == pgerrcode.AdminShutdown,
			pgErr.Code == pgerrcode.CrashShutdown,
			pgErr.Code == pgerrcode.CannotConnectNow:
			return commonerrors.ErrUnavailable.WithCause(err)
		}
		return commonerrors.ErrBackend.WithCause(err)
	}

	if isConnectionFailure(err) {
		return commonerrors.ErrUnavailable.WithCause(err)
	}
	return commonerrors.ErrBackend.WithCause(err)
}

// IsUniqueViolation reports whether err is a unique constraint violation on
// the named constraint; an empty name matches any unique constraint.
func IsUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgerrcode.UniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}

func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return false
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch {
		case pgerrcode.IsConnectionException(pgErr.Code):
			return true
		case pgErr.Code == pgerrcode.SerializationFailure, pgErr.Code == pgerrcode.DeadlockDetected:
			return true
		case pgErr.Code == pgerrcode.LockNotAvailable:
			return true
		}
		return false
	}

	return pgconn.SafeToRetry(err)
}

func isConnectionFailure(err error) bool {
	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

// HandleQueryError records duration and error metrics for one storage call
// and returns the classified error.
func HandleQueryError(err error, operation, table string, startTime time.Time) error {
	metrics.DBQueryDurationSeconds.WithLabelValues(operation, table).Observe(time.Since(startTime).Seconds())

	if err == nil {
		return nil
	}

	classified := Classify(err)
	if errors.Is(classified, commonerrors.ErrNotFound) {
		return classified
	}

	errorType := "unknown"
	if de, ok := commonerrors.AsDomainError(classified); ok {
		errorType = de.Code()
	}
	metrics.DBQueryErrors.WithLabelValues(operation, table, errorType).Inc()

	if de, ok := commonerrors.AsDomainError(classified); ok && de.Unwrap() != nil {
		return de.WithCause(fmt.Errorf("failed to %s %s: %w", operation, table, de.Unwrap()))
	}
	return classified
}
