package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/yaddak/yaddak/internal/common/constants"
	commonerrors "github.com/yaddak/yaddak/internal/common/errors"
	"github.com/yaddak/yaddak/internal/common/httpmetrics"
	"github.com/yaddak/yaddak/internal/common/logger"
	"github.com/yaddak/yaddak/internal/observability/metrics"
)

type ErrorHandler struct {
	log *logger.Logger
}

func NewErrorHandler(log *logger.Logger) *ErrorHandler {
	return &ErrorHandler{log: log}
}

func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}
	status := http.StatusInternalServerError
	if de, ok := commonerrors.AsDomainError(err); ok {
		status = de.HTTPStatus()
	}
	h.HandleErrorStatus(w, r, err, status)
}

// HandleErrorStatus writes err with an explicit status, for routes whose
// status mapping differs from the error's own.
func (h *ErrorHandler) HandleErrorStatus(w http.ResponseWriter, r *http.Request, err error, status int) {
	if err == nil {
		return
	}

	ctx := r.Context()
	traceID := TraceIDFromContext(ctx)
	if traceID != "" {
		w.Header().Set(traceIDHeader, traceID)
	}

	metrics.HTTPErrorsTotal.WithLabelValues(
		strconv.Itoa(status),
		httpmetrics.NormalizePath(r.URL.Path),
		r.Method,
	).Inc()

	domainErr, ok := commonerrors.AsDomainError(err)
	if !ok || domainErr.Code() == commonerrors.ErrInternalError.Code() {
		h.log.WithFields(ctx, logger.Fields{
			"error":  err.Error(),
			"action": "unhandled_error",
		}).Errorf("unhandled error: %v", err)
		WriteErrorStatus(w, status, err)
		return
	}

	logFields := logger.Fields{
		"error_code": domainErr.Code(),
		"kind":       string(domainErr.Kind()),
		"status":     status,
		"action":     "domain_error",
	}
	if status >= http.StatusInternalServerError {
		h.log.WithFields(ctx, logFields).Errorf("domain error: %s", domainErr.Error())
	} else if h.log.ShouldLog(logger.DEBUG) {
		h.log.WithFields(ctx, logFields).Debugf("domain error: %s", domainErr.Error())
	}

	metrics.DomainErrorsTotal.WithLabelValues(
		string(domainErr.Kind()),
		domainErr.Code(),
		strconv.Itoa(status),
	).Inc()

	WriteErrorStatus(w, status, domainErr)
}

func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	traceID, _ := ctx.Value(constants.TraceIDKey).(string)
	return traceID
}
