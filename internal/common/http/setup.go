package http

import (
	"net/http"
	"time"

	"github.com/yaddak/yaddak/internal/common/constants"
	"github.com/yaddak/yaddak/internal/common/httpmetrics"
	"github.com/yaddak/yaddak/internal/common/logger"
)

func BuildBaseHandler(log *logger.Logger, requestTimeout time.Duration, handler http.Handler) http.Handler {
	recovery := RecoveryMiddleware(log)
	traceID := TraceIDMiddleware
	timeout := WithTimeout(requestTimeout)
	maxRequestSize := MaxRequestSizeMiddleware(constants.DefaultMaxRequestSize)
	securityHeaders := SecurityHeadersMiddleware("")

	return securityHeaders(recovery(traceID(timeout(maxRequestSize(httpmetrics.Wrap(handler))))))
}
