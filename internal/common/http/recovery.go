package http

import (
	"fmt"
	"net/http"
	"runtime/debug"

	commonerrors "github.com/yaddak/yaddak/internal/common/errors"
	"github.com/yaddak/yaddak/internal/common/logger"
)

// RecoveryMiddleware turns a handler panic into a 500 INTERNAL_ERROR envelope.
func RecoveryMiddleware(log *logger.Logger) func(next http.Handler) http.Handler {
	errHandler := NewErrorHandler(log)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				log.WithFields(r.Context(), logger.Fields{
					"path":   r.URL.Path,
					"method": r.Method,
					"action": "panic_recovered",
				}).Criticalf("panic recovered: %v\n%s", rec, debug.Stack())
				errHandler.HandleError(w, r, commonerrors.ErrInternalError.WithCause(fmt.Errorf("panic: %v", rec)))
			}()
			next.ServeHTTP(w, r)
		})
	}
}
