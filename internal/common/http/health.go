package http

import (
	"context"
	"net/http"
	"time"

	commonerrors "github.com/yaddak/yaddak/internal/common/errors"
	"github.com/yaddak/yaddak/internal/common/logger"
)

// Pinger is satisfied by *pgxpool.Pool.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthHandler(log *logger.Logger, db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				log.Warnf("health check: database ping failed: %v", err)
				WriteError(w, commonerrors.ErrUnavailable.WithCause(err))
				return
			}
		}
		log.Debug("health check request")
		WriteData(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
