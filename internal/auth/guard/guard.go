// Package guard authorizes requests by bearer credential.
package guard

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"

	commonerrors "github.com/yaddak/yaddak/internal/common/errors"
	commonhttp "github.com/yaddak/yaddak/internal/common/http"
	"github.com/yaddak/yaddak/internal/common/logger"
	"github.com/yaddak/yaddak/internal/observability/metrics"
)

// Principal is the authenticated user of a request.
type Principal struct {
	ID       uuid.UUID
	UserName string
}

type contextKey string

const principalKey contextKey = "principal"

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey).(Principal)
	return p, ok
}

// Guard evaluates every request from scratch: NoToken, TokenPresent, then
// Authorized or Unauthorized. Nothing is cached between requests.
type Guard struct {
	verifier Verifier
	mode     string
	errors   *commonhttp.ErrorHandler
	log      *logger.Logger
}

func New(verifier Verifier, mode string, log *logger.Logger) *Guard {
	return &Guard{
		verifier: verifier,
		mode:     mode,
		errors:   commonhttp.NewErrorHandler(log),
		log:      log,
	}
}

// CheckAuth validates a token already extracted from the request.
func (g *Guard) CheckAuth(ctx context.Context, token string) (Principal, error) {
	user, err := g.verifier.Verify(ctx, token)
	if err != nil {
		outcome := "error"
		if errors.Is(err, commonerrors.ErrInvalidCredential) {
			outcome = "invalid"
		}
		metrics.AuthChecksTotal.WithLabelValues(g.mode, outcome).Inc()
		return Principal{}, err
	}

	metrics.AuthChecksTotal.WithLabelValues(g.mode, "authorized").Inc()
	return Principal{ID: user.ID, UserName: user.UserName}, nil
}

func (g *Guard) Authenticate(r *http.Request) (Principal, error) {
	token, err := ExtractToken(r.Header)
	if err != nil {
		metrics.AuthChecksTotal.WithLabelValues(g.mode, "missing").Inc()
		return Principal{}, err
	}
	return g.CheckAuth(r.Context(), token)
}

func (g *Guard) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := g.Authenticate(r)
		if err != nil {
			g.log.WithFields(r.Context(), logger.Fields{
				"path":   r.URL.Path,
				"method": r.Method,
				"action": "auth_rejected",
			}).Warnf("auth failed: %v", err)
			g.errors.HandleError(w, r, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), principal)))
	})
}

