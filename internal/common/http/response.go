package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	commonerrors "github.com/yaddak/yaddak/internal/common/errors"
)

// Envelope is the body of every API response. Exactly one of Data and Error
// is non-null.
type Envelope struct {
	Data  any                      `json:"data"`
	Error *commonerrors.Descriptor `json:"error"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteData(w http.ResponseWriter, status int, data any) {
	WriteJSON(w, status, Envelope{Data: data})
}

// WriteError writes err as an error envelope using the status of its
// DomainError; anything else is a 500.
func WriteError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if de, ok := commonerrors.AsDomainError(err); ok {
		status = de.HTTPStatus()
	}
	WriteErrorStatus(w, status, err)
}

func WriteErrorStatus(w http.ResponseWriter, status int, err error) {
	desc := commonerrors.Describe(err)
	WriteJSON(w, status, Envelope{Error: &desc})
}

// DecodeJSON decodes the request body into v, reporting INVALID_JSON or
// REQUEST_TOO_LARGE.
func DecodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, errBodyTooLarge) {
			return commonerrors.ErrRequestTooLarge.WithCause(err)
		}
		return commonerrors.ErrInvalidJSON.WithCause(err)
	}
	return nil
}

func WithTimeout(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if timeout <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
