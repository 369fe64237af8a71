package http

import (
	"net/http"

	"github.com/google/uuid"

	commonerrors "github.com/yaddak/yaddak/internal/common/errors"
)

// PathID parses the named path parameter as a UUID.
func PathID(r *http.Request, name string) (uuid.UUID, error) {
	raw := r.PathValue(name)
	if raw == "" {
		return uuid.Nil, commonerrors.ErrInvalidID.WithMessage(name + " is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, commonerrors.ErrInvalidID.WithCause(err)
	}
	return id, nil
}
