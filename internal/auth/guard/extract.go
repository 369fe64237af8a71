package guard

import (
	"net/http"
	"strings"

	commonerrors "github.com/yaddak/yaddak/internal/common/errors"
)

const AuthorizationHeader = "Authorization"

// ExtractToken returns the last space-separated segment of the Authorization
// header, so both "Bearer abc" and "abc" yield "abc".
func ExtractToken(h http.Header) (string, error) {
	value := h.Get(AuthorizationHeader)
	if value == "" {
		return "", commonerrors.ErrMissingCredential
	}

	token := value[strings.LastIndex(value, " ")+1:]
	if token == "" {
		return "", commonerrors.ErrMissingCredential.WithMessage("empty authorization token")
	}
	return token, nil
}
