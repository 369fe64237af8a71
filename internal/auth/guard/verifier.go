package guard

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/yaddak/yaddak/internal/auth/service"
	commonerrors "github.com/yaddak/yaddak/internal/common/errors"
	userdomain "github.com/yaddak/yaddak/internal/user/domain"
)

// Verifier resolves a bearer token to the user it authorizes.
type Verifier interface {
	Verify(ctx context.Context, token string) (userdomain.User, error)
}

type DigestLookup interface {
	FindByAuth(ctx context.Context, digest string) (userdomain.User, error)
}

// DigestVerifier accepts a token only if it equals some stored digest
// verbatim.
type DigestVerifier struct {
	users DigestLookup
}

func NewDigestVerifier(users DigestLookup) *DigestVerifier {
	return &DigestVerifier{users: users}
}

func (v *DigestVerifier) Verify(ctx context.Context, token string) (userdomain.User, error) {
	user, err := v.users.FindByAuth(ctx, token)
	if err != nil {
		if errors.Is(err, commonerrors.ErrNotFound) {
			return userdomain.User{}, commonerrors.ErrInvalidCredential
		}
		return userdomain.User{}, err
	}
	return user, nil
}

type UserLookup interface {
	Get(ctx context.Context, id uuid.UUID) (userdomain.User, error)
}

type SessionParser interface {
	ParseToken(raw string) (uuid.UUID, string, error)
}

// SessionVerifier accepts a signed session token whose subject still exists
// with the digest the token was issued for.
type SessionVerifier struct {
	parser SessionParser
	users  UserLookup
}

func NewSessionVerifier(parser SessionParser, users UserLookup) *SessionVerifier {
	return &SessionVerifier{parser: parser, users: users}
}

func (v *SessionVerifier) Verify(ctx context.Context, token string) (userdomain.User, error) {
	id, fingerprint, err := v.parser.ParseToken(token)
	if err != nil {
		return userdomain.User{}, err
	}

	user, err := v.users.Get(ctx, id)
	if err != nil {
		if errors.Is(err, commonerrors.ErrNotFound) {
			return userdomain.User{}, commonerrors.ErrInvalidCredential
		}
		return userdomain.User{}, err
	}

	if !service.MatchesDigest(fingerprint, user.UserAuth) {
		return userdomain.User{}, commonerrors.ErrInvalidCredential.WithMessage("session revoked")
	}
	return user, nil
}
