package service

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yaddak/yaddak/internal/common/clock"
	"github.com/yaddak/yaddak/internal/common/crypto"
	commonerrors "github.com/yaddak/yaddak/internal/common/errors"
	userdomain "github.com/yaddak/yaddak/internal/user/domain"
)

// TokenIssuer produces the bearer credential returned by login.
type TokenIssuer interface {
	IssueToken(user userdomain.User) (string, error)
}

// DigestTokenIssuer hands out the stored digest itself.
type DigestTokenIssuer struct{}

func (DigestTokenIssuer) IssueToken(user userdomain.User) (string, error) {
	return user.UserAuth, nil
}

type SessionClaims struct {
	// DigestFingerprint ties the token to the credential it was issued for.
	DigestFingerprint string `json:"dfp"`
	jwt.RegisteredClaims
}

// SessionTokenIssuer issues short-lived HS256 tokens that stop verifying once
// the user's digest changes or the user is deleted.
type SessionTokenIssuer struct {
	secret []byte
	ttl    time.Duration
	clock  clock.Clock
}

// NewSessionTokenIssuer signs with a subkey of secret, never with secret
// itself, so the signing key differs from the digest key.
func NewSessionTokenIssuer(secret string, ttl time.Duration, clk clock.Clock) (*SessionTokenIssuer, error) {
	key, err := crypto.DeriveKey(secret, crypto.SessionKeyLabel)
	if err != nil {
		return nil, commonerrors.ErrInternalError.WithCause(err)
	}
	return &SessionTokenIssuer{
		secret: key,
		ttl:    ttl,
		clock:  clk,
	}, nil
}

func (ti *SessionTokenIssuer) IssueToken(user userdomain.User) (string, error) {
	now := ti.clock.Now()
	claims := SessionClaims{
		DigestFingerprint: crypto.Fingerprint(user.UserAuth),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ti.ttl)),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(ti.secret)
	if err != nil {
		return "", commonerrors.ErrInternalError.WithCause(fmt.Errorf("sign session token: %w", err))
	}

	incrementAccessTokensIssued()
	return token, nil
}

// ParseToken checks signature and expiry and returns the subject and digest
// fingerprint. Every failure is AUTH_INVALID_CREDENTIAL.
func (ti *SessionTokenIssuer) ParseToken(raw string) (uuid.UUID, string, error) {
	var claims SessionClaims
	_, err := jwt.ParseWithClaims(raw, &claims, func(token *jwt.Token) (any, error) {
		return ti.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(ti.clock.Now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return uuid.Nil, "", commonerrors.ErrInvalidCredential.WithCause(err)
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil || claims.DigestFingerprint == "" {
		return uuid.Nil, "", commonerrors.ErrInvalidCredential.WithCause(fmt.Errorf("malformed session claims"))
	}
	return id, claims.DigestFingerprint, nil
}

// MatchesDigest reports whether fingerprint was computed from digest.
func MatchesDigest(fingerprint, digest string) bool {
	return subtle.ConstantTimeCompare([]byte(fingerprint), []byte(crypto.Fingerprint(digest))) == 1
}
