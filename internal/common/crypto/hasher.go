package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"

	"github.com/yaddak/yaddak/internal/common/constants"
	commonerrors "github.com/yaddak/yaddak/internal/common/errors"
)

// CredentialHasher derives and verifies credential digests. The record id is
// the per-record salt, so a digest is deterministic for (id, name, secret).
type CredentialHasher interface {
	Hash(id uuid.UUID, name, secret string) (string, error)
	Verify(digest string, id uuid.UUID, name, secret string) error
}

type Argon2Params struct {
	Memory  uint32
	Time    uint32
	Threads uint8
	KeyLen  uint32
}

// DefaultArgon2Params is also the minimum accepted by NewArgon2Hasher.
var DefaultArgon2Params = Argon2Params{
	Memory:  constants.Argon2Memory,
	Time:    constants.Argon2Time,
	Threads: constants.Argon2Threads,
	KeyLen:  constants.Argon2KeyLen,
}

type Argon2Hasher struct {
	secret []byte
	params Argon2Params
}

func NewArgon2Hasher(secret string, params Argon2Params) (*Argon2Hasher, error) {
	if secret == "" {
		return nil, commonerrors.ErrMissingRequiredEnv.WithCause(fmt.Errorf("credential secret is empty"))
	}
	if params.Memory < DefaultArgon2Params.Memory ||
		params.Time < DefaultArgon2Params.Time ||
		params.Threads < DefaultArgon2Params.Threads ||
		params.KeyLen < DefaultArgon2Params.KeyLen {
		return nil, commonerrors.ErrInvalidEnv.WithCause(
			fmt.Errorf("argon2 parameters %+v below floor %+v", params, DefaultArgon2Params))
	}
	key, err := DeriveKey(secret, DigestKeyLabel)
	if err != nil {
		return nil, commonerrors.ErrInternalError.WithCause(err)
	}
	return &Argon2Hasher{secret: key, params: params}, nil
}

func (h *Argon2Hasher) Hash(id uuid.UUID, name, secret string) (string, error) {
	if id == uuid.Nil {
		return "", commonerrors.ErrHashFailed.WithCause(fmt.Errorf("nil identifier"))
	}

	salt := id[:]
	key := argon2.IDKey(h.keyed(name, secret), salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)

	// $argon2id$v=19$m=65536,t=10,p=4$<salt>$<hash>
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

func (h *Argon2Hasher) Verify(digest string, id uuid.UUID, name, secret string) error {
	computed, err := h.Hash(id, name, secret)
	if err != nil {
		return err
	}
	if subtle.ConstantTimeCompare([]byte(computed), []byte(digest)) != 1 {
		return commonerrors.ErrInvalidCredential
	}
	return nil
}

// keyed binds the digest subkey of the process secret into the KDF input,
// since x/crypto/argon2 exposes no secret parameter.
func (h *Argon2Hasher) keyed(name, secret string) []byte {
	mac := hmac.New(sha256.New, h.secret)
	mac.Write([]byte(name + ":" + secret))
	return mac.Sum(nil)
}

// Fingerprint is a short, non-reversible tag of a stored digest. Session
// tokens embed it so they stop verifying once the digest changes.
func Fingerprint(digest string) string {
	sum := sha256.Sum256([]byte(digest))
	return base64.RawURLEncoding.EncodeToString(sum[:12])
}
