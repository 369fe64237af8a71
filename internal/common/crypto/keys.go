package crypto

import (
	"crypto/sha256"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Labels for subkeys derived from the process secret. Each use of the secret
// gets its own key.
const (
	DigestKeyLabel  = "yaddak credential digest v1"
	SessionKeyLabel = "yaddak session token v1"
)

const subkeyLen = 32

// DeriveKey expands secret into a subkey bound to label using HKDF-SHA256.
func DeriveKey(secret, label string) ([]byte, error) {
	key := make([]byte, subkeyLen)
	if _, err := io.ReadFull(hkdf.New(sha256.New, []byte(secret), nil, []byte(label)), key); err != nil {
		return nil, fmt.Errorf("derive %q key: %w", label, err)
	}
	return key, nil
}
