// Package auth validates the static API keys configured under server.api_keys.
package auth

import (
	"crypto/subtle"
	"fmt"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/turtacn/KeyIP-Substructure/pkg/errors"
)

// KeyInfo identifies an accepted key without exposing it.
type KeyInfo struct {
	// KeyID is a short fingerprint of the key, safe to log and to use as a
	// rate limit key.
	KeyID string
}

// APIKeyValidator resolves a presented key to its KeyInfo.
type APIKeyValidator interface {
	ValidateAPIKey(key string) (*KeyInfo, error)
}

// KeySet is an APIKeyValidator over a fixed list of keys.
type KeySet struct {
	keys []string
	ids  []string
}

// NewKeySet returns a KeySet over keys.  Blank entries are ignored.
func NewKeySet(keys []string) *KeySet {
	ks := &KeySet{}
	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			ks.keys = append(ks.keys, k)
			ks.ids = append(ks.ids, KeyID(k))
		}
	}
	return ks
}

// Enabled reports whether any key is configured.  With no keys the API is
// open.
func (ks *KeySet) Enabled() bool {
	return ks != nil && len(ks.keys) > 0
}

// ValidateAPIKey compares key against every configured key in constant time.
func (ks *KeySet) ValidateAPIKey(key string) (*KeyInfo, error) {
	if key == "" {
		return nil, errors.New(errors.ErrCodeUnauthorized, "API key required")
	}
	match := -1
	for i, k := range ks.keys {
		if subtle.ConstantTimeCompare([]byte(k), []byte(key)) == 1 {
			match = i
		}
	}
	if match < 0 {
		return nil, errors.New(errors.ErrCodeUnauthorized, "invalid API key")
	}
	return &KeyInfo{KeyID: ks.ids[match]}, nil
}

// KeyID fingerprints a key with xxhash.
func KeyID(key string) string {
	return fmt.Sprintf("%08x", uint32(xxhash.Sum64String(key)))
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header value.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

var _ APIKeyValidator = (*KeySet)(nil)
