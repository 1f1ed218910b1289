package domain

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"

	apperrors "github.com/icarushq/icarus/internal/errors"
)

const (
	// tokenEntropyBytes is the entropy behind each credential: 32 random
	// bytes hex-encoded to 64 characters.
	tokenEntropyBytes = 32

	// SelectorLength is the length of the public lookup half of a credential.
	SelectorLength = 8
)

// StoredToken is the persisted form of a bearer credential: a public
// selector used as the lookup key and the SHA-256 hex digest of the secret
// material. The raw secret is never stored.
type StoredToken struct {
	Selector string
	Secret   string
}

// UnhashedToken carries the cleartext bearer token exactly once, at
// issuance. It must never be persisted or logged.
type UnhashedToken struct {
	// Token is the full cleartext bearer string: context prefix, selector,
	// then secret material.
	Token string

	// Stored is the credential record to persist.
	Stored StoredToken
}

// GenerateToken creates a fresh credential for the context. The cleartext
// token is the context prefix followed by 64 hex characters; the first 8 of
// those are the selector, the remaining 56 are the secret material whose
// digest is stored.
//
// A failing entropy source is a fatal error; there is no fallback to weaker
// randomness.
func GenerateToken(context OperatingContext) (*UnhashedToken, error) {
	raw := make([]byte, tokenEntropyBytes)
	if _, err := rand.Read(raw); err != nil {
		return nil, apperrors.Wrap(err, "failed to generate random token")
	}

	token := hex.EncodeToString(raw)

	return &UnhashedToken{
		Token: context.TokenPrefix() + token,
		Stored: StoredToken{
			Selector: token[:SelectorLength],
			Secret:   hashTokenSecret(token[SelectorLength:]),
		},
	}, nil
}

// Verify reports whether the candidate selector and secret match this
// credential. The selector comparison is ordinary (it is not secret); the
// digest comparison is constant-time.
func (t StoredToken) Verify(selector, secret string) bool {
	return t.Selector == selector &&
		subtle.ConstantTimeCompare([]byte(t.Secret), []byte(hashTokenSecret(secret))) == 1
}

func hashTokenSecret(secret string) string {
	digest := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(digest[:])
}
