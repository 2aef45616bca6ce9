// Package widgettoken implements the stateless bearer credential that an
// embedded widget presents to prove which account it belongs to.
//
// Wire format: base64url(accountID) + "." + hex(hmac_sha256(secret, payload)).
// The payload segment uses unpadded base64url so tokens survive query strings
// untouched.
package widgettoken

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
)

var (
	// ErrEmptyAccountID is returned by Issue for an empty account id.
	ErrEmptyAccountID = errors.New("widgettoken: empty account id")

	// ErrInvalidToken covers every verification failure: wrong segment
	// count, signature mismatch, undecodable payload. Collapsing them
	// keeps callers (and attackers) from learning which check failed.
	ErrInvalidToken = errors.New("widgettoken: invalid token")
)

// Codec signs and verifies widget tokens with a single shared secret.
// The secret is injected at construction, never read from ambient state,
// so tests can run with distinct secrets side by side.
type Codec struct {
	secret []byte
}

// New returns a Codec for the given secret. An empty secret is refused:
// a process without a secret must fail closed at startup rather than
// silently minting unverifiable tokens.
func New(secret string) (*Codec, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("widgettoken: secret must be non-empty")
	}
	return &Codec{secret: []byte(secret)}, nil
}

// Issue mints a token for accountID. Deterministic: the same accountID and
// secret always produce byte-identical output.
func (c *Codec) Issue(accountID string) (string, error) {
	if accountID == "" {
		return "", ErrEmptyAccountID
	}
	payload := base64.RawURLEncoding.EncodeToString([]byte(accountID))
	return payload + "." + c.sign(payload), nil
}

// Verify checks an untrusted token and returns the embedded account id.
// It never panics on malformed input and never reports why a token was
// rejected beyond ErrInvalidToken.
func (c *Codec) Verify(token string) (string, error) {
	token = strings.TrimSpace(token)
	parts := strings.Split(token, ".")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", ErrInvalidToken
	}
	payload, sig := parts[0], parts[1]
	expected := c.sign(payload)
	if subtle.ConstantTimeCompare([]byte(expected), []byte(sig)) != 1 {
		return "", ErrInvalidToken
	}
	decoded, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil || len(decoded) == 0 {
		return "", ErrInvalidToken
	}
	return string(decoded), nil
}

func (c *Codec) sign(payload string) string {
	mac := hmac.New(sha256.New, c.secret)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
