// Package apikey generates client API keys and derives the digests under
// which they are stored. Only digests are persisted; the plaintext key is
// shown once at creation.
package apikey

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Codec lists the key operations the handlers and middleware rely on.
// Implementations must be safe for concurrent use.
type Codec interface {
	Generate() (string, error)
	Digest(key string) string
}

// HMAC derives storage digests with HMAC-SHA256 over a server secret, so a
// leaked key table cannot be replayed against another deployment.
type HMAC struct {
	secret []byte
}

func NewHMAC(secret []byte) *HMAC {
	return &HMAC{secret: append([]byte(nil), secret...)}
}

// Generate returns a new random 64-hex-char key.
func (h *HMAC) Generate() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate api key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Digest returns the hex digest a key is stored and looked up under.
func (h *HMAC) Digest(key string) string {
	mac := hmac.New(sha256.New, h.secret)
	mac.Write([]byte(key))
	return hex.EncodeToString(mac.Sum(nil))
}

// Preview renders the abbreviated form used in listings, never the full key.
func Preview(key string) string {
	if len(key) <= 12 {
		return key
	}
	return key[:8] + "..." + key[len(key)-4:]
}
