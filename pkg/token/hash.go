package token

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Fingerprint returns the hex-encoded SHA-256 digest of secret.
func Fingerprint(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// Matches reports whether secret has the given fingerprint.
// The comparison is constant-time.
func Matches(secret, fingerprint string) bool {
	return subtle.ConstantTimeCompare([]byte(Fingerprint(secret)), []byte(fingerprint)) == 1
}
