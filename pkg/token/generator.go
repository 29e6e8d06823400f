package token

import (
	"crypto/rand"
	"encoding/base64"
)

// DefaultLength is the default secret length in bytes.
const DefaultLength = 32

// Generate returns a random secret of DefaultLength bytes.
func Generate() (string, error) {
	return GenerateWithLength(DefaultLength)
}

// GenerateWithLength returns a random secret of length bytes, Base64
// RawURL encoded for safe use in headers and URLs.
func GenerateWithLength(length int) (string, error) {
	buf := make([]byte, length)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
