// Package token provides random secret generation and fingerprinting.
//
// Secrets are Base64 RawURL encoded bytes from crypto/rand. Fingerprints
// are hex-encoded SHA-256 digests, compared in constant time; they are
// cheap enough to key caches of already-verified credentials.
package token
