package domain

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"strings"

	"github.com/oklog/ulid/v2"
	"golang.org/x/crypto/argon2"

	"github.com/omriasta/core/pkg/token"
)

// Access token constants.
const (
	// AccessTokenIDPrefix prefixes every access token ID.
	AccessTokenIDPrefix = "hubid_"

	// AccessTokenSecretPrefix prefixes every plaintext secret so it can be
	// recognised (and redacted) in logs.
	AccessTokenSecretPrefix = "hubat_"

	// AccessTokenSecretLength is the number of random bytes in a secret.
	AccessTokenSecretLength = 32
)

// Argon2 parameters for access token secret hashing.
const (
	Argon2Memory      uint32 = 16384
	Argon2Time        uint32 = 2
	Argon2Parallelism uint8  = 2
	Argon2KeyLen      uint32 = 32
	Argon2SaltLen            = 16
)

// AccessToken is a long-lived bearer credential bound to a user.
// Only the Argon2id hash of the secret is kept.
type AccessToken struct {
	ID         string `koanf:"id"`
	UserID     string `koanf:"user_id"`
	UserName   string `koanf:"user_name"`
	Admin      bool   `koanf:"admin"`
	SecretHash string `koanf:"secret_hash"`
}

// NewAccessToken mints a token for the given user and returns it together
// with the plaintext secret. The secret is not recoverable afterwards.
func NewAccessToken(userID, userName string, admin bool) (*AccessToken, string, error) {
	id, err := ulid.New(ulid.Now(), rand.Reader)
	if err != nil {
		return nil, "", ErrInternal.WithCause(err)
	}

	raw, err := token.GenerateWithLength(AccessTokenSecretLength)
	if err != nil {
		return nil, "", ErrInternal.WithCause(err)
	}
	secret := AccessTokenSecretPrefix + raw

	hash, err := HashSecret(secret)
	if err != nil {
		return nil, "", ErrInternal.WithCause(err)
	}

	return &AccessToken{
		ID:         AccessTokenIDPrefix + strings.ToLower(id.String()),
		UserID:     userID,
		UserName:   userName,
		Admin:      admin,
		SecretHash: hash,
	}, secret, nil
}

// User returns the identity the token authenticates.
func (t *AccessToken) User() *User {
	return &User{
		ID:       t.UserID,
		Name:     t.UserName,
		IsAdmin:  t.Admin,
		IsActive: true,
	}
}

// VerifySecret reports whether secret matches the stored hash.
func (t *AccessToken) VerifySecret(secret string) bool {
	return VerifySecretHash(secret, t.SecretHash)
}

// HashSecret computes an Argon2id hash of the secret.
// The result has the form $argon2id$v=19$m=16384,t=2,p=2$<salt>$<hash>.
func HashSecret(secret string) (string, error) {
	salt := make([]byte, Argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	hash := argon2.IDKey([]byte(secret), salt, Argon2Time, Argon2Memory, Argon2Parallelism, Argon2KeyLen)

	saltB64 := base64.RawStdEncoding.EncodeToString(salt)
	hashB64 := base64.RawStdEncoding.EncodeToString(hash)

	return "$argon2id$v=19$m=16384,t=2,p=2$" + saltB64 + "$" + hashB64, nil
}

// VerifySecretHash verifies a secret against an Argon2id hash produced by
// HashSecret. Malformed hashes never verify.
func VerifySecretHash(secret, hash string) bool {
	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(secret), salt, Argon2Time, Argon2Memory, Argon2Parallelism, uint32(len(expected)))
	return subtle.ConstantTimeCompare(computed, expected) == 1
}

// ParseBearer splits an "<id>:<secret>" bearer credential.
func ParseBearer(credential string) (id, secret string, err error) {
	parts := strings.SplitN(credential, ":", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", ErrTokenMalformed
	}
	return parts[0], parts[1], nil
}
