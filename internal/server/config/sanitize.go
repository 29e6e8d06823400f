package config

import (
	"strings"

	"github.com/omriasta/core/internal/core/domain"
)

// Sanitize returns a copy of the config with secret hashes masked, for
// logging.
func Sanitize(cfg *ServerConfig) *ServerConfig {
	sanitized := *cfg

	if len(cfg.Security.AccessTokens) > 0 {
		tokens := make([]domain.AccessToken, len(cfg.Security.AccessTokens))
		copy(tokens, cfg.Security.AccessTokens)
		for i := range tokens {
			tokens[i].SecretHash = maskSecret(tokens[i].SecretHash)
		}
		sanitized.Security.AccessTokens = tokens
	}

	return &sanitized
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
