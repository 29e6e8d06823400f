package config

import (
	"net"
	"path/filepath"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/omriasta/core/internal/core/domain"
	"github.com/omriasta/core/internal/core/service"
	"github.com/omriasta/core/internal/telemetry/logger"
)

var argon2idHash = regexp.MustCompile(`^\$argon2id\$v=19\$m=\d+,t=\d+,p=\d+\$[A-Za-z0-9+/]+\$[A-Za-z0-9+/]+$`)

// Verify validates the configuration. Failures are reported as
// domain.ErrConfiguration.
func Verify(cfg *ServerConfig) error {
	if cfg == nil {
		return domain.ErrConfiguration.WithDetails("config is nil")
	}
	err := validation.ValidateStruct(cfg,
		validation.Field(&cfg.Server),
		validation.Field(&cfg.Security),
		validation.Field(&cfg.Log),
	)
	if err != nil {
		return domain.ErrConfiguration.WithDetails(err.Error()).WithCause(err)
	}
	return nil
}

// Validate implements validation.Validatable.
func (s ServerSection) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.HTTP),
		validation.Field(&s.Local),
	)
}

// Validate implements validation.Validatable.
func (c LocalConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Path, validation.When(c.Path != "", validation.By(absolutePath))),
	)
}

// Validate implements validation.Validatable.
func (c HTTPConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Addr, validation.Required, validation.By(validateHostPort)),
		validation.Field(&c.TLSCertFile, validation.When(c.TLSKeyFile != "", validation.Required.Error("is required with a TLS key file"))),
		validation.Field(&c.TLSKeyFile, validation.When(c.TLSCertFile != "", validation.Required.Error("is required with a TLS certificate file"))),
		validation.Field(&c.TLSClientCAFile, validation.When(c.TLSClientCAFile != "" && !c.TLSEnabled(), validation.Empty.Error("requires TLS to be enabled"))),
		validation.Field(&c.TLSRequireClientCert, validation.When(c.TLSRequireClientCert, validation.By(func(any) error {
			if c.TLSClientCAFile == "" {
				return validation.NewError("validation_client_ca_missing", "requires a client CA file")
			}
			return nil
		}))),
		validation.Field(&c.Router, validation.Required, validation.In("mux", "gorilla")),
		validation.Field(&c.CORSAllowedOrigins, validation.Each(validation.By(validateOrigin))),
		validation.Field(&c.TrustedProxies, validation.By(validateNetworks)),
		validation.Field(&c.RateLimit, validation.Min(0.0)),
		validation.Field(&c.RateBurst, validation.Min(0)),
		validation.Field(&c.ReadHeaderTimeout, validation.Min(0)),
		validation.Field(&c.IdleTimeout, validation.Min(0)),
		validation.Field(&c.ShutdownTimeout, validation.Min(0)),
	)
}

// Validate implements validation.Validatable.
func (s SecuritySection) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.TrustedNetworks, validation.By(validateNetworks)),
		validation.Field(&s.AccessTokens,
			validation.Each(validation.By(validateAccessToken)),
			validation.By(uniqueTokenIDs),
		),
		validation.Field(&s.CredentialCacheTTL, validation.Min(0)),
		validation.Field(&s.CredentialCacheSize, validation.Min(0)),
	)
}

// Validate implements validation.Validatable.
func (s LogSection) Validate() error {
	levels := make([]any, 0, len(logger.Levels()))
	for _, l := range logger.Levels() {
		levels = append(levels, l)
	}
	return validation.ValidateStruct(&s,
		validation.Field(&s.Level, validation.Required, validation.In(levels...)),
		validation.Field(&s.Format, validation.Required, validation.In("json", "text")),
	)
}

func validateHostPort(value any) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}
	if addr == "" {
		return nil
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}
	if err := is.Port.Validate(port); err != nil || port == "" {
		return validation.NewError("validation_invalid_port", "must have a valid port")
	}
	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}
	return nil
}

func validateOrigin(value any) error {
	origin, _ := value.(string)
	if origin == "*" {
		return nil
	}
	if !strings.HasPrefix(origin, "http://") && !strings.HasPrefix(origin, "https://") {
		return validation.NewError("validation_invalid_origin", "must be \"*\" or an http(s) origin")
	}
	return is.URL.Validate(origin)
}

func validateNetworks(value any) error {
	entries, _ := value.([]string)
	if _, err := service.ParseNetworks(entries); err != nil {
		return validation.NewError("validation_invalid_network", err.Error())
	}
	return nil
}

func validateAccessToken(value any) error {
	t, ok := value.(domain.AccessToken)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be an access token")
	}
	return validation.ValidateStruct(&t,
		validation.Field(&t.ID, validation.Required, validation.By(noColon)),
		validation.Field(&t.UserID, validation.Required),
		validation.Field(&t.SecretHash, validation.Required, validation.Match(argon2idHash)),
	)
}

func noColon(value any) error {
	if s, _ := value.(string); strings.Contains(s, ":") {
		return validation.NewError("validation_invalid_token_id", "must not contain ':'")
	}
	return nil
}

func uniqueTokenIDs(value any) error {
	tokens, _ := value.([]domain.AccessToken)
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, dup := seen[t.ID]; dup {
			return validation.NewError("validation_duplicate_token", "duplicate token id "+t.ID)
		}
		seen[t.ID] = struct{}{}
	}
	return nil
}

func absolutePath(value any) error {
	if p, _ := value.(string); !filepath.IsAbs(p) {
		return validation.NewError("validation_relative_path", "must be an absolute path")
	}
	return nil
}
