package config

import (
	"time"

	"github.com/omriasta/core/internal/core/domain"
)

// ServerConfig is the root configuration for hub-server.
type ServerConfig struct {
	Server   ServerSection   `koanf:"server"`
	Security SecuritySection `koanf:"security"`
	Log      LogSection      `koanf:"log"`
}

// ServerSection configures server endpoints.
type ServerSection struct {
	HTTP  HTTPConfig  `koanf:"http"`
	Local LocalConfig `koanf:"local"`
}

// LocalConfig configures the Unix socket listener. Requests on the socket
// without a credential run as the system user.
type LocalConfig struct {
	// Path of the socket file; empty disables the listener.
	Path string `koanf:"path"`
}

// Enabled reports whether a socket path is configured.
func (c LocalConfig) Enabled() bool {
	return c.Path != ""
}

// HTTPConfig configures the HTTP server.
type HTTPConfig struct {
	Addr string `koanf:"addr"`

	// TLS is enabled when both files are set.
	TLSCertFile string `koanf:"tls_cert_file"`
	TLSKeyFile  string `koanf:"tls_key_file"`

	// TLSClientCAFile enables client certificate verification.
	TLSClientCAFile      string `koanf:"tls_client_ca_file"`
	TLSRequireClientCert bool   `koanf:"tls_require_client_cert"`

	// Router selects the router implementation: "mux" or "gorilla".
	Router string `koanf:"router"`

	// CORSAllowedOrigins lists origins allowed on CORS-enabled views.
	// "*" allows any origin.
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins"`

	UseXForwardedFor bool     `koanf:"use_x_forwarded_for"`
	TrustedProxies   []string `koanf:"trusted_proxies"`

	// RateLimit is requests per second per client; 0 disables limiting.
	RateLimit float64 `koanf:"rate_limit"`
	RateBurst int     `koanf:"rate_burst"`

	Audit               bool `koanf:"audit"`
	MetricsAuthRequired bool `koanf:"metrics_auth_required"`

	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout"`
	IdleTimeout       time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout"`
}

// TLSEnabled reports whether a key pair is configured.
func (c HTTPConfig) TLSEnabled() bool {
	return c.TLSCertFile != "" && c.TLSKeyFile != ""
}

// SecuritySection configures authentication.
type SecuritySection struct {
	// TrustedNetworks are CIDRs or single addresses whose requests are
	// authenticated as the system user when they send no credential.
	TrustedNetworks []string `koanf:"trusted_networks"`

	AccessTokens []domain.AccessToken `koanf:"access_tokens"`

	CredentialCacheTTL  time.Duration `koanf:"credential_cache_ttl"`
	CredentialCacheSize int           `koanf:"credential_cache_size"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
