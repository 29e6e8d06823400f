package config

import "time"

// Default configuration values.
const (
	DefaultHTTPAddr = "127.0.0.1:8123"
	DefaultRouter   = "mux"

	DefaultRateLimit         = 100
	DefaultRateBurst         = 200
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultIdleTimeout       = 120 * time.Second
	DefaultShutdownTimeout   = 30 * time.Second

	DefaultCredentialCacheTTL  = 60 * time.Second
	DefaultCredentialCacheSize = 10000

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			HTTP: HTTPConfig{
				Addr:                DefaultHTTPAddr,
				Router:              DefaultRouter,
				RateLimit:           DefaultRateLimit,
				RateBurst:           DefaultRateBurst,
				Audit:               true,
				MetricsAuthRequired: true,
				ReadHeaderTimeout:   DefaultReadHeaderTimeout,
				IdleTimeout:         DefaultIdleTimeout,
				ShutdownTimeout:     DefaultShutdownTimeout,
			},
		},
		Security: SecuritySection{
			TrustedNetworks:     []string{"127.0.0.1", "::1"},
			CredentialCacheTTL:  DefaultCredentialCacheTTL,
			CredentialCacheSize: DefaultCredentialCacheSize,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}
