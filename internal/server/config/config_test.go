package config

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/omriasta/core/internal/core/domain"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.HTTP.Addr != DefaultHTTPAddr {
		t.Errorf("HTTP.Addr = %q, want %q", cfg.Server.HTTP.Addr, DefaultHTTPAddr)
	}
	if cfg.Server.HTTP.Router != DefaultRouter {
		t.Errorf("HTTP.Router = %q, want %q", cfg.Server.HTTP.Router, DefaultRouter)
	}
	if !cfg.Server.HTTP.MetricsAuthRequired {
		t.Error("metrics should require auth by default")
	}
	if cfg.Server.HTTP.TLSEnabled() {
		t.Error("TLS should be disabled by default")
	}
	if cfg.Server.Local.Enabled() {
		t.Error("local socket should be disabled by default")
	}
	if cfg.Server.HTTP.ShutdownTimeout != DefaultShutdownTimeout {
		t.Errorf("ShutdownTimeout = %v, want %v", cfg.Server.HTTP.ShutdownTimeout, DefaultShutdownTimeout)
	}
	if cfg.Security.CredentialCacheTTL != DefaultCredentialCacheTTL {
		t.Errorf("CredentialCacheTTL = %v", cfg.Security.CredentialCacheTTL)
	}
	if cfg.Log.Level != DefaultLogLevel || cfg.Log.Format != DefaultLogFormat {
		t.Errorf("Log = %+v", cfg.Log)
	}

	if err := Verify(cfg); err != nil {
		t.Errorf("Verify(Default()) error = %v", err)
	}
}

func newToken(t *testing.T, id string) domain.AccessToken {
	t.Helper()
	hash, err := domain.HashSecret("secret")
	if err != nil {
		t.Fatalf("HashSecret() error = %v", err)
	}
	return domain.AccessToken{ID: id, UserID: "user-" + id, UserName: "User " + id, SecretHash: hash}
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*ServerConfig)
		wantErr string
	}{
		{"defaults", func(*ServerConfig) {}, ""},
		{"wildcard addr", func(c *ServerConfig) { c.Server.HTTP.Addr = ":8123" }, ""},
		{"empty addr", func(c *ServerConfig) { c.Server.HTTP.Addr = "" }, "Addr"},
		{"no port", func(c *ServerConfig) { c.Server.HTTP.Addr = "localhost" }, "Addr"},
		{"bad port", func(c *ServerConfig) { c.Server.HTTP.Addr = "localhost:99999" }, "Addr"},
		{"bad host", func(c *ServerConfig) { c.Server.HTTP.Addr = "bad host!:80" }, "Addr"},
		{"cert without key", func(c *ServerConfig) { c.Server.HTTP.TLSCertFile = "/tls.crt" }, "TLSKeyFile"},
		{"key without cert", func(c *ServerConfig) { c.Server.HTTP.TLSKeyFile = "/tls.key" }, "TLSCertFile"},
		{"client CA without TLS", func(c *ServerConfig) { c.Server.HTTP.TLSClientCAFile = "/ca.pem" }, "TLSClientCAFile"},
		{"client cert required without CA", func(c *ServerConfig) {
			c.Server.HTTP.TLSCertFile = "/tls.crt"
			c.Server.HTTP.TLSKeyFile = "/tls.key"
			c.Server.HTTP.TLSRequireClientCert = true
		}, "TLSRequireClientCert"},
		{"full TLS", func(c *ServerConfig) {
			c.Server.HTTP.TLSCertFile = "/tls.crt"
			c.Server.HTTP.TLSKeyFile = "/tls.key"
			c.Server.HTTP.TLSClientCAFile = "/ca.pem"
			c.Server.HTTP.TLSRequireClientCert = true
		}, ""},
		{"gorilla router", func(c *ServerConfig) { c.Server.HTTP.Router = "gorilla" }, ""},
		{"unknown router", func(c *ServerConfig) { c.Server.HTTP.Router = "chi" }, "Router"},
		{"origins", func(c *ServerConfig) {
			c.Server.HTTP.CORSAllowedOrigins = []string{"*", "https://app.example.com", "http://localhost:3000"}
		}, ""},
		{"bad origin", func(c *ServerConfig) { c.Server.HTTP.CORSAllowedOrigins = []string{"app.example.com"} }, "CORSAllowedOrigins"},
		{"bad proxy", func(c *ServerConfig) { c.Server.HTTP.TrustedProxies = []string{"10.0.0.0/99"} }, "TrustedProxies"},
		{"negative rate", func(c *ServerConfig) { c.Server.HTTP.RateLimit = -1 }, "RateLimit"},
		{"negative timeout", func(c *ServerConfig) { c.Server.HTTP.ShutdownTimeout = -time.Second }, "ShutdownTimeout"},
		{"bad trusted network", func(c *ServerConfig) { c.Security.TrustedNetworks = []string{"not-an-ip"} }, "TrustedNetworks"},
		{"bad level", func(c *ServerConfig) { c.Log.Level = "loud" }, "Level"},
		{"bad format", func(c *ServerConfig) { c.Log.Format = "xml" }, "Format"},
		{"local socket", func(c *ServerConfig) { c.Server.Local.Path = "/run/hub/hub.sock" }, ""},
		{"relative socket", func(c *ServerConfig) { c.Server.Local.Path = "hub.sock" }, "Path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := Verify(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Verify() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Verify() expected error mentioning %s", tt.wantErr)
			}
			if !errors.Is(err, domain.ErrConfiguration) {
				t.Errorf("error %v is not ErrConfiguration", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %s", err, tt.wantErr)
			}
		})
	}
}

func TestVerify_AccessTokens(t *testing.T) {
	valid := newToken(t, "tok1")

	tests := []struct {
		name    string
		tokens  []domain.AccessToken
		wantErr bool
	}{
		{"valid", []domain.AccessToken{valid, newToken(t, "tok2")}, false},
		{"duplicate id", []domain.AccessToken{valid, valid}, true},
		{"missing id", []domain.AccessToken{{UserID: "u", SecretHash: valid.SecretHash}}, true},
		{"colon in id", []domain.AccessToken{{ID: "a:b", UserID: "u", SecretHash: valid.SecretHash}}, true},
		{"missing user", []domain.AccessToken{{ID: "x", SecretHash: valid.SecretHash}}, true},
		{"plaintext secret", []domain.AccessToken{{ID: "x", UserID: "u", SecretHash: "hunter2"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Security.AccessTokens = tt.tokens
			err := Verify(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Verify() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestVerify_Nil(t *testing.T) {
	if err := Verify(nil); !errors.Is(err, domain.ErrConfiguration) {
		t.Errorf("Verify(nil) = %v, want ErrConfiguration", err)
	}
}

func TestSanitize(t *testing.T) {
	cfg := Default()
	token := newToken(t, "tok1")
	cfg.Security.AccessTokens = []domain.AccessToken{token}

	sanitized := Sanitize(cfg)

	if cfg.Security.AccessTokens[0].SecretHash != token.SecretHash {
		t.Error("original config should not be modified")
	}
	got := sanitized.Security.AccessTokens[0]
	if got.SecretHash == token.SecretHash {
		t.Error("secret hash should be masked")
	}
	if len(got.SecretHash) != len(token.SecretHash) {
		t.Errorf("masked length = %d, want %d", len(got.SecretHash), len(token.SecretHash))
	}
	if got.ID != token.ID || got.UserID != token.UserID {
		t.Errorf("non-secret fields changed: %+v", got)
	}
}

func TestSanitize_NoTokens(t *testing.T) {
	cfg := Default()
	if got := Sanitize(cfg); got.Security.AccessTokens != nil {
		t.Errorf("AccessTokens = %v, want nil", got.Security.AccessTokens)
	}
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "****"},
		{"abcd", "****"},
		{"abcde", "ab*de"},
		{"1234567890", "12******90"},
	}

	for _, tt := range tests {
		if got := maskSecret(tt.input); got != tt.expected {
			t.Errorf("maskSecret(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
