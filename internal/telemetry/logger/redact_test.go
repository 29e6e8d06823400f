package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"
)

func newBufferLogger(t *testing.T) (Logger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	l, err := New(Config{Level: "info", Format: "json", Output: &buf})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return l, &buf
}

func decodeEntry(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Failed to parse JSON log: %v", err)
	}
	return entry
}

func TestRedactSensitive_SecretValue(t *testing.T) {
	l, buf := newBufferLogger(t)

	secret := "hubat_ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklm"
	l.Info("token minted", "value", secret)

	got, _ := decodeEntry(t, buf)["value"].(string)
	if got != "hubat_ABC...klm" {
		t.Errorf("secret mask = %q, want %q", got, "hubat_ABC...klm")
	}
}

func TestRedactSensitive_BearerCredential(t *testing.T) {
	l, buf := newBufferLogger(t)

	l.Info("request", "header", "Bearer hubid_01j9:hubat_ABCDEFGHIJKLMNOP")

	got, _ := decodeEntry(t, buf)["header"].(string)
	if got != "Bearer hubid_01j9:hubat_ABC...NOP" {
		t.Errorf("bearer mask = %q", got)
	}
}

func TestRedactSensitive_SensitiveKeyName(t *testing.T) {
	l, buf := newBufferLogger(t)

	tests := []struct {
		key   string
		value string
	}{
		{"password", "mysecret123"},
		{"user_password", "hunter2"},
		{"api_key", "some-key-value"},
		{"Authorization", "Basic xyz"},
		{"credential", "cred123"},
		{"secret_hash", "$argon2id$v=19$m=16384,t=2,p=2$a$b"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			buf.Reset()
			l.Info("test", tt.key, tt.value)

			if got := decodeEntry(t, buf)[tt.key]; got != redactedValue {
				t.Errorf("Key %q should be redacted, got %v", tt.key, got)
			}
		})
	}
}

func TestRedactSensitive_NormalValues(t *testing.T) {
	l, buf := newBufferLogger(t)

	l.Info("serving request", "path", "/api/", "remote", "192.0.2.1", "auth", true, "user_id", "abc")

	entry := decodeEntry(t, buf)
	if entry["path"] != "/api/" || entry["remote"] != "192.0.2.1" || entry["user_id"] != "abc" {
		t.Errorf("normal values were altered: %v", entry)
	}
	if entry["auth"] != true {
		t.Errorf("non-string values must not be redacted, got auth=%v", entry["auth"])
	}
}

func TestRedactSensitive_Group(t *testing.T) {
	l, buf := newBufferLogger(t)

	l.Info("config", slog.Group("security",
		slog.String("secret", "s3cr3t"),
		slog.String("name", "hub"),
	))

	security, ok := decodeEntry(t, buf)["security"].(map[string]any)
	if !ok {
		t.Fatal("expected security group in log")
	}
	if security["secret"] != redactedValue {
		t.Errorf("nested secret = %v, want redacted", security["secret"])
	}
	if security["name"] != "hub" {
		t.Errorf("nested name = %v, want hub", security["name"])
	}
}

func TestRedactString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"secret", "hubat_ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklm", "hubat_ABC...klm"},
		{"short secret", "hubat_ABCDEF", "hubat_***"},
		{"credential", "hubid_x:hubat_ABCDEFGHIJ", "hubid_x:hubat_ABC...HIJ"},
		{"token id", "hubid_01j9abcdef", "hubid_01j9abcdef"},
		{"normal value", "normalvalue123", "normalvalue123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RedactString(tt.input); got != tt.expected {
				t.Errorf("RedactString(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestIsSensitiveKey(t *testing.T) {
	tests := []struct {
		key       string
		sensitive bool
	}{
		{"password", true},
		{"PASSWORD", true},
		{"api_secret", true},
		{"auth_token", true},
		{"authorization", true},
		{"bearer", true},
		{"cookie", true},
		{"auth", false},
		{"user_id", false},
		{"request_id", false},
		{"remote", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := IsSensitiveKey(tt.key); got != tt.sensitive {
				t.Errorf("IsSensitiveKey(%q) = %v, want %v", tt.key, got, tt.sensitive)
			}
		})
	}
}

func TestIsSensitiveValue(t *testing.T) {
	tests := []struct {
		value     string
		sensitive bool
	}{
		{"hubat_abc123", true},
		{"id:hubat_abc123", true},
		{"hubid_abc123", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			if got := IsSensitiveValue(tt.value); got != tt.sensitive {
				t.Errorf("IsSensitiveValue(%q) = %v, want %v", tt.value, got, tt.sensitive)
			}
		})
	}
}
