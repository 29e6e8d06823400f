package output

import (
	"bytes"
	"strings"
	"testing"
)

type sample struct {
	Name  string   `json:"name" yaml:"name"`
	Tags  []string `json:"tags" yaml:"tags"`
	Admin bool     `json:"admin" yaml:"admin"`
}

func TestNewFormatter(t *testing.T) {
	tests := []struct {
		format  string
		want    string
		wantErr bool
	}{
		{"json", "json", false},
		{"JSON", "json", false},
		{"yaml", "yaml", false},
		{"yml", "yaml", false},
		{"table", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			f, err := NewFormatter(tt.format)
			if tt.wantErr {
				if err == nil {
					t.Fatal("NewFormatter() expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("NewFormatter() error = %v", err)
			}
			switch f.(type) {
			case JSONFormatter:
				if tt.want != "json" {
					t.Errorf("got JSONFormatter, want %s", tt.want)
				}
			case YAMLFormatter:
				if tt.want != "yaml" {
					t.Errorf("got YAMLFormatter, want %s", tt.want)
				}
			}
		})
	}
}

func TestJSONFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	data := sample{Name: "tok", Tags: []string{"a"}, Admin: true}
	if err := (JSONFormatter{}).Format(&buf, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	want := "{\n  \"name\": \"tok\",\n  \"tags\": [\n    \"a\"\n  ],\n  \"admin\": true\n}\n"
	if buf.String() != want {
		t.Errorf("Format() =\n%s\nwant\n%s", buf.String(), want)
	}
}

func TestYAMLFormatter_Format(t *testing.T) {
	var buf bytes.Buffer
	data := map[string]any{
		"security": map[string]any{
			"access_tokens": []sample{{Name: "tok", Tags: []string{"a"}}},
		},
	}
	if err := (YAMLFormatter{}).Format(&buf, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	got := buf.String()
	for _, want := range []string{"security:\n", "  access_tokens:\n", "name: tok", "admin: false"} {
		if !strings.Contains(got, want) {
			t.Errorf("Format() output missing %q:\n%s", want, got)
		}
	}
}
