// Package config defines the hub server configuration.
//
//   - spec.go: ServerConfig and its sections
//   - default.go: default values
//   - verify.go: validation with ozzo-validation
//   - sanitize.go: a copy safe to log
//
// Values are loaded by internal/infra/confloader from the YAML file,
// HUB_ environment variables and flags.
package config
