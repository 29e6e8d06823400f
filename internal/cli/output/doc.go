// Package output renders hub-server command results as JSON or YAML.
package output
