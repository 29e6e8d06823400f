// Package tlsroots builds the TLS configuration of the hub HTTP server.
//
//   - roots.go: client CA pools for mutual TLS
//   - watcher.go: server certificate hot reload via fsnotify
//
// A Watcher serves the current key pair through tls.Config.GetCertificate,
// so a renewed certificate is picked up without restarting the listener.
package tlsroots
