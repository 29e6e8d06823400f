// Package confloader loads the hub configuration with koanf.
//
// Sources are merged in order, later sources overriding earlier ones:
//
//  1. Defaults already present in the target struct
//  2. The YAML configuration file
//  3. Environment variables (HUB_ prefix)
//  4. Maps supplied by the caller, typically command-line flags
//
// Environment variable names separate nesting levels with a double
// underscore so that keys may themselves contain underscores:
//
//	HUB_SERVER__HTTP__TLS_CERT_FILE=/etc/hub/tls.crt  ->  server.http.tls_cert_file
//
// Values containing commas are split into lists.
//
// Watcher reports changes to the configuration file so it can be reloaded
// at runtime.
package confloader
