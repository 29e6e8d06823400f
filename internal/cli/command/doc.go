// Package command defines the hub-server command line with urfave/cli/v2.
//
//   - root.go: the application and its global flags
//   - serve.go: run the HTTP server (the default command)
//   - token.go: mint an access token for the configuration
//   - version.go: print build information
package command
