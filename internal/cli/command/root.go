package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/omriasta/core/internal/infra/buildinfo"
	"github.com/omriasta/core/internal/infra/confloader"
	"github.com/omriasta/core/internal/server/config"
)

// App creates the CLI application. Without a command it serves.
func App() *cli.App {
	return &cli.App{
		Name:           "hub-server",
		Usage:          "HTTP API hub exposing views and services",
		Version:        buildinfo.String(),
		Flags:          globalFlags(),
		DefaultCommand: "serve",
		Commands: []*cli.Command{
			ServeCommand(),
			TokenCommand(),
			VersionCommand(),
		},
	}
}

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "path to the YAML configuration file",
			EnvVars: []string{"HUB_CONFIG"},
		},
		&cli.StringFlag{
			Name:  "addr",
			Usage: "HTTP listen address (overrides server.http.addr)",
		},
		&cli.StringFlag{
			Name:  "socket",
			Usage: "Unix socket path for local access (overrides server.local.path)",
		},
		&cli.StringFlag{
			Name:  "router",
			Usage: "router implementation: mux or gorilla (overrides server.http.router)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "log level: debug, info, warn, error (overrides log.level)",
		},
		&cli.StringFlag{
			Name:  "log-format",
			Usage: "log format: json or text (overrides log.format)",
		},
	}
}

// flagOverrides maps explicitly set flags to configuration keys.
var flagOverrides = map[string]string{
	"addr":       "server.http.addr",
	"router":     "server.http.router",
	"socket":     "server.local.path",
	"log-level":  "log.level",
	"log-format": "log.format",
}

// loadConfig loads and verifies the configuration named by the global
// flags. The loader is returned for reloading.
func loadConfig(c *cli.Context) (*confloader.Loader, *config.ServerConfig, error) {
	overrides := make(map[string]any)
	for flag, key := range flagOverrides {
		if c.IsSet(flag) {
			overrides[key] = c.String(flag)
		}
	}

	loader := confloader.NewLoader(
		confloader.WithConfigFile(c.String("config")),
		confloader.WithOverrides(overrides),
	)

	cfg := config.Default()
	if err := loader.Load(cfg); err != nil {
		return nil, nil, err
	}
	if err := config.Verify(cfg); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return loader, cfg, nil
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
