// Command hub-server runs the HTTP API hub.
//
// Without a command it serves; see "hub-server help" for the token and
// version commands.
package main

import (
	"os"

	"github.com/omriasta/core/internal/cli/command"
)

func main() {
	if err := command.App().Run(os.Args); err != nil {
		command.PrintError("%v", err)
		os.Exit(1)
	}
}
