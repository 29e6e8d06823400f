package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/omriasta/core/internal/cli/output"
	"github.com/omriasta/core/internal/infra/buildinfo"
)

// VersionCommand prints build information.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "print build information",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output format: text, json or yaml",
				Value:   "text",
			},
		},
		Action: func(c *cli.Context) error {
			format := c.String("output")
			if format == "text" {
				_, err := fmt.Fprintf(c.App.Writer, "%s %s\n", c.App.Name, buildinfo.String())
				return err
			}
			f, err := output.NewFormatter(format)
			if err != nil {
				return err
			}
			return f.Format(c.App.Writer, buildinfo.Get())
		},
	}
}
