package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/omriasta/core/internal/cli/output"
	"github.com/omriasta/core/internal/core/domain"
)

// TokenCommand mints an access token. The credential is printed once; only
// the entry for security.access_tokens needs to go into the configuration.
func TokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "mint an access token",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "user-id",
				Usage:    "ID of the user the token authenticates",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "user-name",
				Usage: "display name of the user",
			},
			&cli.BoolFlag{
				Name:  "admin",
				Usage: "grant administrator rights",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "output format: yaml or json",
				Value:   "yaml",
			},
		},
		Action: mintToken,
	}
}

type tokenEntry struct {
	ID         string `json:"id" yaml:"id"`
	UserID     string `json:"user_id" yaml:"user_id"`
	UserName   string `json:"user_name,omitempty" yaml:"user_name,omitempty"`
	Admin      bool   `json:"admin" yaml:"admin"`
	SecretHash string `json:"secret_hash" yaml:"secret_hash"`
}

type mintedToken struct {
	Credential  string     `json:"credential"`
	AccessToken tokenEntry `json:"access_token"`
}

func mintToken(c *cli.Context) error {
	f, err := output.NewFormatter(c.String("output"))
	if err != nil {
		return err
	}

	userName := c.String("user-name")
	if userName == "" {
		userName = c.String("user-id")
	}
	token, secret, err := domain.NewAccessToken(c.String("user-id"), userName, c.Bool("admin"))
	if err != nil {
		return fmt.Errorf("mint token: %w", err)
	}

	entry := tokenEntry{
		ID:         token.ID,
		UserID:     token.UserID,
		UserName:   token.UserName,
		Admin:      token.Admin,
		SecretHash: token.SecretHash,
	}
	credential := token.ID + ":" + secret

	w := c.App.Writer
	if _, isYAML := f.(output.YAMLFormatter); isYAML {
		fmt.Fprintf(w, "# Authorization: Bearer %s\n", credential)
		fmt.Fprintln(w, "# The credential is not stored; copy it now.")
		return f.Format(w, map[string]any{
			"security": map[string]any{
				"access_tokens": []tokenEntry{entry},
			},
		})
	}
	return f.Format(w, mintedToken{Credential: credential, AccessToken: entry})
}
