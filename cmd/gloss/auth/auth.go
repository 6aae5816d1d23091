// Package authcmder provides the auth command for managing backend login
// tokens.
package authcmder

import (
	"github.com/spf13/cobra"
)

const authLongDesc string = `Manage backend login tokens.

Gloss works anonymously until a token is stored; deeper analysis and
per-client quotas need one. Tokens live in credentials.toml in the
.gloss/ directory with 0600 permissions, keyed by backend name. The
GLOSS_TOKEN environment variable overrides the stored token.

Examples:
  gloss auth login                 Prompt for the default backend's token
  gloss auth login staging         Prompt for the "staging" backend's token
  echo $TOKEN | gloss auth login   Pipe the token from stdin
  gloss auth logout
  gloss auth status`

const authShortDesc string = "Manage backend login tokens"

func NewAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: authShortDesc,
		Long:  authLongDesc,
	}

	cmd.AddCommand(newLoginCmd())
	cmd.AddCommand(newLogoutCmd())
	cmd.AddCommand(newStatusCmd())

	return cmd
}
