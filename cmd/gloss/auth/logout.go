package authcmder

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glosshq/gloss/pkg/cliui"
	"github.com/glosshq/gloss/pkg/credentials"
)

const logoutLongDesc string = `Remove a backend's stored token.

Requests to that backend go back to being anonymous. Deleting is
idempotent: logging out of a backend that holds no token succeeds.

Examples:
  gloss auth logout
  gloss auth logout staging`

const logoutShortDesc string = "Remove a backend's stored token"

func newLogoutCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logout [backend]",
		Short: logoutShortDesc,
		Long:  logoutLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runLogout(backendArg(args), configDir)
		},
	}

	return cmd
}

func runLogout(backend, configDir string) error {
	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	if err := mgr.RemoveToken(backend); err != nil {
		return err
	}

	fmt.Printf("\n  %s Removed token for %s.\n\n", cliui.SuccessMark, cliui.NameStyle.Render(backend))

	return nil
}
