package authcmder

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/glosshq/gloss/pkg/cliui"
	"github.com/glosshq/gloss/pkg/credentials"
)

const statusLongDesc string = `Show which backends have stored tokens.

Tokens themselves are never printed. When GLOSS_TOKEN is set it overrides
every stored token, and the output says so.

Examples:
  gloss auth status`

const statusShortDesc string = "Show which backends have stored tokens"

func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: statusShortDesc,
		Long:  statusLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runStatus(configDir)
		},
	}

	return cmd
}

func runStatus(configDir string) error {
	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	backends, err := mgr.ListBackends()
	if err != nil {
		return err
	}

	fmt.Println()

	if env := os.Getenv(credentials.EnvToken); env != "" {
		fmt.Printf("  %s %s\n\n",
			cliui.WarnStyle.Render("!"),
			cliui.DimStyle.Render(credentials.EnvToken+" is set and overrides stored tokens."),
		)
	}

	if len(backends) == 0 {
		fmt.Printf("  %s No stored tokens. Requests are anonymous.\n", cliui.DimStyle.Render("●"))
		fmt.Printf("  Use 'gloss auth login' to store one.\n\n")
		return nil
	}

	fmt.Printf("  %s\n\n", cliui.HeaderStyle.Render("Stored tokens"))
	for _, backend := range backends {
		fmt.Printf("  %s  %s\n", cliui.SuccessMark, cliui.NameStyle.Render(backend))
	}
	fmt.Printf("\n  %s\n\n", cliui.DimStyle.Render(mgr.GetTarget()))

	return nil
}
