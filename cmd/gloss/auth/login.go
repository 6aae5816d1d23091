package authcmder

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/glosshq/gloss/pkg/cliui"
	"github.com/glosshq/gloss/pkg/credentials"
)

const loginLongDesc string = `Store a bearer token for a backend.

The token is read with echo disabled when stdin is a terminal, or from the
first line of piped input otherwise. It lands in credentials.toml with
0600 permissions and rides as an Authorization header on every request to
that backend from then on.

Examples:
  gloss auth login
  gloss auth login staging
  echo $TOKEN | gloss auth login`

const loginShortDesc string = "Store a bearer token for a backend"

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login [backend]",
		Short: loginShortDesc,
		Long:  loginLongDesc,
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runLogin(backendArg(args), configDir)
		},
	}

	return cmd
}

func runLogin(backend, configDir string) error {
	token, err := readToken(backend)
	if err != nil {
		return err
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("token cannot be empty")
	}

	mgr, err := credentials.NewManager(configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	if err := mgr.SetToken(backend, token); err != nil {
		return err
	}

	fmt.Printf("\n  %s Stored token for %s %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(backend),
		cliui.DimStyle.Render("("+mgr.GetTarget()+")"),
	)

	return nil
}

// backendArg maps an optional positional backend name onto the default.
func backendArg(args []string) string {
	if len(args) == 0 {
		return credentials.DefaultBackend
	}
	return strings.ToLower(strings.TrimSpace(args[0]))
}

// readToken reads a token from stdin. Piped input yields the first line;
// an interactive terminal prompts with echo disabled.
func readToken(backend string) (string, error) {
	fi, err := os.Stdin.Stat()
	if err != nil {
		return "", fmt.Errorf("checking stdin: %w", err)
	}

	// Piped input
	if (fi.Mode() & os.ModeCharDevice) == 0 {
		scanner := bufio.NewScanner(os.Stdin)
		if scanner.Scan() {
			return scanner.Text(), nil
		}
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return "", errors.New("no input received on stdin")
	}

	// Interactive terminal
	fmt.Printf("Enter token for %s: ", backend)

	tokenBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println() // newline after hidden input
	if err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}

	return string(tokenBytes), nil
}
