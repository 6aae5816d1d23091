// Package statuscmder provides the status command for displaying the local
// gloss state: resolved directory, backend reachability, auth, and history.
package statuscmder

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/glosshq/gloss/pkg/chat"
	"github.com/glosshq/gloss/pkg/cliui"
	"github.com/glosshq/gloss/pkg/config"
	"github.com/glosshq/gloss/pkg/credentials"
	"github.com/glosshq/gloss/pkg/dotdir"
	"github.com/glosshq/gloss/pkg/history"
)

const pingTimeout = 3 * time.Second

type statusCommander struct {
	backend string

	configDir string

	cfg *config.Config
}

const statusLongDesc string = `Show the local gloss state.

Reads the resolved .gloss/ directory, checks whether the configured
backend answers its health endpoint, and reports the auth state and the
history driver with the number of saved messages per track.

Examples:
  gloss status
  gloss status --backend http://localhost:8787`

const statusShortDesc string = "Show the local gloss state"

func NewStatusCmd() *cobra.Command {
	cmder := &statusCommander{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: statusShortDesc,
		Long:  statusLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.DefaultFlags, []string{
				config.FlagBackend,
			})

			cmder.cfg = config.FromViper(v)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.DefaultFlags, config.FlagBackend, &cmder.backend)

	return cmd
}

func (c *statusCommander) run(ctx context.Context) error {
	fmt.Println()

	dir, err := dotdir.NewManager().Find(c.configDir)
	if err != nil {
		return fmt.Errorf("resolving gloss directory: %w", err)
	}
	if dir == "" {
		fmt.Printf("  %s  %s\n", cliui.KeyStyle.Render("Directory:"), cliui.DimStyle.Render("none yet (created on first use)"))
	} else {
		fmt.Printf("  %s  %s\n", cliui.KeyStyle.Render("Directory:"), cliui.ValueStyle.Render(dir))
	}

	c.printBackend(ctx)

	if err := c.printAuth(); err != nil {
		return err
	}

	if err := c.printHistory(ctx); err != nil {
		return err
	}

	fmt.Println()
	return nil
}

func (c *statusCommander) printBackend(ctx context.Context) {
	start := time.Now()
	err := ping(ctx, c.cfg.Backend.URL)
	elapsed := time.Since(start)

	if err != nil {
		fmt.Printf("  %s    %s %s %s\n",
			cliui.KeyStyle.Render("Backend:"),
			cliui.ValueStyle.Render(c.cfg.Backend.URL),
			cliui.FailMark,
			cliui.DimStyle.Render("unreachable"),
		)
		return
	}

	fmt.Printf("  %s    %s %s %s\n",
		cliui.KeyStyle.Render("Backend:"),
		cliui.ValueStyle.Render(c.cfg.Backend.URL),
		cliui.SuccessMark,
		cliui.DimStyle.Render(fmt.Sprintf("(%s)", cliui.FormatDuration(elapsed))),
	)
}

func (c *statusCommander) printAuth() error {
	if os.Getenv(credentials.EnvToken) != "" {
		fmt.Printf("  %s       %s\n", cliui.KeyStyle.Render("Auth:"), cliui.WarnStyle.Render(credentials.EnvToken+" (environment)"))
		return nil
	}

	mgr, err := credentials.NewManager(c.configDir)
	if err != nil {
		return fmt.Errorf("loading credentials: %w", err)
	}

	backends, err := mgr.ListBackends()
	if err != nil {
		return err
	}

	if len(backends) == 0 {
		fmt.Printf("  %s       %s\n", cliui.KeyStyle.Render("Auth:"), cliui.DimStyle.Render("anonymous"))
		return nil
	}

	fmt.Printf("  %s       %s\n", cliui.KeyStyle.Render("Auth:"), cliui.NameStyle.Render(fmt.Sprintf("%d stored token(s)", len(backends))))
	return nil
}

func (c *statusCommander) printHistory(ctx context.Context) error {
	driver := c.cfg.History.Driver
	if driver == "" {
		driver = history.DriverFile
	}

	hist, err := history.Open(ctx, c.cfg.History, c.configDir)
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	if hist == nil {
		fmt.Printf("  %s    %s\n", cliui.KeyStyle.Render("History:"), cliui.DimStyle.Render("off"))
		return nil
	}
	defer hist.Close()

	total := 0
	for _, track := range []chat.Track{chat.TrackStandard, chat.TrackResearch} {
		msgs, err := hist.LoadTrack(track)
		if err != nil {
			return fmt.Errorf("loading %s history: %w", track, err)
		}
		total += len(msgs)
	}

	fmt.Printf("  %s    %s %s\n",
		cliui.KeyStyle.Render("History:"),
		cliui.NameStyle.Render(driver),
		cliui.DimStyle.Render(fmt.Sprintf("(%d saved messages)", total)),
	)
	return nil
}

// ping checks the backend health endpoint.
func ping(ctx context.Context, baseURL string) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/ping", nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("backend returned %d", resp.StatusCode)
	}

	return nil
}
