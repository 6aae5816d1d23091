// Package tuicmder provides the full-screen conversation view.
package tuicmder

import (
	"context"
	"fmt"
	"io"

	bubbletea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/glosshq/gloss/pkg/bootstrap"
	"github.com/glosshq/gloss/pkg/chat"
	"github.com/glosshq/gloss/pkg/config"
)

const tuiLongDesc string = `Open a full-screen conversation view.

The transcript fills the screen and a prompt sits at the bottom. Tab
switches between standard and research mode; research answers stream
their outline and status transitions into the transcript as they
arrive.

Key bindings:
  enter    Send the question
  tab      Toggle standard/research mode
  ctrl+g   Expand the latest research answer
  ctrl+l   Clear the active track
  up/down  Scroll the transcript
  esc      Quit

Examples:
  gloss tui
  gloss tui --backend http://localhost:8787
`

const tuiShortDesc string = "Full-screen conversation view"

type tuiCommander struct {
	backend string

	configDir string
	debug     bool

	cfg *config.Config
}

func NewTUICmd() *cobra.Command {
	cmder := &tuiCommander{}

	cmd := &cobra.Command{
		Use:   "tui",
		Short: tuiShortDesc,
		Long:  tuiLongDesc,
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
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(cmd.Context())
		},
	}

	config.AddStringFlag(cmd, config.DefaultFlags, config.FlagBackend, &cmder.backend)

	return cmd
}

func (c *tuiCommander) run(ctx context.Context) error {
	// Logs would tear the alt screen apart, so the TUI drops them.
	var program *bubbletea.Program
	app, err := bootstrap.Load(ctx, bootstrap.Options{
		ConfigDir: c.configDir,
		Debug:     c.debug,
		Config:    c.cfg,
		LogWriter: io.Discard,
		// Quota updates only fire from turns launched on the loop, after
		// program is set.
		Quota: func(remaining int, _ string) {
			if program != nil {
				program.Send(quotaMsg{remaining: remaining})
			}
		},
	})
	if err != nil {
		return err
	}
	defer app.Close()

	program = bubbletea.NewProgram(newTUIModel(app, c.cfg.Backend.URL),
		bubbletea.WithContext(ctx),
		bubbletea.WithAltScreen(),
	)

	// Send blocks until the loop picks the message up, so store mutations
	// must never happen on the loop itself; every store write in this
	// package goes through a Cmd.
	app.Store.Subscribe(func(track chat.Track, msgs []chat.Message) {
		program.Send(transcriptMsg{track: track, msgs: msgs})
	})

	_, err = program.Run()
	return err
}
