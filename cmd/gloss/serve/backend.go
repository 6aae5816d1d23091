package servecmder

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/glosshq/gloss/api"
	"github.com/glosshq/gloss/pkg/config"
)

type backendCommander struct {
	listen string
	quota  int
	delay  time.Duration

	configDir string
	debug     bool

	cfg *config.Config
}

const backendLongDesc string = `Run just the development backend.

The backend answers from a scripted playbook: standard questions get
canned chat responses, research questions stream outline and delta
events over SSE, and deeper-analysis requests replay a sub-session.
Every response is deterministic, so demos and integration tests see
the same conversation each run.

Examples:
  gloss serve backend
  gloss serve backend --listen :9000 --quota 5
  gloss serve backend --delay 150ms`

const backendShortDesc string = "Run just the development backend"

// NewBackendCmd builds the development backend command. The glossmock
// binary reuses it as its root command.
func NewBackendCmd() *cobra.Command {
	cmder := &backendCommander{}

	cmd := &cobra.Command{
		Use:   "backend",
		Short: backendShortDesc,
		Long:  backendLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.DefaultFlags, []string{
				config.FlagServeListen,
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

			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, config.DefaultFlags, config.FlagServeListen, &cmder.listen)
	cmd.Flags().IntVar(&cmder.quota, "quota", 0, "Answers served before the backend rejects with 429 (0 = server default)")
	cmd.Flags().DurationVar(&cmder.delay, "delay", 0, "Pause between SSE frames so streaming is visible (e.g. 150ms)")

	return cmd
}

func (c *backendCommander) run() error {
	log := newServeLogger(c.cfg, c.debug)

	backend := api.NewServer(api.Config{
		ListenAddr:   c.cfg.Serve.Listen,
		InitialQuota: c.quota,
		StreamDelay:  c.delay,
	}, log)

	return runUntilSignal(log, backend.Run, backend.Shutdown)
}
