// Package feedbackcmder provides the feedback command for voting on the
// most recent answer.
package feedbackcmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glosshq/gloss/pkg/bootstrap"
	"github.com/glosshq/gloss/pkg/chat"
	"github.com/glosshq/gloss/pkg/client"
	"github.com/glosshq/gloss/pkg/cliui"
	"github.com/glosshq/gloss/pkg/config"
	"github.com/glosshq/gloss/pkg/utils"
)

type feedbackCommander struct {
	backend string
	up      bool
	down    bool

	configDir string
	debug     bool

	cfg *config.Config
}

const feedbackLongDesc string = `Vote on the most recent answer.

Sends a positive or negative vote for the last completed exchange on the
standard track to the backend's feedback endpoint. Delivery happens in the
background; the command returns once the vote is queued and drained.

Examples:
  gloss feedback --up
  gloss feedback --down`

const feedbackShortDesc string = "Vote on the most recent answer"

func NewFeedbackCmd() *cobra.Command {
	cmder := &feedbackCommander{}

	cmd := &cobra.Command{
		Use:   "feedback",
		Short: feedbackShortDesc,
		Long:  feedbackLongDesc,
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
	cmd.Flags().BoolVar(&cmder.up, "up", false, "Vote the answer up")
	cmd.Flags().BoolVar(&cmder.down, "down", false, "Vote the answer down")
	cmd.MarkFlagsMutuallyExclusive("up", "down")

	return cmd
}

func (c *feedbackCommander) run(ctx context.Context) error {
	if !c.up && !c.down {
		return fmt.Errorf("pick a direction: --up or --down")
	}

	vote := client.VotePositive
	if c.down {
		vote = client.VoteNegative
	}

	app, err := bootstrap.Load(ctx, bootstrap.Options{
		ConfigDir: c.configDir,
		Debug:     c.debug,
		Config:    c.cfg,
	})
	if err != nil {
		return err
	}
	defer app.Close()

	question, answer, found := lastExchange(app.Store.Messages(chat.TrackStandard))
	if !found {
		return fmt.Errorf("no saved answer to vote on; ask something first with gloss ask or gloss chat")
	}

	app.Client.Feedback(question, answer.Content, vote)

	fmt.Printf("\n  %s Sent %s feedback on the last answer.\n",
		cliui.SuccessMark,
		string(vote),
	)
	fmt.Printf("  %s\n\n", cliui.PreviewStyle.Render(utils.Truncate(answer.Content, 80)))

	return nil
}

// lastExchange returns the question and answer of the most recent settled
// exchange. The question is the closest user message before the answer.
func lastExchange(msgs []chat.Message) (string, chat.Message, bool) {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role != chat.RoleAssistant || msgs[i].IsStreaming {
			continue
		}

		question := ""
		for j := i - 1; j >= 0; j-- {
			if msgs[j].Role == chat.RoleUser {
				question = msgs[j].Content
				break
			}
		}

		return question, msgs[i], true
	}

	return "", chat.Message{}, false
}
