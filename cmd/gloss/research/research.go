// Package researchcmder provides the research command for streamed answers
// with outline, status transitions, and the optional deeper sub-session.
package researchcmder

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/glosshq/gloss/pkg/bootstrap"
	"github.com/glosshq/gloss/pkg/chat"
	"github.com/glosshq/gloss/pkg/client"
	"github.com/glosshq/gloss/pkg/cliui"
	"github.com/glosshq/gloss/pkg/config"
)

type researchCommander struct {
	backend     string
	articlePath string
	deeper      bool
	plain       bool

	configDir string
	debug     bool

	cfg *config.Config
}

const researchLongDesc string = `Stream a research answer about the article.

The question goes to the backend's streaming endpoint. Status transitions
print as the backend works; the final answer follows with its outline and
metadata. Research turns share a session, so asking again continues the
same thread and --deeper expands the latest answer through the
deeper-analysis sub-session.

Examples:
  gloss research "What is the article's main claim?"
  gloss research --deeper "How strong is the evidence?"
  gloss research --article notes.md "Does this match my reading?"`

const researchShortDesc string = "Stream a research answer about the article"

func NewResearchCmd() *cobra.Command {
	cmder := &researchCommander{}

	cmd := &cobra.Command{
		Use:   "research <question>",
		Short: researchShortDesc,
		Long:  researchLongDesc,
		Args:  cobra.ExactArgs(1),
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
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %w", err)
			}

			return cmder.run(cmd.Context(), args[0])
		},
	}

	config.AddStringFlag(cmd, config.DefaultFlags, config.FlagBackend, &cmder.backend)
	cmd.Flags().StringVar(&cmder.articlePath, "article", "", "Read article text from a file and send it with the question")
	cmd.Flags().BoolVar(&cmder.deeper, "deeper", false, "Follow the answer with a deeper-analysis sub-session")
	cmd.Flags().BoolVar(&cmder.plain, "plain", false, "Print the answer without markdown rendering")

	return cmd
}

func (c *researchCommander) run(ctx context.Context, question string) error {
	var opts []client.ResearchOption
	if c.articlePath != "" {
		text, err := os.ReadFile(c.articlePath)
		if err != nil {
			return fmt.Errorf("reading article file: %w", err)
		}
		opts = append(opts, client.WithArticle(string(text)))
	}

	var remaining = -1
	app, err := bootstrap.Load(ctx, bootstrap.Options{
		ConfigDir: c.configDir,
		Debug:     c.debug,
		Config:    c.cfg,
		Quota: func(left int, _ string) {
			remaining = left
		},
	})
	if err != nil {
		return err
	}
	defer app.Close()

	fmt.Println()

	// Status transitions print as the stream patches the placeholder. The
	// observer fires from the stream consumer; nothing else writes stdout
	// until the turn finishes, so lines never interleave.
	var lastStatus string
	app.Store.Subscribe(func(track chat.Track, msgs []chat.Message) {
		if track != chat.TrackResearch || len(msgs) == 0 {
			return
		}

		last := msgs[len(msgs)-1]
		if !last.IsStreaming || last.StreamingStatus == "" || last.StreamingStatus == lastStatus {
			return
		}

		lastStatus = last.StreamingStatus
		fmt.Printf("  %s %s\n", cliui.DimStyle.Render("·"), cliui.StatusStyle.Render(lastStatus))
	})

	turn, err := app.Client.Research(ctx, question, opts...)
	if err != nil {
		return err
	}

	if err := turn.Wait(ctx); err != nil {
		fmt.Printf("\n  %s %v\n\n", cliui.FailMark, err)
		return fmt.Errorf("research turn failed: %w", err)
	}

	final, ok := app.Store.Message(turn.Track(), turn.Index())
	if !ok {
		return fmt.Errorf("turn finished but its message is gone")
	}

	fmt.Printf("\n  %s\n\n", cliui.RoleLabel(chat.RoleAssistant))
	c.printMarkdown(final.Content)

	if len(final.Outline) > 0 {
		fmt.Printf("  %s\n", cliui.HeaderStyle.Render("Outline"))
		for _, point := range final.Outline {
			fmt.Printf("  %s %s\n", cliui.DimStyle.Render("-"), point)
		}
		fmt.Println()
	}

	if meta := cliui.AnswerMeta(final.Model, final.Route, final.Confidence); meta != "" {
		fmt.Printf("  %s\n", meta)
	}
	if remaining >= 0 {
		fmt.Printf("  %s\n", cliui.DimStyle.Render(fmt.Sprintf("%d answers remaining", remaining)))
	}

	if c.deeper {
		return c.runDeeper(ctx, app, turn)
	}

	if final.CanGoDeeper && final.DeeperSuggestion != "" {
		fmt.Printf("  %s\n",
			cliui.DimStyle.Render(fmt.Sprintf("Go deeper with --deeper: %s", final.DeeperSuggestion)))
	}
	fmt.Println()

	return nil
}

// runDeeper follows the finished turn with the deeper-analysis sub-session.
func (c *researchCommander) runDeeper(ctx context.Context, app *bootstrap.App, turn *client.Turn) error {
	fmt.Println()

	deeperTurn, err := app.Client.Deeper(ctx, turn.Track(), turn.Index())
	if err != nil {
		return err
	}
	if deeperTurn == nil {
		fmt.Printf("  %s\n\n", cliui.DimStyle.Render(
			"Deeper analysis needs a completed session and a stored login (gloss auth login)."))
		return nil
	}

	err = cliui.Step(os.Stdout, "Going deeper", func() error {
		return deeperTurn.Wait(ctx)
	})
	if err != nil {
		return fmt.Errorf("deeper analysis failed: %w", err)
	}

	final, ok := app.Store.Message(deeperTurn.Track(), deeperTurn.Index())
	if !ok || final.DeeperAnalysis == "" {
		fmt.Printf("  %s\n\n", cliui.DimStyle.Render("The backend sent no deeper analysis."))
		return nil
	}

	fmt.Println()
	c.printMarkdown(final.DeeperAnalysis)

	return nil
}

func (c *researchCommander) printMarkdown(content string) {
	if !c.plain {
		if rendered, err := cliui.RenderMarkdown(content); err == nil {
			fmt.Println(strings.TrimRight(rendered, "\n"))
			fmt.Println()
			return
		}
	}

	fmt.Printf("  %s\n\n", content)
}
