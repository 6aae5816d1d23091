// Package askcmder provides the ask command for one-shot questions against
// the configured gloss backend.
package askcmder

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/glosshq/gloss/pkg/bootstrap"
	"github.com/glosshq/gloss/pkg/chat"
	"github.com/glosshq/gloss/pkg/cliui"
	"github.com/glosshq/gloss/pkg/config"
	"github.com/glosshq/gloss/pkg/utils"
)

type askCommander struct {
	backend   string
	topK      uint
	maxTokens uint
	plain     bool

	configDir string
	debug     bool

	cfg *config.Config
}

const askLongDesc string = `Ask a one-shot question about the article.

The question goes to the backend's standard chat endpoint and the answer
prints with its supporting sources and the backend's confidence score.
The exchange lands in the standard conversation track, so follow-up
commands like "gloss history" and "gloss feedback" see it.

Examples:
  gloss ask "What does the study actually measure?"
  gloss ask --top-k 8 "Which sources does the author lean on?"
  gloss ask --backend http://localhost:8787 "Summarize the method"`

const askShortDesc string = "Ask a one-shot question about the article"

func NewAskCmd() *cobra.Command {
	cmder := &askCommander{}

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: askShortDesc,
		Long:  askLongDesc,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.DefaultFlags, []string{
				config.FlagBackend,
				config.FlagTopK,
				config.FlagMaxTokens,
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
	config.AddUintFlag(cmd, config.DefaultFlags, config.FlagTopK, &cmder.topK)
	config.AddUintFlag(cmd, config.DefaultFlags, config.FlagMaxTokens, &cmder.maxTokens)
	cmd.Flags().BoolVar(&cmder.plain, "plain", false, "Print the answer without markdown rendering")

	return cmd
}

func (c *askCommander) run(ctx context.Context, question string) error {
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

	var answer chat.Message
	err = cliui.Step(os.Stdout, "Asking "+c.cfg.Backend.URL, func() error {
		var askErr error
		answer, askErr = app.Client.Ask(ctx, question)
		return askErr
	})
	if err != nil {
		return err
	}

	fmt.Printf("\n  %s\n\n", cliui.RoleLabel(chat.RoleAssistant))
	c.printAnswer(answer.Content)

	if len(answer.Sources) > 0 {
		fmt.Printf("  %s\n", cliui.HeaderStyle.Render("Sources"))
		for i, src := range answer.Sources {
			fmt.Printf("  %s %s %s\n",
				cliui.DimStyle.Render(fmt.Sprintf("%d.", i+1)),
				cliui.NameStyle.Render(src.Title),
				cliui.DimStyle.Render(fmt.Sprintf("(%.2f)", src.Score)),
			)
			if src.Excerpt != "" {
				fmt.Printf("     %s\n", cliui.PreviewStyle.Render(utils.Truncate(src.Excerpt, 96)))
			}
		}
		fmt.Println()
	}

	if meta := cliui.AnswerMeta(answer.Model, answer.Route, answer.Confidence); meta != "" {
		fmt.Printf("  %s\n", meta)
	}
	if remaining >= 0 {
		fmt.Printf("  %s\n", cliui.DimStyle.Render(fmt.Sprintf("%d answers remaining", remaining)))
	}
	fmt.Println()

	return nil
}

// printAnswer renders markdown unless --plain was given or rendering fails.
func (c *askCommander) printAnswer(content string) {
	if !c.plain {
		if rendered, err := cliui.RenderMarkdown(content); err == nil {
			fmt.Println(strings.TrimRight(rendered, "\n"))
			fmt.Println()
			return
		}
	}

	fmt.Printf("  %s\n\n", content)
}
