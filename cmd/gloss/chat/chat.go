// Package chatcmder provides the chat command for interactive conversations
// with the configured gloss backend.
package chatcmder

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/glosshq/gloss/pkg/bootstrap"
	"github.com/glosshq/gloss/pkg/chat"
	"github.com/glosshq/gloss/pkg/cliui"
	"github.com/glosshq/gloss/pkg/config"
)

var (
	userPrompt     = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true).Render("you> ")
	researchPrompt = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true).Render("you(research)> ")
)

type chatCommander struct {
	backend string

	configDir string
	debug     bool

	cfg *config.Config

	researchMode bool
	streaming    bool
}

const chatLongDesc string = `Start an interactive conversation about the article.

Messages go to the backend's standard chat endpoint. Toggle research mode
with /research to stream answers with outline and status transitions
instead; research turns share a session, so follow-up questions continue
the same thread.

Commands inside the session:
  /research   Toggle between standard and research mode
  /deeper     Expand the latest research answer
  /clear      Clear the active track's conversation
  /exit       Leave the session (Ctrl+D also works)

Examples:
  gloss chat
  gloss chat --backend http://localhost:8787`

const chatShortDesc string = "Interactive conversation about the article"

func NewChatCmd() *cobra.Command {
	cmder := &chatCommander{}

	cmd := &cobra.Command{
		Use:   "chat",
		Short: chatShortDesc,
		Long:  chatLongDesc,
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

func (c *chatCommander) run(ctx context.Context) error {
	app, err := bootstrap.Load(ctx, bootstrap.Options{
		ConfigDir: c.configDir,
		Debug:     c.debug,
		Config:    c.cfg,
	})
	if err != nil {
		return err
	}
	defer app.Close()

	// Status transitions print between the prompt and the answer while a
	// research turn streams.
	var lastStatus string
	app.Store.Subscribe(func(track chat.Track, msgs []chat.Message) {
		if !c.streaming || track != chat.TrackResearch || len(msgs) == 0 {
			return
		}

		last := msgs[len(msgs)-1]
		if !last.IsStreaming || last.StreamingStatus == "" || last.StreamingStatus == lastStatus {
			return
		}

		lastStatus = last.StreamingStatus
		fmt.Printf("  %s %s\n", cliui.DimStyle.Render("·"), cliui.StatusStyle.Render(lastStatus))
	})

	fmt.Println()
	fmt.Printf("  %s %s\n",
		cliui.KeyStyle.Render("Backend:"),
		cliui.NameStyle.Render(c.cfg.Backend.URL),
	)
	if n := app.Store.Len(chat.TrackStandard) + app.Store.Len(chat.TrackResearch); n > 0 {
		fmt.Printf("  %s %s\n",
			cliui.SuccessMark,
			cliui.DimStyle.Render(fmt.Sprintf("Restored %d saved messages", n)),
		)
	}
	fmt.Printf("\n  %s\n\n", cliui.DimStyle.Render("Type a question and press Enter. /research toggles streaming mode, /exit or Ctrl+D quits."))

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(c.prompt())
		if !scanner.Scan() {
			// EOF or error
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			if exit := c.command(ctx, app, input); exit {
				break
			}
			continue
		}

		if c.researchMode {
			c.researchTurn(ctx, app, input, &lastStatus)
		} else {
			c.askTurn(ctx, app, input)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	fmt.Println()
	return nil
}

func (c *chatCommander) prompt() string {
	if c.researchMode {
		return researchPrompt
	}
	return userPrompt
}

// command handles one slash command and reports whether the loop should end.
func (c *chatCommander) command(ctx context.Context, app *bootstrap.App, input string) bool {
	switch input {
	case "/exit":
		return true

	case "/research":
		c.researchMode = !c.researchMode
		if c.researchMode {
			fmt.Printf("  %s\n\n", cliui.DimStyle.Render("Research mode on. Answers stream with outline and status."))
		} else {
			fmt.Printf("  %s\n\n", cliui.DimStyle.Render("Research mode off. Answers come back in one shot."))
		}

	case "/clear":
		track := chat.TrackStandard
		if c.researchMode {
			track = chat.TrackResearch
		}
		app.Store.Clear(track)
		fmt.Printf("  %s Cleared the %s track.\n\n", cliui.SuccessMark, string(track))

	case "/deeper":
		c.deeperTurn(ctx, app)

	default:
		fmt.Printf("  %s Unknown command %q. Commands: /research, /deeper, /clear, /exit\n\n",
			cliui.WarnStyle.Render("!"), input)
	}

	return false
}

// askTurn runs one standard exchange.
func (c *chatCommander) askTurn(ctx context.Context, app *bootstrap.App, question string) {
	answer, err := app.Client.Ask(ctx, question)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  %s %v\n\n", cliui.FailMark, err)
		return
	}

	c.printAnswer(answer)
}

// researchTurn runs one streaming exchange.
func (c *chatCommander) researchTurn(ctx context.Context, app *bootstrap.App, question string, lastStatus *string) {
	c.streaming = true
	*lastStatus = ""

	turn, err := app.Client.Research(ctx, question)
	if err != nil {
		c.streaming = false
		fmt.Fprintf(os.Stderr, "  %s %v\n\n", cliui.FailMark, err)
		return
	}

	err = turn.Wait(ctx)
	c.streaming = false
	if err != nil {
		fmt.Fprintf(os.Stderr, "  %s %v\n\n", cliui.FailMark, err)
		return
	}

	final, ok := app.Store.Message(turn.Track(), turn.Index())
	if !ok {
		return
	}

	c.printAnswer(final)
	if final.CanGoDeeper && final.DeeperSuggestion != "" {
		fmt.Printf("  %s\n\n",
			cliui.DimStyle.Render(fmt.Sprintf("Try /deeper: %s", final.DeeperSuggestion)))
	}
}

// deeperTurn expands the latest research answer.
func (c *chatCommander) deeperTurn(ctx context.Context, app *bootstrap.App) {
	msgs := app.Store.Messages(chat.TrackResearch)
	index := lastAssistantIndex(msgs)
	if index < 0 {
		fmt.Printf("  %s\n\n", cliui.DimStyle.Render("No research answer to expand yet. Toggle /research and ask first."))
		return
	}

	turn, err := app.Client.Deeper(ctx, chat.TrackResearch, index)
	if err != nil {
		fmt.Fprintf(os.Stderr, "  %s %v\n\n", cliui.FailMark, err)
		return
	}
	if turn == nil {
		fmt.Printf("  %s\n\n", cliui.DimStyle.Render(
			"Deeper analysis needs a completed session and a stored login (gloss auth login)."))
		return
	}

	err = cliui.Step(os.Stdout, "Going deeper", func() error {
		return turn.Wait(ctx)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "  %s %v\n\n", cliui.FailMark, err)
		return
	}

	final, ok := app.Store.Message(turn.Track(), turn.Index())
	if !ok || final.DeeperAnalysis == "" {
		fmt.Printf("  %s\n\n", cliui.DimStyle.Render("The backend sent no deeper analysis."))
		return
	}

	fmt.Println()
	c.printMarkdown(final.DeeperAnalysis)
}

func (c *chatCommander) printAnswer(msg chat.Message) {
	fmt.Printf("\n  %s\n\n", cliui.RoleLabel(chat.RoleAssistant))
	c.printMarkdown(msg.Content)

	if meta := cliui.AnswerMeta(msg.Model, msg.Route, msg.Confidence); meta != "" {
		fmt.Printf("  %s\n\n", meta)
	}
}

func (c *chatCommander) printMarkdown(content string) {
	if rendered, err := cliui.RenderMarkdown(content); err == nil {
		fmt.Println(strings.TrimRight(rendered, "\n"))
		fmt.Println()
		return
	}

	fmt.Printf("  %s\n\n", content)
}

// lastAssistantIndex finds the most recent assistant message, skipping any
// that are still streaming.
func lastAssistantIndex(msgs []chat.Message) int {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == chat.RoleAssistant && !msgs[i].IsStreaming {
			return i
		}
	}
	return -1
}
