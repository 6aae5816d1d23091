// Package historycmder provides the history command for inspecting,
// tailing, clearing, and exporting saved conversation tracks.
package historycmder

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/glosshq/gloss/pkg/chat"
	"github.com/glosshq/gloss/pkg/cliui"
	"github.com/glosshq/gloss/pkg/config"
	"github.com/glosshq/gloss/pkg/history"
	"github.com/glosshq/gloss/pkg/history/file"
)

type historyCommander struct {
	track  string
	follow bool
	driver string

	configDir string

	cfg *config.Config
}

const historyLongDesc string = `Show a saved conversation track.

Conversations persist between runs through the configured history driver
(file by default). Each track saves independently: "standard" holds
one-shot exchanges, "research" holds streamed research threads.

With --follow the command keeps running and prints messages as other gloss
processes append them. Following needs the file history driver, since it
tails the track's snapshot in the .gloss/ directory.

Examples:
  gloss history
  gloss history --track research
  gloss history --follow
  gloss history clear --track research
  gloss history export --track research --out notes.md`

const historyShortDesc string = "Show a saved conversation track"

func NewHistoryCmd() *cobra.Command {
	cmder := &historyCommander{}

	cmd := &cobra.Command{
		Use:   "history",
		Short: historyShortDesc,
		Long:  historyLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			cmder.configDir, _ = cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(cmder.configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			config.BindRegisteredFlags(v, cmd, config.DefaultFlags, []string{
				config.FlagHistoryDriver,
			})

			cmder.cfg = config.FromViper(v)
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd.Context())
		},
	}

	cmd.Flags().StringVarP(&cmder.track, "track", "t", string(chat.TrackStandard), "Conversation track (standard or research)")
	cmd.Flags().BoolVarP(&cmder.follow, "follow", "f", false, "Keep running and print new messages as they save")
	config.AddStringFlag(cmd, config.DefaultFlags, config.FlagHistoryDriver, &cmder.driver)
	_ = cmd.RegisterFlagCompletionFunc("track", trackCompletions)

	cmd.AddCommand(newClearCmd())
	cmd.AddCommand(newExportCmd())

	return cmd
}

func (c *historyCommander) run(ctx context.Context) error {
	track, err := parseTrack(c.track)
	if err != nil {
		return err
	}

	store, err := history.Open(ctx, c.cfg.History, c.configDir)
	if err != nil {
		return err
	}
	if store == nil {
		fmt.Printf("\n  %s\n\n", cliui.DimStyle.Render("History is disabled (history.driver = none)."))
		return nil
	}
	defer store.Close()

	msgs, err := store.LoadTrack(track)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  %s %s %s\n\n",
		cliui.KeyStyle.Render("Track:"),
		cliui.NameStyle.Render(string(track)),
		cliui.DimStyle.Render(fmt.Sprintf("(%d messages, %s driver)", len(msgs), driverName(c.cfg.History.Driver))),
	)

	if len(msgs) == 0 && !c.follow {
		fmt.Printf("  %s\n\n", cliui.DimStyle.Render("No saved messages on this track yet."))
		return nil
	}

	for _, msg := range msgs {
		printMessage(msg)
	}

	if !c.follow {
		return nil
	}

	return c.followTrack(ctx, store, track, len(msgs))
}

// followTrack blocks and prints messages appended to the track's snapshot
// by other gloss processes. Only the file driver exposes a path to watch.
func (c *historyCommander) followTrack(ctx context.Context, store history.Store, track chat.Track, printed int) error {
	fileStore, ok := store.(*file.Store)
	if !ok {
		return fmt.Errorf("--follow needs the file history driver, not %q", c.cfg.History.Driver)
	}

	path, err := fileStore.TrackPath(track)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating history watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory rather than the snapshot itself: the file may not
	// exist yet, and watching the parent survives its first creation.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching history dir: %w", err)
	}

	fmt.Printf("  %s\n\n", cliui.DimStyle.Render(fmt.Sprintf("Following %s (Ctrl+C stops)", path)))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event := <-watcher.Events:
			if filepath.Clean(event.Name) != filepath.Clean(path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}

			msgs, err := store.LoadTrack(track)
			if err != nil {
				return err
			}

			if len(msgs) < printed {
				fmt.Printf("  %s\n\n", cliui.DimStyle.Render("Track cleared."))
				printed = 0
			}

			for _, msg := range msgs[printed:] {
				printMessage(msg)
			}
			printed = len(msgs)

		case err := <-watcher.Errors:
			return fmt.Errorf("history watcher error: %w", err)
		}
	}
}

// printMessage renders one saved message as an indented block with the
// speaker label, timestamp, content, and answer metadata.
func printMessage(msg chat.Message) {
	header := cliui.RoleLabel(msg.Role)
	if !msg.Timestamp.IsZero() {
		header += "  " + cliui.DimStyle.Render(msg.Timestamp.Local().Format("2006-01-02 15:04"))
	}
	fmt.Printf("  %s\n", header)

	content := strings.TrimSpace(msg.Content)
	if content == "" {
		content = cliui.DimStyle.Render("(no content)")
	}
	for _, line := range strings.Split(content, "\n") {
		fmt.Printf("  %s\n", line)
	}

	if meta := cliui.AnswerMeta(msg.Model, msg.Route, msg.Confidence); meta != "" {
		fmt.Printf("  %s\n", meta)
	}
	if msg.DeeperAnalysis != "" {
		fmt.Printf("  %s\n", cliui.DimStyle.Render("includes deeper analysis (gloss history export keeps it)"))
	}

	fmt.Println()
}

// parseTrack maps a --track value onto a conversation track.
func parseTrack(name string) (chat.Track, error) {
	switch name {
	case "", string(chat.TrackStandard):
		return chat.TrackStandard, nil
	case string(chat.TrackResearch):
		return chat.TrackResearch, nil
	default:
		return "", fmt.Errorf("unknown track: %q (available: standard, research)", name)
	}
}

// trackCompletions offers the track names for --track flag completion.
func trackCompletions(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{string(chat.TrackStandard), string(chat.TrackResearch)}, cobra.ShellCompDirectiveNoFileComp
}

func driverName(driver string) string {
	if driver == "" {
		return history.DriverFile
	}
	return driver
}
