package historycmder

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/glosshq/gloss/pkg/chat"
	"github.com/glosshq/gloss/pkg/cliui"
	"github.com/glosshq/gloss/pkg/config"
	"github.com/glosshq/gloss/pkg/export"
	"github.com/glosshq/gloss/pkg/history"
)

const exportLongDesc string = `Export a conversation track as markdown.

Writes the track as a standalone markdown document with a TOML frontmatter
block, one section per message, including outlines, sources, confidence,
and deeper analysis. Without --out the file lands in the current directory
as gloss-<track>-<date>.md.

Examples:
  gloss history export
  gloss history export --track research
  gloss history export --track research --out notes.md`

const exportShortDesc string = "Export a conversation track as markdown"

func newExportCmd() *cobra.Command {
	var (
		track string
		out   string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: exportShortDesc,
		Long:  exportLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runExport(cmd.Context(), track, out, configDir)
		},
	}

	cmd.Flags().StringVarP(&track, "track", "t", string(chat.TrackStandard), "Conversation track (standard or research)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output path (defaults to gloss-<track>-<date>.md)")
	_ = cmd.RegisterFlagCompletionFunc("track", trackCompletions)

	return cmd
}

func runExport(ctx context.Context, trackName, outPath, configDir string) error {
	track, err := parseTrack(trackName)
	if err != nil {
		return err
	}

	v, err := config.InitViper(configDir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	cfg := config.FromViper(v)

	store, err := history.Open(ctx, cfg.History, configDir)
	if err != nil {
		return err
	}
	if store == nil {
		fmt.Printf("\n  %s\n\n", cliui.DimStyle.Render("History is disabled (history.driver = none); nothing to export."))
		return nil
	}
	defer store.Close()

	msgs, err := store.LoadTrack(track)
	if err != nil {
		return err
	}

	if outPath == "" {
		outPath = export.DefaultFilename(track, time.Now())
	}

	if err := export.Write(outPath, track, msgs); err != nil {
		if errors.Is(err, export.ErrEmptyTrack) {
			fmt.Printf("\n  %s The %s track has no messages to export.\n\n", cliui.WarnStyle.Render("!"), track)
			return nil
		}
		return err
	}

	abs, err := filepath.Abs(outPath)
	if err != nil {
		abs = outPath
	}

	fmt.Printf("\n  %s Exported %d messages to %s\n\n",
		cliui.SuccessMark,
		len(msgs),
		cliui.NameStyle.Render(abs),
	)

	return nil
}
