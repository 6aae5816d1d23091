package historycmder

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/glosshq/gloss/pkg/chat"
	"github.com/glosshq/gloss/pkg/cliui"
	"github.com/glosshq/gloss/pkg/config"
	"github.com/glosshq/gloss/pkg/history"
)

const clearLongDesc string = `Clear saved conversation tracks.

Drops the persisted snapshots held by the configured history driver.
Without --track both tracks clear; with --track only the named one does.
Running gloss sessions are not affected until their next restart.

Examples:
  gloss history clear
  gloss history clear --track research`

const clearShortDesc string = "Clear saved conversation tracks"

func newClearCmd() *cobra.Command {
	var track string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: clearShortDesc,
		Long:  clearLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			return runClear(cmd.Context(), track, configDir)
		},
	}

	cmd.Flags().StringVarP(&track, "track", "t", "", "Clear only this track (standard or research)")
	_ = cmd.RegisterFlagCompletionFunc("track", trackCompletions)

	return cmd
}

func runClear(ctx context.Context, trackName, configDir string) error {
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
		fmt.Printf("\n  %s\n\n", cliui.DimStyle.Render("History is disabled (history.driver = none); nothing to clear."))
		return nil
	}
	defer store.Close()

	tracks := []chat.Track{chat.TrackStandard, chat.TrackResearch}
	if trackName != "" {
		track, err := parseTrack(trackName)
		if err != nil {
			return err
		}
		tracks = []chat.Track{track}
	}

	fmt.Println()
	for _, track := range tracks {
		if err := store.ClearTrack(track); err != nil {
			return fmt.Errorf("clearing %s track: %w", track, err)
		}
		fmt.Printf("  %s Cleared the %s track.\n", cliui.SuccessMark, track)
	}
	fmt.Println()

	return nil
}
