package configcmder

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/glosshq/gloss/pkg/cliui"
	"github.com/glosshq/gloss/pkg/config"
)

const dirName = ".gloss"

const initLongDesc string = `Initialize a local .gloss/ directory.

Creates a .gloss/ directory in the current working directory that takes
precedence over ~/.gloss/ for configuration, credentials, client identity,
and conversation snapshots. Useful for keeping separate gloss state per
article or project.

With --preset the new directory also gets a config.toml pre-filled for an
environment:
  local     Defaults pointing at the development backend (gloss serve backend)
  staging   The staging backend
  prod      The production backend

Examples:
  gloss config init
  gloss config init --preset staging`

const initShortDesc string = "Initialize a local .gloss/ directory"

func newInitCmd() *cobra.Command {
	var preset string

	cmd := &cobra.Command{
		Use:   "init",
		Short: initShortDesc,
		Long:  initLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInit(preset)
		},
	}

	cmd.Flags().StringVar(&preset, "preset", "", "Write config.toml for an environment preset (local, staging, prod)")
	_ = cmd.RegisterFlagCompletionFunc("preset", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return config.ValidPresetNames(), cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runInit(preset string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	dir := filepath.Join(cwd, dirName)

	info, err := os.Stat(dir)
	exists := err == nil && info.IsDir()
	if !exists {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating .gloss directory: %w", err)
		}
	}

	if exists {
		fmt.Printf("\n  %s Already initialized: %s\n", cliui.DimStyle.Render("●"), dir)
	} else {
		fmt.Printf("\n  %s Initialized %s\n", cliui.SuccessMark, cliui.NameStyle.Render(dir))
	}

	if preset == "" {
		fmt.Println()
		return nil
	}

	cfg, err := config.PresetConfig(preset)
	if err != nil {
		return err
	}

	cfger, err := config.NewConfiger(dir)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfger.SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Printf("  %s Wrote %s config %s\n\n",
		cliui.SuccessMark,
		cliui.NameStyle.Render(preset),
		cliui.DimStyle.Render("("+cfger.GetTarget()+")"),
	)

	return nil
}
