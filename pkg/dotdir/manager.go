// Package dotdir manages the .gloss/ and ~/.gloss directories.
//
// The directory holds the config file, the credentials file, the persisted
// client identity, and the per-track conversation snapshots. Snapshot-style
// JSON documents go through LoadState/SaveState/ClearState.
package dotdir

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the gloss directory.
	dirName = ".gloss"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the target absolute path to a .gloss/ directory, creating
// it when missing. Order of precedence is as follows:
//  1. Provided override
//  2. Local ./.gloss/ dir
//  3. Home ~/.gloss/ dir
func (m *Manager) Target(overrideDir string) (string, error) {
	dir, err := m.resolve(overrideDir)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating gloss directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}

// Find resolves with the same precedence as Target but never creates
// anything. Returns an empty string when no directory exists yet.
func (m *Manager) Find(overrideDir string) (string, error) {
	dir, err := m.resolve(overrideDir)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(dir); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("checking gloss directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}

func (m *Manager) resolve(overrideDir string) (string, error) {
	switch {
	case overrideDir != "":
		return overrideDir, nil

	case m.localDirExists():
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getting current directory: %w", err)
		}
		return filepath.Join(cwd, dirName), nil

	default:
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		return filepath.Join(home, dirName), nil
	}
}

// localDirExists checks whether a .gloss/ directory exists in the current
// working directory.
func (m *Manager) localDirExists() bool {
	cwd, err := os.Getwd()
	if err != nil {
		return false
	}

	info, err := os.Stat(filepath.Join(cwd, dirName))
	return err == nil && info.IsDir()
}
