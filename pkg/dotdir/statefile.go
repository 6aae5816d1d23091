package dotdir

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// LoadState reads the named JSON state file from the resolved .gloss/
// directory into v. The boolean reports whether the file existed; a missing
// file is not an error (empty/new state).
// If overrideDir is non-empty, it is used instead of the default resolution.
func (m *Manager) LoadState(overrideDir, name string, v any) (bool, error) {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return false, err
	}

	path := filepath.Join(dir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("reading state file %s: %w", name, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parsing state file %s: %w", name, err)
	}

	return true, nil
}

// SaveState persists v as indented JSON to the named state file in the
// resolved .gloss/ directory.
func (m *Manager) SaveState(overrideDir, name string, v any) error {
	if v == nil {
		return errors.New("cannot save nil state")
	}

	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling state file %s: %w", name, err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing state file %s: %w", name, err)
	}

	return nil
}

// ClearState removes the named state file.
// Returns nil if the file doesn't exist (already cleared).
func (m *Manager) ClearState(overrideDir, name string) error {
	dir, err := m.Target(overrideDir)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, name)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("removing state file %s: %w", name, err)
	}

	return nil
}
