// Package export renders conversation tracks as standalone markdown
// documents with a TOML frontmatter block.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/glosshq/gloss/pkg/chat"
)

// ErrEmptyTrack is returned by Write when the track has no messages.
var ErrEmptyTrack = errors.New("no messages to export")

// Frontmatter is the TOML block at the top of an exported document.
type Frontmatter struct {
	ExportedAt time.Time `toml:"exported_at"`
	Track      string    `toml:"track"`
	Messages   int       `toml:"messages"`
}

// DefaultFilename returns the export filename for a track on a given day,
// e.g. "gloss-research-2026-08-24.md".
func DefaultFilename(track chat.Track, now time.Time) string {
	return fmt.Sprintf("gloss-%s-%s.md", track, now.Format("2006-01-02"))
}

// Render produces the markdown document for a track's messages.
func Render(track chat.Track, msgs []chat.Message, exportedAt time.Time) (string, error) {
	var b strings.Builder

	front := Frontmatter{
		ExportedAt: exportedAt.UTC(),
		Track:      string(track),
		Messages:   len(msgs),
	}

	b.WriteString("+++\n")
	if err := toml.NewEncoder(&b).Encode(front); err != nil {
		return "", fmt.Errorf("encode frontmatter: %w", err)
	}
	b.WriteString("+++\n\n")

	fmt.Fprintf(&b, "# Conversation: %s\n\n", track)

	for i, msg := range msgs {
		fmt.Fprintf(&b, "## [%d] %s", i+1, msg.Role)
		if !msg.Timestamp.IsZero() {
			fmt.Fprintf(&b, " (%s)", msg.Timestamp.Format(time.RFC3339))
		}
		b.WriteString("\n\n")

		content := msg.Content
		if content == "" {
			content = "_(no content)_"
		}
		b.WriteString(content)
		b.WriteString("\n")

		if len(msg.Outline) > 0 {
			b.WriteString("\n**Outline**\n\n")
			for _, item := range msg.Outline {
				fmt.Fprintf(&b, "- %s\n", item)
			}
		}

		if len(msg.Sources) > 0 {
			b.WriteString("\n**Sources**\n\n")
			for _, src := range msg.Sources {
				fmt.Fprintf(&b, "- %s (score %.2f): %s\n", src.Title, src.Score, src.Excerpt)
				if src.URL != "" {
					fmt.Fprintf(&b, "  <%s>\n", src.URL)
				}
			}
		}

		if msg.Confidence != nil {
			fmt.Fprintf(&b, "\n_Confidence: %g_\n", *msg.Confidence)
		}

		if msg.DeeperAnalysis != "" {
			b.WriteString("\n**Deeper analysis**\n\n")
			b.WriteString(msg.DeeperAnalysis)
			if !strings.HasSuffix(msg.DeeperAnalysis, "\n") {
				b.WriteString("\n")
			}
		}

		b.WriteString("\n")
	}

	return b.String(), nil
}

// Write renders the track and writes it to path atomically: the document
// lands in a temp file in the target directory and is renamed into place,
// so a partial export is never visible.
func Write(path string, track chat.Track, msgs []chat.Message) error {
	if len(msgs) == 0 {
		return ErrEmptyTrack
	}

	doc, err := Render(track, msgs, time.Now())
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".gloss-export-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := tmp.WriteString(doc); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write export: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close export: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename export: %w", err)
	}

	return nil
}
