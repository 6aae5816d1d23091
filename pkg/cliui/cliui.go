// Package cliui provides the terminal helpers shared by gloss commands:
// conversation labels, spinners, step indicators, and markdown rendering
// for answers.
package cliui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

var (
	SuccessMark  = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Render("✓")
	FailMark     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("✗")
	StepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))

	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)

	// StatusStyle renders transient streaming status lines.
	StatusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)

	// MetaStyle renders answer metadata (model, route, confidence).
	MetaStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	// ErrorStyle renders failure messages.
	ErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

	// DimStyle renders secondary detail (paths, hints, counts).
	DimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	// KeyStyle and ValueStyle render key/value pairs in config and status output.
	KeyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	ValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))

	// NameStyle renders emphasized identifiers (backends, drivers, files).
	NameStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	// HeaderStyle renders section headers.
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))

	// WarnStyle renders cautions that are not failures.
	WarnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))

	// PreviewStyle renders truncated message previews.
	PreviewStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
)

// spinnerFrames matches bubbletea's spinner.Dot pattern used in the TUI.
var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// RoleLabel returns the styled speaker label for a message role.
func RoleLabel(role string) string {
	if role == "assistant" {
		return assistantStyle.Render("gloss")
	}
	return userStyle.Render("you")
}

// AnswerMeta formats the metadata line under an answer. Empty parts are
// omitted; an empty result means there is nothing to show.
func AnswerMeta(model, route string, confidence *float64) string {
	var parts []string
	if model != "" {
		parts = append(parts, "model "+model)
	}
	if route != "" {
		parts = append(parts, "route "+route)
	}
	if confidence != nil {
		parts = append(parts, fmt.Sprintf("confidence %g", *confidence))
	}
	if len(parts) == 0 {
		return ""
	}
	return MetaStyle.Render(strings.Join(parts, " · "))
}

// Step prints an animated spinner while fn runs, then replaces it with
// a ✓ or ✗ checkmark and elapsed time.
func Step(w io.Writer, msg string, fn func() error) error {
	done := make(chan struct{})
	var mu sync.Mutex

	// Run spinner animation in background
	go func() {
		frame := 0
		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		for {
			mu.Lock()
			fmt.Fprintf(w, "\r  %s %s",
				spinnerStyle.Render(spinnerFrames[frame%len(spinnerFrames)]),
				msg,
			)
			mu.Unlock()

			select {
			case <-done:
				return
			case <-ticker.C:
				frame++
			}
		}
	}()

	start := time.Now()
	err := fn()
	elapsed := time.Since(start)

	close(done)

	// Clear the spinner line and print final result
	mu.Lock()
	fmt.Fprintf(w, "\r  %s %s %s\n",
		Mark(err),
		msg,
		StepStyle.Render(fmt.Sprintf("(%s)", FormatDuration(elapsed))),
	)
	mu.Unlock()

	return err
}

// Mark returns a ✓ for nil errors or ✗ for non-nil errors.
func Mark(err error) string {
	if err != nil {
		return FailMark
	}
	return SuccessMark
}

// FormatDuration formats a duration for display (e.g. "12ms" or "3.2s").
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return fmt.Sprintf("%.1fs", d.Seconds())
}

// RenderMarkdown renders an answer's markdown for terminal display using
// glamour. On failure the raw content comes back with the error so callers
// can fall through to plain text.
func RenderMarkdown(content string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return content, err
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content, err
	}

	return rendered, nil
}
