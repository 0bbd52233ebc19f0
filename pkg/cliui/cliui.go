// Package cliui provides reusable terminal UI helpers (spinners, step
// indicators, record rendering) for tagstash CLI commands.
package cliui

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/papercomputeco/tagstash/pkg/record"
	"github.com/papercomputeco/tagstash/pkg/utils"
)

var (
	SuccessMark  = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Render("✓")
	FailMark     = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("✗")
	StepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	KeyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	ValueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	DimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	TagStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("215"))
	IDStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
)

// PreviewLength is the number of content runes shown per record in lists.
const PreviewLength = 72

var spinnerFrames = []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

// Step prints an animated spinner while fn runs, then replaces it with
// a ✓ or ✗ checkmark and elapsed time.
func Step(w io.Writer, msg string, fn func() error) error {
	done := make(chan struct{})
	stopped := make(chan struct{})
	var mu sync.Mutex

	// Run spinner animation in background
	go func() {
		defer close(stopped)
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
	<-stopped

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

// RenderTags renders tag values as a space separated list of #tags.
func RenderTags(values []string) string {
	rendered := make([]string, len(values))
	for i, v := range values {
		rendered[i] = TagStyle.Render("#" + v)
	}
	return strings.Join(rendered, " ")
}

// PrintRecord writes one record as a short block: identifier and timestamp,
// a single-line content preview, then its tags.
func PrintRecord(w io.Writer, r *record.Record) {
	preview := strings.ReplaceAll(r.Content, "\n", " ")
	preview = utils.Truncate(preview, PreviewLength)

	fmt.Fprintf(w, "  %s  %s\n",
		IDStyle.Render(r.ID.String()),
		DimStyle.Render(r.UpdatedAt.Local().Format(time.DateTime)),
	)
	fmt.Fprintf(w, "  %s\n", preview)
	fmt.Fprintf(w, "  %s\n\n", RenderTags(r.TagValues()))
}
