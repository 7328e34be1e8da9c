// Package cliui provides reusable terminal UI helpers (styles, marks,
// markdown rendering) for neat CLI commands.
package cliui

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Message colours follow the palette of the neat web client.
var (
	SuccessMark = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Render("✓")
	FailMark    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("✗")

	KeyStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("75"))
	ValueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	DimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	NameStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))

	UserStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#66697B"))
	ThoughtStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#F5F5F5"))
	ToolStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#D0D0D0"))
	AnswerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#E3FF00"))
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

var plain atomic.Bool

// DisableColor switches every style to plain ASCII output.
func DisableColor() {
	plain.Store(true)
	lipgloss.SetColorProfile(termenv.Ascii)
}

// ColorEnabled reports whether styled output is in effect.
func ColorEnabled() bool {
	return !plain.Load()
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

// MarkdownRenderer renders markdown with one fixed glamour style. A style
// name never triggers a terminal query, unlike glamour's auto style, so Render
// is safe while another goroutine reads the terminal. Renderers are built once
// per wrap width and reused.
type MarkdownRenderer struct {
	style string

	mu      sync.Mutex
	byWidth map[int]*glamour.TermRenderer
}

// NewMarkdownRenderer returns a renderer for a glamour standard style such as
// styles.DarkStyle. When color is disabled the notty style is used instead.
func NewMarkdownRenderer(style string) *MarkdownRenderer {
	if !ColorEnabled() {
		style = styles.NoTTYStyle
	}
	return &MarkdownRenderer{
		style:   style,
		byWidth: make(map[int]*glamour.TermRenderer),
	}
}

// Render renders content wrapped at wrap columns; zero uses 80.
func (m *MarkdownRenderer) Render(content string, wrap int) (string, error) {
	if wrap <= 0 {
		wrap = 80
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.byWidth[wrap]
	if !ok {
		var err error
		r, err = glamour.NewTermRenderer(
			glamour.WithStandardStyle(m.style),
			glamour.WithWordWrap(wrap),
		)
		if err != nil {
			return content, err
		}
		m.byWidth[wrap] = r
	}

	rendered, err := r.Render(content)
	if err != nil {
		return content, err
	}
	return rendered, nil
}
