// Package splitpanel renders two bordered, scrollable panes side by side.
package splitpanel

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/footprint-tools/cmdtree/internal/ui/style"
)

const (
	thumbGlyph = "█"
	trackGlyph = "│"

	// chromeWidth is border, padding and scrollbar column together.
	chromeWidth  = 6
	chromeHeight = 2
)

// Panel is one pane. Lines start at the scroll position already; ScrollPos
// and TotalItems only drive the scrollbar.
type Panel struct {
	Lines      []string
	ScrollPos  int
	TotalItems int
}

// Config sizes the sidebar relative to the terminal width.
type Config struct {
	SidebarWidthPercent float64
	SidebarMinWidth     int
	SidebarMaxWidth     int
}

// Layout is a sidebar next to a content pane.
type Layout struct {
	Width        int
	Height       int
	SidebarWidth int
	ContentWidth int
	FocusSidebar bool
	Colors       style.ColorConfig
}

// NewLayout splits width according to cfg. The sidebar starts focused.
func NewLayout(width int, cfg Config, colors style.ColorConfig) *Layout {
	side := int(float64(width) * cfg.SidebarWidthPercent)
	side = min(max(side, cfg.SidebarMinWidth), cfg.SidebarMaxWidth)
	return &Layout{
		Width:        width,
		SidebarWidth: side,
		ContentWidth: width - side,
		FocusSidebar: true,
		Colors:       colors,
	}
}

// SetFocus moves the focus to the sidebar or the content pane.
func (l *Layout) SetFocus(sidebar bool) { l.FocusSidebar = sidebar }

// SidebarContentWidth is the number of text columns inside the sidebar.
func (l *Layout) SidebarContentWidth() int { return l.SidebarWidth - chromeWidth }

// MainContentWidth is the number of text columns inside the content pane.
func (l *Layout) MainContentWidth() int { return l.ContentWidth - chromeWidth }

// VisibleHeight is the number of text rows inside either pane.
func (l *Layout) VisibleHeight() int { return l.Height - chromeHeight }

// Render draws both panes height rows tall.
func (l *Layout) Render(sidebar, content Panel, height int) string {
	l.Height = height
	return lipgloss.JoinHorizontal(lipgloss.Top,
		l.pane(sidebar, l.SidebarWidth, l.FocusSidebar),
		l.pane(content, l.ContentWidth, !l.FocusSidebar),
	)
}

func (l *Layout) pane(p Panel, width int, focused bool) string {
	cols := max(width-chromeWidth, 1)
	rows := max(l.Height-chromeHeight, 1)

	accent := lipgloss.Color(l.Colors.UIDim)
	if focused {
		accent = lipgloss.Color(l.Colors.UIActive)
	}

	total := p.TotalItems
	if total == 0 {
		total = len(p.Lines)
	}
	bar := scrollbar(rows, total, p.ScrollPos,
		lipgloss.NewStyle().Foreground(accent),
		lipgloss.NewStyle().Foreground(lipgloss.Color(l.Colors.UIDim)))

	var b strings.Builder
	for i := range rows {
		line := ""
		if i < len(p.Lines) {
			line = fit(p.Lines[i], cols)
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
		b.WriteByte(' ')
		b.WriteString(bar[i])
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Render(b.String())
}

// fit truncates or pads s to exactly cols display columns.
func fit(s string, cols int) string {
	if w := lipgloss.Width(s); w <= cols {
		return s + strings.Repeat(" ", cols-w)
	}
	return ansi.Truncate(s, cols, "...")
}

// scrollbar returns one glyph per row. Content that fits gets a blank
// column; otherwise the thumb size and position follow the visible share
// and the offset.
func scrollbar(rows, total, offset int, thumb, track lipgloss.Style) []string {
	bar := make([]string, rows)
	if total <= rows {
		for i := range bar {
			bar[i] = " "
		}
		return bar
	}

	size := min(max(rows*rows/total, 1), max(rows-2, 1))
	travel := rows - size
	pos := 0
	if travel > 0 {
		pos = min(max(offset*travel/(total-rows), 0), travel)
	}

	for i := range bar {
		if i >= pos && i < pos+size {
			bar[i] = thumb.Render(thumbGlyph)
		} else {
			bar[i] = track.Render(trackGlyph)
		}
	}
	return bar
}
