package splitpanel

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/require"

	"github.com/footprint-tools/cmdtree/internal/ui/style"
)

func TestNewLayout(t *testing.T) {
	cfg := Config{SidebarWidthPercent: 0.3, SidebarMinWidth: 24, SidebarMaxWidth: 40}

	tests := []struct {
		width, sidebar int
	}{
		{60, 24},
		{100, 30},
		{200, 40},
	}
	for _, tt := range tests {
		l := NewLayout(tt.width, cfg, style.ColorConfig{})
		require.Equal(t, tt.sidebar, l.SidebarWidth)
		require.Equal(t, tt.width-tt.sidebar, l.ContentWidth)
		require.True(t, l.FocusSidebar)
	}
}

func TestScrollbar(t *testing.T) {
	plain := lipgloss.NewStyle()

	require.Equal(t, []string{" ", " ", " "}, scrollbar(3, 2, 0, plain, plain))

	top := strings.Join(scrollbar(10, 40, 0, plain, plain), "")
	require.True(t, strings.HasPrefix(top, thumbGlyph+thumbGlyph+trackGlyph))

	bottom := scrollbar(10, 40, 30, plain, plain)
	require.Equal(t, thumbGlyph, bottom[9])
	require.Equal(t, trackGlyph, bottom[0])
}

func TestFit(t *testing.T) {
	require.Equal(t, "ab  ", fit("ab", 4))
	require.Equal(t, "abcdefg...", fit("abcdefghijklmnop", 10))
	require.Equal(t, 10, lipgloss.Width(fit("\x1b[1mabcdefghijklmnop\x1b[0m", 10)))
}

func TestRender(t *testing.T) {
	l := NewLayout(80, Config{SidebarWidthPercent: 0.3, SidebarMinWidth: 20, SidebarMaxWidth: 30}, style.ColorConfig{})
	out := l.Render(Panel{Lines: []string{"left"}}, Panel{Lines: []string{"right"}}, 6)

	require.Contains(t, out, "left")
	require.Contains(t, out, "right")
	require.Equal(t, 6, lipgloss.Height(out))
	require.Equal(t, 80, lipgloss.Width(out))
	require.Equal(t, 4, l.VisibleHeight())
	require.Equal(t, l.SidebarWidth-6, l.SidebarContentWidth())
}
