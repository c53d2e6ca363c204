// Package style colors terminal output by meaning rather than by color.
// Until Init enables it every helper returns its input unchanged.
package style

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

type role int

const (
	roleSuccess role = iota
	roleWarning
	roleError
	roleInfo
	roleHeader
	roleMuted
	roleCount
)

var (
	enabled bool
	colors  ColorConfig
	roles   [roleCount]lipgloss.Style
	depths  [4]lipgloss.Style
)

// Init turns styling on or off and loads the theme and color overrides
// from cfg, which may be nil. NO_COLOR or CMDTREE_NO_COLOR set to any
// value keeps styling off.
func Init(enable bool, cfg map[string]string) {
	enabled = enable && os.Getenv("NO_COLOR") == "" && os.Getenv("CMDTREE_NO_COLOR") == ""
	if !enabled {
		return
	}

	colors = LoadColorConfig(cfg)
	// Colors are ANSI 256 numbers; the profile is fixed so that output
	// piped to a pager keeps them.
	lipgloss.SetColorProfile(termenv.ANSI256)

	for r, value := range map[role]string{
		roleSuccess: colors.Success,
		roleWarning: colors.Warning,
		roleError:   colors.Error,
		roleInfo:    colors.Info,
		roleHeader:  colors.Header,
		roleMuted:   colors.Muted,
	} {
		roles[r] = styleFor(value)
	}
	for i, c := range colors.Depth {
		depths[i] = styleFor(c).Bold(true)
	}
}

// styleFor accepts "bold" or an ANSI color number.
func styleFor(value string) lipgloss.Style {
	if value == "bold" {
		return lipgloss.NewStyle().Bold(true)
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(value))
}

func render(r role, text string) string {
	if !enabled {
		return text
	}
	return roles[r].Render(text)
}

// GetColors returns the active colors, the zero value while disabled.
func GetColors() ColorConfig { return colors }

// Enabled reports whether Init turned styling on.
func Enabled() bool { return enabled }

func Success(text string) string { return render(roleSuccess, text) }
func Warning(text string) string { return render(roleWarning, text) }
func Error(text string) string   { return render(roleError, text) }
func Info(text string) string    { return render(roleInfo, text) }
func Header(text string) string  { return render(roleHeader, text) }
func Muted(text string) string   { return render(roleMuted, text) }

// Depth styles an overview group label by the nesting depth of its module.
func Depth(depth int, text string) string {
	if !enabled {
		return text
	}
	if depth < 0 {
		depth = -depth
	}
	return depths[depth%len(depths)].Render(text)
}
