package style

import (
	"os"
	"strings"

	"github.com/muesli/termenv"
)

// ColorConfig holds all configurable colors for the UI.
// Values can be ANSI color numbers (0-255) or "bold" for bold styling.
type ColorConfig struct {
	Success  string
	Warning  string
	Error    string
	Info     string
	Muted    string
	Header   string
	UIActive string
	UIDim    string
	// Depth colors label overview groups, cycling by nesting depth.
	Depth [4]string
}

// BaseThemeNames lists available theme bases (auto-detects dark/light).
var BaseThemeNames = []string{
	"default",
	"neon",
	"mono",
	"ocean",
}

// Themes contains the built-in color themes.
// Dark themes use bright colors, light themes use dark ones.
var Themes = map[string]ColorConfig{
	"default-dark": {
		Success:  "10",
		Warning:  "11",
		Error:    "9",
		Info:     "14",
		Muted:    "245",
		Header:   "bold",
		UIActive: "14",
		UIDim:    "240",
		Depth:    [4]string{"12", "13", "10", "11"},
	},
	"default-light": {
		Success:  "28",
		Warning:  "130",
		Error:    "124",
		Info:     "27",
		Muted:    "243",
		Header:   "bold",
		UIActive: "27",
		UIDim:    "250",
		Depth:    [4]string{"27", "90", "28", "130"},
	},
	"neon-dark": {
		Success:  "48",
		Warning:  "220",
		Error:    "197",
		Info:     "51",
		Muted:    "244",
		Header:   "bold",
		UIActive: "201",
		UIDim:    "238",
		Depth:    [4]string{"201", "39", "46", "226"},
	},
	"neon-light": {
		Success:  "29",
		Warning:  "166",
		Error:    "161",
		Info:     "32",
		Muted:    "245",
		Header:   "bold",
		UIActive: "127",
		UIDim:    "250",
		Depth:    [4]string{"127", "26", "28", "166"},
	},
	"mono-dark": {
		Success:  "252",
		Warning:  "250",
		Error:    "255",
		Info:     "253",
		Muted:    "242",
		Header:   "bold",
		UIActive: "255",
		UIDim:    "239",
		Depth:    [4]string{"255", "250", "246", "243"},
	},
	"mono-light": {
		Success:  "236",
		Warning:  "238",
		Error:    "232",
		Info:     "234",
		Muted:    "245",
		Header:   "bold",
		UIActive: "232",
		UIDim:    "251",
		Depth:    [4]string{"232", "237", "240", "243"},
	},
	"ocean-dark": {
		Success:  "79",
		Warning:  "186",
		Error:    "209",
		Info:     "81",
		Muted:    "245",
		Header:   "bold",
		UIActive: "81",
		UIDim:    "24",
		Depth:    [4]string{"81", "75", "79", "117"},
	},
	"ocean-light": {
		Success:  "30",
		Warning:  "136",
		Error:    "160",
		Info:     "25",
		Muted:    "244",
		Header:   "bold",
		UIActive: "25",
		UIDim:    "152",
		Depth:    [4]string{"25", "31", "30", "24"},
	},
}

// colorConfigKeys maps config key names to ColorConfig fields.
var colorConfigKeys = map[string]func(*ColorConfig, string){
	"color_success":   func(c *ColorConfig, v string) { c.Success = v },
	"color_warning":   func(c *ColorConfig, v string) { c.Warning = v },
	"color_error":     func(c *ColorConfig, v string) { c.Error = v },
	"color_info":      func(c *ColorConfig, v string) { c.Info = v },
	"color_muted":     func(c *ColorConfig, v string) { c.Muted = v },
	"color_header":    func(c *ColorConfig, v string) { c.Header = v },
	"color_ui_active": func(c *ColorConfig, v string) { c.UIActive = v },
	"color_ui_dim":    func(c *ColorConfig, v string) { c.UIDim = v },
}

// IsDarkBackground returns true if the terminal has a dark background.
// Uses termenv to query the terminal. Returns true if detection fails.
func IsDarkBackground() bool {
	return termenv.HasDarkBackground()
}

// ResolveThemeName appends a -dark or -light suffix, picked from the
// terminal background, to a theme name that has none.
func ResolveThemeName(name string) string {
	if strings.HasSuffix(name, "-dark") || strings.HasSuffix(name, "-light") {
		return name
	}
	if IsDarkBackground() {
		return name + "-dark"
	}
	return name + "-light"
}

// LoadColorConfig builds a ColorConfig from the given configuration map.
// Resolution priority:
// 1. Environment variable (CMDTREE_COLOR_*)
// 2. Config file value
// 3. Theme value (from the theme key)
// 4. Default theme (auto-detected based on terminal background)
func LoadColorConfig(cfg map[string]string) ColorConfig {
	themeName := ResolveThemeName("default")
	if envTheme := os.Getenv("CMDTREE_THEME"); envTheme != "" {
		themeName = ResolveThemeName(envTheme)
	} else if cfgTheme, ok := cfg["theme"]; ok && cfgTheme != "" {
		themeName = ResolveThemeName(cfgTheme)
	}

	result, ok := Themes[themeName]
	if !ok {
		result = Themes["default-dark"]
	}

	for key, set := range colorConfigKeys {
		if envVal := os.Getenv("CMDTREE_" + strings.ToUpper(key)); envVal != "" {
			set(&result, envVal)
			continue
		}
		if cfgVal, ok := cfg[key]; ok && cfgVal != "" {
			set(&result, cfgVal)
		}
	}

	return result
}
