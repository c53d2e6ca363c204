package domain

// ConfigKey describes one user setting.
type ConfigKey struct {
	Name        string
	Default     string
	Description string
	Section     string
	// Hidden keys work but are left out of listings and the rc template.
	Hidden bool
	// HideIfEmpty keys are listed only once they have a value.
	HideIfEmpty bool
}

func section(name string, keys ...ConfigKey) []ConfigKey {
	for i := range keys {
		keys[i].Section = name
	}
	return keys
}

func colorKey(role, desc string) ConfigKey {
	return ConfigKey{Name: "color_" + role, Description: desc + " (overrides theme)", HideIfEmpty: true}
}

// ConfigKeys lists every setting in listing order.
var ConfigKeys = concat(
	section("Tasks",
		ConfigKey{Name: "separator", Default: ".", Description: "Separator between segments of a flat task path"},
		ConfigKey{Name: "max_groupsize", Default: "5", Description: "Largest task group shown before the overview subdivides it"},
		ConfigKey{Name: "max_depth", Default: "20", Description: "Deepest module the overview subdivides"},
		ConfigKey{Name: "failure_status", Default: "1", Description: "Exit status used when a command fails without one (1-255)"},
		ConfigKey{Name: "manifest", Description: "Manifest file used when --file is not given", HideIfEmpty: true},
	),
	section("Display",
		ConfigKey{Name: "pager", Default: "less -FRSX", Description: "Pager command for long output"},
		ConfigKey{Name: "theme", Default: "default", Description: "Color theme: default, neon, mono, ocean"},
		ConfigKey{Name: "display_date", Default: "yyyy-mm-dd", Description: "Date format in history listings: yyyy-mm-dd, dd/mm/yyyy, mm/dd/yyyy or a Go layout"},
		ConfigKey{Name: "display_time", Default: "24h", Description: "Clock format in history listings: 24h or 12h"},
		colorKey("success", "Color for success messages"),
		colorKey("warning", "Color for warnings"),
		colorKey("error", "Color for errors"),
		colorKey("info", "Color for command names"),
		colorKey("muted", "Color for secondary text"),
		colorKey("header", "Color for section headers"),
		colorKey("ui_active", "Color for the selected row in the browser"),
		colorKey("ui_dim", "Color for inactive panels in the browser"),
	),
	section("Logging",
		ConfigKey{Name: "enable_log", Default: "true", Description: "Enable logging to file (true/false)"},
		ConfigKey{Name: "log_level", Default: "warn", Description: "Minimum log level: debug, info, warn, error"},
	),
	section("History",
		ConfigKey{Name: "history", Default: "false", Description: "Record every dispatched command (true/false)"},
		ConfigKey{Name: "history_keep", Default: "1000", Description: "Number of history entries kept", Hidden: true},
	),
)

func concat(groups ...[]ConfigKey) []ConfigKey {
	var out []ConfigKey
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

var keysByName = func() map[string]ConfigKey {
	m := make(map[string]ConfigKey, len(ConfigKeys))
	for _, k := range ConfigKeys {
		m[k.Name] = k
	}
	return m
}()

func IsValidConfigKey(name string) bool {
	_, ok := keysByName[name]
	return ok
}

// GetDefaultValue returns the default of a known setting.
func GetDefaultValue(name string) (string, bool) {
	k, ok := keysByName[name]
	return k.Default, ok
}

// VisibleConfigKeys returns the settings that are not Hidden, in order.
func VisibleConfigKeys() []ConfigKey {
	var out []ConfigKey
	for _, k := range ConfigKeys {
		if !k.Hidden {
			out = append(out, k)
		}
	}
	return out
}
