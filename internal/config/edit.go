package config

import "strings"

// assignment splits a settings line into its key and the text after the
// equals sign. Comments, blank lines and malformed lines are not
// assignments.
func assignment(line string) (key, rest string, ok bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || trimmed[0] == '#' {
		return "", "", false
	}
	key, rest, ok = strings.Cut(trimmed, "=")
	return strings.TrimSpace(key), rest, ok
}

func quote(value string) string {
	if strings.ContainsAny(value, " \t#") {
		return `"` + value + `"`
	}
	return value
}

// Assign sets key to value in lines. The first assignment of key is
// rewritten in place and keeps its trailing comment; without one the
// assignment is appended. The result reports whether a line was rewritten.
func Assign(lines []string, key, value string) ([]string, bool) {
	entry := key + "=" + quote(value)

	for i, line := range lines {
		k, rest, ok := assignment(line)
		if !ok || k != key {
			continue
		}
		if _, comment, found := strings.Cut(rest, "#"); found {
			entry += " #" + strings.TrimRight(comment, " \t")
		}
		lines[i] = entry
		return lines, true
	}
	return append(lines, entry), false
}

// Remove drops every assignment of key and reports whether there was one.
func Remove(lines []string, key string) ([]string, bool) {
	out := lines[:0:0]
	removed := false
	for _, line := range lines {
		if k, _, ok := assignment(line); ok && k == key {
			removed = true
			continue
		}
		out = append(out, line)
	}
	return out, removed
}
