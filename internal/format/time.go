// Package format renders timestamps and durations the way the display
// settings ask for.
package format

import (
	"fmt"
	"strings"
	"time"
)

// Layouts are the Go time layouts picked by the display_date and
// display_time settings.
type Layouts struct {
	Date      string
	DateShort string
	Clock     string
}

// DefaultLayouts is ISO dates with a 24 hour clock.
var DefaultLayouts = Layouts{Date: "2006-01-02", DateShort: "01-02", Clock: "15:04:05"}

// LayoutsFrom resolves the display settings through get. Unknown or unset
// values keep the defaults; a display_date that is not a preset is used as
// a Go layout.
func LayoutsFrom(get func(string) (string, bool)) Layouts {
	l := DefaultLayouts

	if v, ok := get("display_date"); ok && v != "" {
		switch v {
		case "yyyy-mm-dd":
		case "dd/mm/yyyy":
			l.Date, l.DateShort = "02/01/2006", "02/01"
		case "mm/dd/yyyy":
			l.Date, l.DateShort = "01/02/2006", "01/02"
		default:
			l.Date, l.DateShort = v, stripYear(v)
		}
	}

	if v, _ := get("display_time"); v == "12h" {
		l.Clock = "3:04:05 PM"
	}
	return l
}

// stripYear derives a short layout from a custom one by removing the
// year.
func stripYear(layout string) string {
	short := layout
	for _, y := range []string{"2006", "/06", "-06", " 06"} {
		short = strings.ReplaceAll(short, y, "")
	}
	short = strings.Trim(strings.TrimSpace(short), "/-")
	if short == "" {
		return DefaultLayouts.DateShort
	}
	return short
}

// Timestamp formats t in local time with date and clock.
func (l Layouts) Timestamp(t time.Time) string {
	return t.Local().Format(l.Date + " " + l.Clock)
}

// Relative formats t against now: the clock alone for today, the short
// date for this year and the full date otherwise.
func (l Layouts) Relative(t, now time.Time) string {
	t, now = t.Local(), now.Local()
	switch {
	case t.YearDay() == now.YearDay() && t.Year() == now.Year():
		return t.Format(l.Clock)
	case t.Year() == now.Year():
		return t.Format(l.DateShort + " " + l.Clock)
	default:
		return t.Format(l.Date + " " + l.Clock)
	}
}

// Duration formats d compactly: 850ms, 1.5s, 2m03s, 1h04m.
func Duration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
