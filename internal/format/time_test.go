package format

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var testTime = time.Date(2024, 1, 23, 15, 4, 5, 0, time.Local)

func settings(m map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestLayoutsFrom(t *testing.T) {
	tests := []struct {
		name     string
		settings map[string]string
		want     string
	}{
		{"defaults", nil, "2024-01-23 15:04:05"},
		{"iso", map[string]string{"display_date": "yyyy-mm-dd"}, "2024-01-23 15:04:05"},
		{"european", map[string]string{"display_date": "dd/mm/yyyy"}, "23/01/2024 15:04:05"},
		{"us 12h", map[string]string{"display_date": "mm/dd/yyyy", "display_time": "12h"}, "01/23/2024 3:04:05 PM"},
		{"custom layout", map[string]string{"display_date": "Jan 02 2006"}, "Jan 23 2024 15:04:05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, LayoutsFrom(settings(tt.settings)).Timestamp(testTime))
		})
	}
}

func TestStripYear(t *testing.T) {
	require.Equal(t, "Jan 02", stripYear("Jan 02 2006"))
	require.Equal(t, "02/01", stripYear("02/01/06"))
	require.Equal(t, DefaultLayouts.DateShort, stripYear("2006"))
}

func TestRelative(t *testing.T) {
	l := DefaultLayouts

	require.Equal(t, "15:04:05", l.Relative(testTime, testTime.Add(time.Hour)))
	require.Equal(t, "01-23 15:04:05", l.Relative(testTime, testTime.AddDate(0, 2, 0)))
	require.Equal(t, "2024-01-23 15:04:05", l.Relative(testTime, testTime.AddDate(1, 0, 0)))
}

func TestDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{850 * time.Millisecond, "850ms"},
		{1500 * time.Millisecond, "1.5s"},
		{2*time.Minute + 3*time.Second, "2m03s"},
		{time.Hour + 4*time.Minute, "1h04m"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, Duration(tt.d))
	}
}
