package series

import (
	"fmt"
	"strings"
	"time"
)

// AllTimeStart is the first hour shown by the all-time chart.
const AllTimeStart int64 = 1589760000

// Window selects how far back an hourly series reaches.
type Window string

const (
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
	WindowAll   Window = "all"
)

// ParseWindow accepts week, month or all, case-insensitively.
func ParseWindow(s string) (Window, error) {
	switch w := Window(strings.ToLower(strings.TrimSpace(s))); w {
	case WindowWeek, WindowMonth, WindowAll:
		return w, nil
	case "":
		return WindowMonth, nil
	default:
		return "", fmt.Errorf("unknown window %q", s)
	}
}

// Start returns the first timestamp of the window relative to now, truncated to the hour.
func (w Window) Start(now time.Time) int64 {
	now = now.UTC()
	switch w {
	case WindowWeek:
		return now.AddDate(0, 0, -7).Truncate(time.Hour).Unix()
	case WindowAll:
		return AllTimeStart
	default:
		return now.AddDate(0, -1, 0).Truncate(time.Hour).Unix()
	}
}
