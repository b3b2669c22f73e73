package stats

import (
	"math"
	"time"
)

// PercentChange is the percent move from prior to now. Degenerate inputs give 0.
func PercentChange(now, prior float64) float64 {
	return finiteOrZero((now - prior) / prior * 100)
}

// TwoDayPercentChange compares the change over the last period with the change over
// the period before it. It returns the last period's change and the percent difference
// between the two changes; the percent is 0 when the previous change is 0.
func TwoDayPercentChange(now, oneAgo, twoAgo float64) (current, percent float64) {
	current = now - oneAgo
	previous := oneAgo - twoAgo
	return current, finiteOrZero((current - previous) / previous * 100)
}

// ChangeTimestamps returns now minus one day, two days and one week, truncated to the minute.
func ChangeTimestamps(now time.Time) (oneDay, twoDay, oneWeek int64) {
	now = now.UTC()
	oneDay = now.AddDate(0, 0, -1).Truncate(time.Minute).Unix()
	twoDay = now.AddDate(0, 0, -2).Truncate(time.Minute).Unix()
	oneWeek = now.AddDate(0, 0, -7).Truncate(time.Minute).Unix()
	return oneDay, twoDay, oneWeek
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
