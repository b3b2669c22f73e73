package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPercentChange(t *testing.T) {
	assert.InDelta(t, 25.0, PercentChange(125, 100), 1e-9)
	assert.InDelta(t, -50.0, PercentChange(50, 100), 1e-9)
	assert.Equal(t, 0.0, PercentChange(10, 0))
	assert.Equal(t, 0.0, PercentChange(0, 0))
}

func TestTwoDayPercentChange(t *testing.T) {
	current, percent := TwoDayPercentChange(100, 80, 50)
	assert.Equal(t, 20.0, current)
	assert.InDelta(t, -33.3333, percent, 1e-3)

	current, percent = TwoDayPercentChange(100, 80, 80)
	assert.Equal(t, 20.0, current)
	assert.Equal(t, 0.0, percent)
}

func TestChangeTimestamps(t *testing.T) {
	now := time.Date(2021, 3, 10, 12, 30, 45, 0, time.UTC)
	oneDay, twoDay, oneWeek := ChangeTimestamps(now)

	assert.Equal(t, time.Date(2021, 3, 9, 12, 30, 0, 0, time.UTC).Unix(), oneDay)
	assert.Equal(t, time.Date(2021, 3, 8, 12, 30, 0, 0, time.UTC).Unix(), twoDay)
	assert.Equal(t, time.Date(2021, 3, 3, 12, 30, 0, 0, time.UTC).Unix(), oneWeek)
}
