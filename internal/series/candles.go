package series

import (
	"math"
	"time"

	"pairScope/internal/model"
)

// Candles converts points to chart candles. When there is at least one point, a candle
// for the current hour is appended that opens at the last close and closes at live.
func Candles(points []model.HourlyRatePoint, live float64, now time.Time) []model.Candle {
	out := make([]model.Candle, 0, len(points)+1)
	for _, p := range points {
		out = append(out, model.Candle{
			Time:  p.Timestamp,
			Open:  p.Open,
			Close: p.Close,
			Low:   p.Open,
			High:  p.Close,
		})
	}
	if len(points) == 0 {
		return out
	}

	last := points[len(points)-1].Close
	out = append(out, model.Candle{
		Time:  now.Unix(),
		Open:  last,
		Close: live,
		Low:   math.Min(last, live),
		High:  math.Max(last, live),
	})
	return out
}
