package model

// RateSample is the marginal exchange rate of a pair at one block.
type RateSample struct {
	Timestamp int64   `json:"timestamp"`
	Rate0     float64 `json:"rate0"`
	Rate1     float64 `json:"rate1"`
}

// HourlyRatePoint pairs the rate at an hour boundary with the rate at the next one.
type HourlyRatePoint struct {
	Timestamp int64   `json:"timestamp"`
	Open      float64 `json:"open"`
	Close     float64 `json:"close"`
}

// Candle is a chart-ready OHLC entry.
type Candle struct {
	Time  int64   `json:"time"`
	Open  float64 `json:"open"`
	Close float64 `json:"close"`
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
}

// HourlyRates holds the rate0- and rate1-based series for one pair and window.
type HourlyRates struct {
	Rate0  []HourlyRatePoint `json:"rate0"`
	Rate1  []HourlyRatePoint `json:"rate1"`
	Status Status            `json:"status"`
	Err    error             `json:"-"`
}
