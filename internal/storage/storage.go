package storage

import "pairScope/internal/model"

// CandleRow is one exported chart candle.
type CandleRow struct {
	Pair string `json:"pair"`
	// Side is 0 for the rate0 series and 1 for rate1.
	Side int `json:"side"`
	model.Candle
}

// CandleSink receives chart candles for export.
type CandleSink interface {
	PutCandles(rows []CandleRow) error
}

// Rows tags candles with their pair and side.
func Rows(pair string, side int, candles []model.Candle) []CandleRow {
	rows := make([]CandleRow, 0, len(candles))
	for _, c := range candles {
		rows = append(rows, CandleRow{Pair: pair, Side: side, Candle: c})
	}
	return rows
}
