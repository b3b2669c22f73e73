package model

// Trend tells a display which direction a percent moved.
type Trend string

const (
	TrendFlat Trend = "flat"
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
)

// Panel is one formatted stat with its percent change.
type Panel struct {
	Value   string `json:"value"`
	Percent string `json:"percent"`
	Trend   Trend  `json:"trend"`
}

// Panels are the formatted liquidity, volume and fee stats of a pair.
type Panels struct {
	Liquidity Panel `json:"liquidity"`
	Volume    Panel `json:"volume"`
	Fees      Panel `json:"fees"`
}
