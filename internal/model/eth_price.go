package model

// EthPrice is the native token USD price now and one day ago.
type EthPrice struct {
	Current       float64 `json:"current"`
	OneDayAgo     float64 `json:"one_day_ago"`
	ChangePercent float64 `json:"change_percent"`
}
