package model

// DerivedPairMetrics are recomputed on every fetch and never persisted as source data.
type DerivedPairMetrics struct {
	OneDayVolumeUSD        float64 `json:"one_day_volume_usd"`
	OneWeekVolumeUSD       float64 `json:"one_week_volume_usd"`
	VolumeChangeUSD        float64 `json:"volume_change_usd"`
	OneDayVolumeUntracked  float64 `json:"one_day_volume_untracked"`
	OneWeekVolumeUntracked float64 `json:"one_week_volume_untracked"`
	VolumeChangeUntracked  float64 `json:"volume_change_untracked"`
	TrackedReserveUSD      float64 `json:"tracked_reserve_usd"`
	LiquidityChangeUSD     float64 `json:"liquidity_change_usd"`
	CreatedWithinDay       bool    `json:"created_within_day"`
}

// PairStats is the current snapshot enriched with derived metrics.
type PairStats struct {
	PairSnapshot
	DerivedPairMetrics
}
