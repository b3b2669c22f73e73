package model

// TokenRef identifies one side of a pair.
type TokenRef struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
}

// PairSnapshot is a pair's cumulative and instantaneous figures as of one block.
// Snapshots taken at different blocks share this shape.
type PairSnapshot struct {
	ID                   string   `json:"id"`
	Token0               TokenRef `json:"token0"`
	Token1               TokenRef `json:"token1"`
	Reserve0             float64  `json:"reserve0"`
	Reserve1             float64  `json:"reserve1"`
	ReserveUSD           float64  `json:"reserve_usd"`
	TrackedReserveETH    float64  `json:"tracked_reserve_eth"`
	VolumeUSD            float64  `json:"volume_usd"`
	UntrackedVolumeUSD   float64  `json:"untracked_volume_usd"`
	Token0Price          float64  `json:"token0_price"`
	Token1Price          float64  `json:"token1_price"`
	TxCount              uint64   `json:"tx_count"`
	CreatedAtTimestamp   int64    `json:"created_at_timestamp"`
	CreatedAtBlockNumber uint64   `json:"created_at_block_number"`
}
