package subgraph

import (
	"github.com/shopspring/decimal"

	"pairScope/internal/model"
)

// BlockRow is one entity of the blocks subgraph.
type BlockRow struct {
	Number    uint64 `json:"number,string"`
	Timestamp int64  `json:"timestamp,string"`
}

// RateRow is a pair's prices at one block.
type RateRow struct {
	Token0Price decimal.Decimal `json:"token0Price"`
	Token1Price decimal.Decimal `json:"token1Price"`
}

// TokenFields is the token selection embedded in PairFields.
type TokenFields struct {
	ID         string          `json:"id"`
	Symbol     string          `json:"symbol"`
	Name       string          `json:"name"`
	DerivedETH decimal.Decimal `json:"derivedETH"`
}

// PairFields mirrors the PairFields fragment. Historical bulk queries select a subset;
// unselected fields stay zero.
type PairFields struct {
	ID                   string          `json:"id"`
	TxCount              uint64          `json:"txCount,string"`
	Token0               TokenFields     `json:"token0"`
	Token1               TokenFields     `json:"token1"`
	Reserve0             decimal.Decimal `json:"reserve0"`
	Reserve1             decimal.Decimal `json:"reserve1"`
	ReserveUSD           decimal.Decimal `json:"reserveUSD"`
	TrackedReserveETH    decimal.Decimal `json:"trackedReserveETH"`
	ReserveETH           decimal.Decimal `json:"reserveETH"`
	VolumeUSD            decimal.Decimal `json:"volumeUSD"`
	UntrackedVolumeUSD   decimal.Decimal `json:"untrackedVolumeUSD"`
	Token0Price          decimal.Decimal `json:"token0Price"`
	Token1Price          decimal.Decimal `json:"token1Price"`
	CreatedAtTimestamp   int64           `json:"createdAtTimestamp,string"`
	CreatedAtBlockNumber uint64          `json:"createdAtBlockNumber,string"`
}

// Snapshot converts the response row into the domain snapshot.
func (p PairFields) Snapshot() model.PairSnapshot {
	return model.PairSnapshot{
		ID:                   p.ID,
		Token0:               model.TokenRef{ID: p.Token0.ID, Name: p.Token0.Name, Symbol: p.Token0.Symbol},
		Token1:               model.TokenRef{ID: p.Token1.ID, Name: p.Token1.Name, Symbol: p.Token1.Symbol},
		Reserve0:             p.Reserve0.InexactFloat64(),
		Reserve1:             p.Reserve1.InexactFloat64(),
		ReserveUSD:           p.ReserveUSD.InexactFloat64(),
		TrackedReserveETH:    p.TrackedReserveETH.InexactFloat64(),
		VolumeUSD:            p.VolumeUSD.InexactFloat64(),
		UntrackedVolumeUSD:   p.UntrackedVolumeUSD.InexactFloat64(),
		Token0Price:          p.Token0Price.InexactFloat64(),
		Token1Price:          p.Token1Price.InexactFloat64(),
		TxCount:              p.TxCount,
		CreatedAtTimestamp:   p.CreatedAtTimestamp,
		CreatedAtBlockNumber: p.CreatedAtBlockNumber,
	}
}

// PairsResponse is the data object of every pairs(...) query.
type PairsResponse struct {
	Pairs []PairFields `json:"pairs"`
}

// BlocksResponse is the data object of the single block lookup.
type BlocksResponse struct {
	Blocks []BlockRow `json:"blocks"`
}

// BundlesResponse carries the native token USD price.
type BundlesResponse struct {
	Bundles []struct {
		ID       string          `json:"id"`
		EthPrice decimal.Decimal `json:"ethPrice"`
	} `json:"bundles"`
}

// MetaResponse is the graph-node indexing head.
type MetaResponse struct {
	Meta struct {
		Block struct {
			Number uint64 `json:"number"`
		} `json:"block"`
	} `json:"_meta"`
}
