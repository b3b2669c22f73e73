package http

import (
	"context"
	"fmt"

	"pairScope/internal/stats"
)

// SnapshotRates derives the live rate from the cached pair reserves when no RPC
// endpoint is configured.
type SnapshotRates struct {
	Stats PairStats
}

func (s SnapshotRates) LiveRate(ctx context.Context, pairAddress string) (float64, error) {
	res := s.Stats.Pair(ctx, pairAddress)
	if !res.OK() {
		return 0, fmt.Errorf("pair %s is %s", pairAddress, res.Status)
	}
	rate := stats.BaseRate(res.Value.PairSnapshot)
	if rate == 0 {
		return 0, fmt.Errorf("pair %s has no reserves", pairAddress)
	}
	return rate, nil
}
