package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pairScope/internal/model"
)

func TestPanelsTrackedVolume(t *testing.T) {
	s := model.PairStats{
		PairSnapshot: model.PairSnapshot{ReserveUSD: 1_234_567},
		DerivedPairMetrics: model.DerivedPairMetrics{
			OneDayVolumeUSD:    20_000,
			VolumeChangeUSD:    12.5,
			LiquidityChangeUSD: -3.2,
		},
	}

	p := Panels(s)
	assert.Equal(t, model.Panel{Value: "$1,234,567", Percent: "-3.20%", Trend: model.TrendDown}, p.Liquidity)
	assert.Equal(t, model.Panel{Value: "$20,000", Percent: "+12.50%", Trend: model.TrendUp}, p.Volume)
	assert.Equal(t, model.Panel{Value: "$60.00", Percent: "+12.50%", Trend: model.TrendUp}, p.Fees)
}

func TestPanelsFallBackToUntracked(t *testing.T) {
	s := model.PairStats{
		DerivedPairMetrics: model.DerivedPairMetrics{
			TrackedReserveUSD:     5000,
			OneDayVolumeUntracked: 1000,
			VolumeChangeUntracked: 150,
			VolumeChangeUSD:       99,
		},
	}

	p := Panels(s)
	assert.Equal(t, "$5,000", p.Liquidity.Value)
	assert.Equal(t, "0%", p.Liquidity.Percent)
	assert.Equal(t, "$1,000.00", p.Volume.Value)
	assert.Equal(t, "+150%", p.Volume.Percent)
	assert.Equal(t, "$3.00", p.Fees.Value)
}
