package stats

import (
	"pairScope/internal/format"
	"pairScope/internal/model"
)

// FeeRate is the share of volume paid to liquidity providers.
const FeeRate = 0.003

// Panels formats the liquidity, 24h volume and 24h fee figures of a pair. Volume falls
// back to untracked volume when tracked volume is zero.
func Panels(s model.PairStats) model.Panels {
	var p model.Panels

	if s.ReserveUSD != 0 {
		p.Liquidity.Value = format.Amount(s.ReserveUSD, true)
	} else {
		p.Liquidity.Value = format.Amount(s.TrackedReserveUSD, true)
	}
	p.Liquidity.Percent, p.Liquidity.Trend = format.Percent(s.LiquidityChangeUSD)

	untracked := s.OneDayVolumeUSD == 0 && s.OneDayVolumeUntracked != 0
	volume, change := s.OneDayVolumeUSD, s.VolumeChangeUSD
	if untracked {
		volume, change = s.OneDayVolumeUntracked, s.VolumeChangeUntracked
	}

	p.Volume.Value = format.Amount(volume, true)
	p.Volume.Percent, p.Volume.Trend = format.Percent(change)

	p.Fees.Value = format.Amount(volume*FeeRate, true)
	p.Fees.Percent, p.Fees.Trend = p.Volume.Percent, p.Volume.Trend

	return p
}
