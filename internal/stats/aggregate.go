package stats

import "pairScope/internal/model"

// Aggregate derives the volume and liquidity figures of current from its snapshots one
// day, two days and one week earlier. Any of the historical snapshots may be nil when
// the pair did not exist at that block.
func Aggregate(current model.PairSnapshot, day1, day2, week1 *model.PairSnapshot, ethPriceUSD float64, day1Block uint64) model.PairStats {
	var (
		volumeDay1, volumeDay2       float64
		untrackedDay1, untrackedDay2 float64
		reserveDay1                  float64
	)
	if day1 != nil {
		volumeDay1 = day1.VolumeUSD
		untrackedDay1 = day1.UntrackedVolumeUSD
		reserveDay1 = day1.ReserveUSD
	}
	if day2 != nil {
		volumeDay2 = day2.VolumeUSD
		untrackedDay2 = day2.UntrackedVolumeUSD
	}

	var m model.DerivedPairMetrics
	m.OneDayVolumeUSD, m.VolumeChangeUSD = TwoDayPercentChange(current.VolumeUSD, volumeDay1, volumeDay2)
	m.OneDayVolumeUntracked, m.VolumeChangeUntracked = TwoDayPercentChange(current.UntrackedVolumeUSD, untrackedDay1, untrackedDay2)

	if week1 != nil {
		m.OneWeekVolumeUSD = current.VolumeUSD - week1.VolumeUSD
		m.OneWeekVolumeUntracked = current.UntrackedVolumeUSD - week1.UntrackedVolumeUSD
	} else {
		m.OneWeekVolumeUSD = current.VolumeUSD
		m.OneWeekVolumeUntracked = current.UntrackedVolumeUSD
	}

	m.TrackedReserveUSD = current.TrackedReserveETH * ethPriceUSD
	m.LiquidityChangeUSD = PercentChange(current.ReserveUSD, reserveDay1)

	// Without a day-old snapshot the whole cumulative volume falls inside the last day.
	if day1 == nil {
		m.OneDayVolumeUSD = current.VolumeUSD
		// day1Block is 0 when the day-old block did not resolve.
		m.CreatedWithinDay = day1Block > 0 && current.CreatedAtBlockNumber > day1Block
	}

	return model.PairStats{PairSnapshot: current, DerivedPairMetrics: m}
}

// BaseRate is the live token1-per-token0 rate implied by the reserves.
func BaseRate(p model.PairSnapshot) float64 {
	if p.Reserve0 == 0 {
		return 0
	}
	return p.Reserve1 / p.Reserve0
}
