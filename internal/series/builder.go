// Package series builds hourly open/close rate series for a pair.
package series

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"pairScope/internal/batch"
	"pairScope/internal/blocks"
	"pairScope/internal/cache"
	"pairScope/internal/model"
	"pairScope/internal/subgraph"
)

const (
	hour = int64(time.Hour / time.Second)

	chunkSize = 100
)

// BlockResolver is the part of blocks.Resolver the builder needs.
type BlockResolver interface {
	Resolve(ctx context.Context, timestamps []int64, chunkSize int) ([]model.Block, error)
	LatestIndexedBlock(ctx context.Context) (uint64, error)
}

type Config struct {
	// FreshOnly drops blocks the chain-index subgraph has not indexed yet.
	FreshOnly bool
	Now       func() time.Time
}

type Builder struct {
	index     subgraph.Querier
	resolver  BlockResolver
	cache     *cache.Store[model.HourlyRates]
	freshOnly bool
	now       func() time.Time
	logger    *zap.Logger
}

// NewBuilder wires a Builder. store may be nil, in which case a private one is created.
func NewBuilder(cfg Config, index subgraph.Querier, resolver BlockResolver, store *cache.Store[model.HourlyRates], logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	if store == nil {
		store = cache.New[model.HourlyRates]("series", nil)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Builder{
		index:     index,
		resolver:  resolver,
		cache:     store,
		freshOnly: cfg.FreshOnly,
		now:       now,
		logger:    logger,
	}
}

// HourTimestamps lists start, start+1h, ... up to and including now-1h.
func HourTimestamps(start, now int64) []int64 {
	var out []int64
	for t := start; t <= now-hour; t += hour {
		out = append(out, t)
	}
	return out
}

// Build fetches the pair rate at every hour boundary since windowStart and pairs each
// sample with the next one. It never returns an error: failures are reported through
// the Status of the result.
func (b *Builder) Build(ctx context.Context, pairAddress string, windowStart int64) model.HourlyRates {
	pair := strings.ToLower(pairAddress)
	log := b.logger.With(zap.String("pair", pair), zap.Int64("start", windowStart))

	timestamps := HourTimestamps(windowStart, b.now().Unix())
	if len(timestamps) == 0 {
		return emptyRates(model.StatusAbsent, nil)
	}
	if b.resolver == nil || b.index == nil {
		return emptyRates(model.StatusFailed, fmt.Errorf("series builder is not configured"))
	}

	blockList, err := b.resolver.Resolve(ctx, timestamps, chunkSize)
	if err != nil {
		log.Warn("resolve hourly blocks failed", zap.Error(err))
		return emptyRates(model.StatusFailed, err)
	}
	if len(blockList) == 0 {
		return emptyRates(model.StatusAbsent, nil)
	}

	if b.freshOnly {
		latest, err := b.resolver.LatestIndexedBlock(ctx)
		if err != nil {
			log.Warn("latest indexed block unavailable, keeping all blocks", zap.Error(err))
		} else {
			blockList = blocks.FilterFresh(blockList, latest)
		}
		if len(blockList) == 0 {
			return emptyRates(model.StatusAbsent, nil)
		}
	}

	rows, err := batch.Execute(ctx, b.index, subgraph.HourlyPairRatesQuery(pair), blockList, chunkSize)
	if err != nil {
		log.Warn("fetch hourly rates failed", zap.Error(err))
		return emptyRates(model.StatusFailed, err)
	}

	samples, err := parseSamples(rows)
	if err != nil {
		log.Warn("decode hourly rates failed", zap.Error(err))
		return emptyRates(model.StatusFailed, err)
	}

	rate0, rate1 := Points(samples)
	if len(rate0) == 0 {
		return emptyRates(model.StatusAbsent, nil)
	}
	log.Debug("hourly rates built", zap.Int("points", len(rate0)))
	return model.HourlyRates{Rate0: rate0, Rate1: rate1, Status: model.StatusReady}
}

// Hourly returns the cached series for pair and window, building it on first use.
// Only ready series are kept.
func (b *Builder) Hourly(ctx context.Context, pairAddress string, window Window) model.HourlyRates {
	key := cacheKey(pairAddress, window)
	rates, _ := b.cache.Load(ctx, key, func(ctx context.Context) (model.HourlyRates, bool, error) {
		rates := b.Build(ctx, pairAddress, window.Start(b.now()))
		return rates, rates.Status == model.StatusReady, nil
	})
	return rates
}

// Peek reports the cached series, or a pending result while a build is in flight.
func (b *Builder) Peek(pairAddress string, window Window) (model.HourlyRates, bool) {
	key := cacheKey(pairAddress, window)
	if rates, ok := b.cache.Get(key); ok {
		return rates, true
	}
	if b.cache.Pending(key) {
		return emptyRates(model.StatusPending, nil), true
	}
	return model.HourlyRates{}, false
}

// Points turns ordered samples into open/close points. The last sample only closes the
// point before it.
func Points(samples []model.RateSample) (rate0, rate1 []model.HourlyRatePoint) {
	rate0 = make([]model.HourlyRatePoint, 0, len(samples))
	rate1 = make([]model.HourlyRatePoint, 0, len(samples))
	for i := 0; i+1 < len(samples); i++ {
		rate0 = append(rate0, model.HourlyRatePoint{
			Timestamp: samples[i].Timestamp,
			Open:      samples[i].Rate0,
			Close:     samples[i+1].Rate0,
		})
		rate1 = append(rate1, model.HourlyRatePoint{
			Timestamp: samples[i].Timestamp,
			Open:      samples[i].Rate1,
			Close:     samples[i+1].Rate1,
		})
	}
	return rate0, rate1
}

func parseSamples(rows map[string]json.RawMessage) ([]model.RateSample, error) {
	samples := make([]model.RateSample, 0, len(rows))
	for key, raw := range rows {
		ts, ok := subgraph.ParseTimestampKey(key)
		if !ok {
			continue
		}
		var row *subgraph.RateRow
		if err := json.Unmarshal(raw, &row); err != nil {
			return nil, fmt.Errorf("decode rates %s: %w", key, err)
		}
		// pair did not exist at this block
		if row == nil {
			continue
		}
		samples = append(samples, model.RateSample{
			Timestamp: ts,
			Rate0:     row.Token0Price.InexactFloat64(),
			Rate1:     row.Token1Price.InexactFloat64(),
		})
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i].Timestamp < samples[j].Timestamp })
	return samples, nil
}

func emptyRates(status model.Status, err error) model.HourlyRates {
	return model.HourlyRates{
		Rate0:  []model.HourlyRatePoint{},
		Rate1:  []model.HourlyRatePoint{},
		Status: status,
		Err:    err,
	}
}

func cacheKey(pairAddress string, window Window) string {
	return strings.ToLower(pairAddress) + ":" + string(window)
}
