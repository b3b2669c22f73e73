package blocks

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"pairScope/internal/batch"
	"pairScope/internal/metrics"
	"pairScope/internal/model"
	"pairScope/internal/subgraph"
)

// DefaultChunkSize is the bulk resolution chunk size.
const DefaultChunkSize = 500

// ChainHead reports the newest block of the chain itself.
type ChainHead interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
}

// Resolver maps UTC timestamps to indexed block numbers.
type Resolver struct {
	blocks  subgraph.Querier
	index   subgraph.Querier
	head    ChainHead
	cache   Cache
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewResolver builds a Resolver. blockSource answers block lookups, indexSource is the
// chain-index subgraph whose head bounds fresh blocks. cache may be nil.
func NewResolver(blockSource, indexSource subgraph.Querier, cache Cache, m *metrics.Metrics, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		blocks:  blockSource,
		index:   indexSource,
		cache:   cache,
		metrics: m,
		logger:  logger,
	}
}

// WithChainHead sets the ceiling LatestIndexedBlock falls back to when the
// chain-index head cannot be read.
func (r *Resolver) WithChainHead(head ChainHead) *Resolver {
	r.head = head
	return r
}

// ResolveOne returns the first block in [ts, ts+600), or false when none is indexed.
func (r *Resolver) ResolveOne(ctx context.Context, ts int64) (uint64, bool, error) {
	if r.blocks == nil {
		return 0, false, fmt.Errorf("block source is nil")
	}
	if cached := r.cached(ctx, []int64{ts}); len(cached) == 1 {
		return cached[ts], true, nil
	}

	var resp subgraph.BlocksResponse
	vars := map[string]any{
		"timestampFrom": ts,
		"timestampTo":   ts + subgraph.BlockWindowSeconds,
	}
	if err := r.blocks.Query(ctx, subgraph.BlockQuery, vars, &resp); err != nil {
		return 0, false, fmt.Errorf("query block %d: %w", ts, err)
	}
	if len(resp.Blocks) == 0 {
		return 0, false, nil
	}

	number := resp.Blocks[0].Number
	r.store(ctx, []model.Block{{Number: number, Timestamp: ts}})
	return number, true, nil
}

// Resolve maps each timestamp to its first indexed block, ordered by timestamp.
// Timestamps without a block are left out, so the result may be shorter than the input.
func (r *Resolver) Resolve(ctx context.Context, timestamps []int64, chunkSize int) ([]model.Block, error) {
	if len(timestamps) == 0 {
		return nil, nil
	}
	if r.blocks == nil {
		return nil, fmt.Errorf("block source is nil")
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	unique := dedupe(timestamps)
	found := r.cached(ctx, unique)

	missing := make([]int64, 0, len(unique)-len(found))
	for _, ts := range unique {
		if _, ok := found[ts]; !ok {
			missing = append(missing, ts)
		}
	}

	if len(missing) > 0 {
		rows, err := batch.Execute(ctx, r.blocks, subgraph.BlocksQuery, missing, chunkSize)
		if err != nil {
			return nil, fmt.Errorf("resolve blocks: %w", err)
		}

		fresh := make([]model.Block, 0, len(rows))
		for key, raw := range rows {
			ts, ok := subgraph.ParseTimestampKey(key)
			if !ok {
				continue
			}
			var list []subgraph.BlockRow
			if err := json.Unmarshal(raw, &list); err != nil {
				return nil, fmt.Errorf("decode blocks %s: %w", key, err)
			}
			if len(list) == 0 {
				continue
			}
			fresh = append(fresh, model.Block{Number: list[0].Number, Timestamp: ts})
			found[ts] = list[0].Number
		}
		r.store(ctx, fresh)
	}

	out := make([]model.Block, 0, len(found))
	for ts, number := range found {
		out = append(out, model.Block{Number: number, Timestamp: ts})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })

	if len(out) < len(unique) {
		r.logger.Debug("timestamps without block", zap.Int("requested", len(unique)), zap.Int("resolved", len(out)))
	}
	return out, nil
}

// LatestIndexedBlock returns the head block of the chain-index subgraph, or the chain
// head when the subgraph cannot answer and a ChainHead is set.
func (r *Resolver) LatestIndexedBlock(ctx context.Context) (uint64, error) {
	latest, err := r.indexHead(ctx)
	if err == nil || r.head == nil {
		return latest, err
	}
	r.logger.Warn("index head unavailable, using chain head", zap.Error(err))
	latest, headErr := r.head.LatestBlockNumber(ctx)
	if headErr != nil {
		return 0, fmt.Errorf("%w; chain head: %v", err, headErr)
	}
	return latest, nil
}

func (r *Resolver) indexHead(ctx context.Context) (uint64, error) {
	if r.index == nil {
		return 0, fmt.Errorf("index source is nil")
	}
	var resp subgraph.MetaResponse
	if err := r.index.Query(ctx, subgraph.LatestBlockQuery, nil, &resp); err != nil {
		return 0, fmt.Errorf("query latest block: %w", err)
	}
	return resp.Meta.Block.Number, nil
}

// FilterFresh drops blocks above latest. A zero latest disables the filter.
func FilterFresh(blocks []model.Block, latest uint64) []model.Block {
	if latest == 0 {
		return blocks
	}
	out := make([]model.Block, 0, len(blocks))
	for _, b := range blocks {
		if b.Number <= latest {
			out = append(out, b)
		}
	}
	return out
}

func (r *Resolver) cached(ctx context.Context, timestamps []int64) map[int64]uint64 {
	if r.cache == nil {
		return make(map[int64]uint64)
	}
	found, err := r.cache.GetBlocks(ctx, timestamps)
	if err != nil {
		r.logger.Warn("block cache read failed", zap.Error(err))
		return make(map[int64]uint64)
	}
	for range found {
		r.metrics.CacheHit("blocks")
	}
	for i := len(found); i < len(timestamps); i++ {
		r.metrics.CacheMiss("blocks")
	}
	return found
}

func (r *Resolver) store(ctx context.Context, blocks []model.Block) {
	if r.cache == nil || len(blocks) == 0 {
		return
	}
	if err := r.cache.PutBlocks(ctx, blocks); err != nil {
		r.logger.Warn("block cache write failed", zap.Error(err))
	}
}

func dedupe(timestamps []int64) []int64 {
	seen := make(map[int64]struct{}, len(timestamps))
	out := make([]int64, 0, len(timestamps))
	for _, ts := range timestamps {
		if _, ok := seen[ts]; ok {
			continue
		}
		seen[ts] = struct{}{}
		out = append(out, ts)
	}
	return out
}
