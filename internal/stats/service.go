// Package stats derives multi-period volume and liquidity changes for pairs.
package stats

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pairScope/internal/cache"
	"pairScope/internal/model"
	"pairScope/internal/subgraph"
	"pairScope/internal/tokens"
)

var (
	ErrPairNotFound   = errors.New("pair not found")
	ErrInvalidAddress = errors.New("invalid pair address")
	// ErrNoEthPrice is returned while the index has no usable current bundle price.
	ErrNoEthPrice = errors.New("eth price unavailable")
)

const ethPriceKey = "eth"

// BlockResolver is the part of blocks.Resolver the service needs.
type BlockResolver interface {
	ResolveOne(ctx context.Context, ts int64) (uint64, bool, error)
	Resolve(ctx context.Context, timestamps []int64, chunkSize int) ([]model.Block, error)
}

type Config struct {
	Now func() time.Time
}

// Service fetches and caches pair statistics and the native token price.
type Service struct {
	index    subgraph.Querier
	resolver BlockResolver
	pairs    *cache.Store[model.PairStats]
	eth      *cache.Store[model.EthPrice]
	now      func() time.Time
	logger   *zap.Logger
}

// NewService wires a Service. Nil stores are replaced with private ones.
func NewService(cfg Config, index subgraph.Querier, resolver BlockResolver, pairs *cache.Store[model.PairStats], eth *cache.Store[model.EthPrice], logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if pairs == nil {
		pairs = cache.New[model.PairStats]("pairs", nil)
	}
	if eth == nil {
		eth = cache.New[model.EthPrice]("eth_price", nil)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		index:    index,
		resolver: resolver,
		pairs:    pairs,
		eth:      eth,
		now:      now,
		logger:   logger,
	}
}

// period is one historical comparison point.
type period struct {
	name  string
	block uint64
	found bool
	rows  map[string]model.PairSnapshot
}

// FetchPairs loads the current snapshot of every pair together with its one-day, two-day
// and one-week history and derives the change metrics. Pairs the subgraph does not know
// are left out of the result.
func (s *Service) FetchPairs(ctx context.Context, pairs []string, ethPriceUSD float64) ([]model.PairStats, error) {
	if s.index == nil || s.resolver == nil {
		return nil, fmt.Errorf("stats service is not configured")
	}
	if len(pairs) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(pairs))
	for _, p := range pairs {
		ids = append(ids, strings.ToLower(p))
	}

	t1, t2, tWeek := ChangeTimestamps(s.now())
	resolved, err := s.resolver.Resolve(ctx, []int64{t1, t2, tWeek}, 0)
	if err != nil {
		return nil, fmt.Errorf("resolve change blocks: %w", err)
	}
	byTime := make(map[int64]uint64, len(resolved))
	for _, b := range resolved {
		byTime[b.Timestamp] = b.Number
	}
	periods := []*period{{name: "day1"}, {name: "day2"}, {name: "week1"}}
	for i, ts := range []int64{t1, t2, tWeek} {
		periods[i].block, periods[i].found = byTime[ts]
	}

	var current subgraph.PairsResponse
	if err := s.index.Query(ctx, subgraph.PairsBulkQuery, map[string]any{"allPairs": ids}, &current); err != nil {
		return nil, fmt.Errorf("query pairs: %w", err)
	}
	if len(current.Pairs) == 0 {
		return nil, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range periods {
		if !p.found {
			s.logger.Debug("no block for period", zap.String("period", p.name))
			continue
		}
		p := p
		g.Go(func() error {
			var resp subgraph.PairsResponse
			if err := s.index.Query(gctx, subgraph.PairsHistoricalBulkQuery(p.block, ids), nil, &resp); err != nil {
				return fmt.Errorf("query %s pairs at block %d: %w", p.name, p.block, err)
			}
			p.rows = make(map[string]model.PairSnapshot, len(resp.Pairs))
			for _, row := range resp.Pairs {
				p.rows[strings.ToLower(row.ID)] = row.Snapshot()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]model.PairStats, len(current.Pairs))
	g, gctx = errgroup.WithContext(ctx)
	for i, row := range current.Pairs {
		i := i
		snap := row.Snapshot()
		g.Go(func() error {
			history := make([]*model.PairSnapshot, len(periods))
			for j, p := range periods {
				h, err := s.history(gctx, p, snap.ID)
				if err != nil {
					return err
				}
				history[j] = h
			}
			stats := Aggregate(snap, history[0], history[1], history[2], ethPriceUSD, periods[0].block)
			tokens.NormalizeNames(&stats.PairSnapshot)
			out[i] = stats
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// history returns the pair snapshot for a period, querying the single pair when the bulk
// result did not include it.
func (s *Service) history(ctx context.Context, p *period, pairID string) (*model.PairSnapshot, error) {
	if !p.found {
		return nil, nil
	}
	if snap, ok := p.rows[strings.ToLower(pairID)]; ok {
		return &snap, nil
	}

	var resp subgraph.PairsResponse
	if err := s.index.Query(ctx, subgraph.PairDataQuery(pairID, p.block), nil, &resp); err != nil {
		return nil, fmt.Errorf("query %s pair %s at block %d: %w", p.name, pairID, p.block, err)
	}
	if len(resp.Pairs) == 0 {
		return nil, nil
	}
	snap := resp.Pairs[0].Snapshot()
	return &snap, nil
}

// Pair returns the statistics of one pair. The first successful fetch is cached for the
// life of the service; concurrent callers share a single fetch.
func (s *Service) Pair(ctx context.Context, address string) model.Result[model.PairStats] {
	addr, ok := tokens.NormalizeAddress(address)
	if !ok {
		return model.Failed[model.PairStats](fmt.Errorf("%w: %q", ErrInvalidAddress, address))
	}

	stats, err := s.pairs.Load(ctx, addr, func(ctx context.Context) (model.PairStats, bool, error) {
		price, err := s.EthPrice(ctx)
		if err != nil {
			return model.PairStats{}, false, err
		}
		if price.Current <= 0 {
			return model.PairStats{}, false, ErrNoEthPrice
		}
		list, err := s.FetchPairs(ctx, []string{addr}, price.Current)
		if err != nil {
			return model.PairStats{}, false, err
		}
		if len(list) == 0 {
			return model.PairStats{}, false, ErrPairNotFound
		}
		return list[0], true, nil
	})
	switch {
	case errors.Is(err, ErrPairNotFound):
		return model.Absent[model.PairStats]()
	case err != nil:
		s.logger.Warn("fetch pair failed", zap.String("pair", addr), zap.Error(err))
		return model.Failed[model.PairStats](err)
	}
	return model.Ready(stats)
}

// Peek reports a cached pair as ready and an in-flight fetch as pending without fetching.
func (s *Service) Peek(address string) (model.Result[model.PairStats], bool) {
	addr, ok := tokens.NormalizeAddress(address)
	if !ok {
		return model.Result[model.PairStats]{}, false
	}
	if stats, ok := s.pairs.Get(addr); ok {
		return model.Ready(stats), true
	}
	if s.pairs.Pending(addr) {
		return model.Pending[model.PairStats](), true
	}
	return model.Result[model.PairStats]{}, false
}

// EthPrice returns the current native token price, its price one day ago and the change
// between them. The first lookup with a non-zero current price is kept for the life of
// the service.
func (s *Service) EthPrice(ctx context.Context) (model.EthPrice, error) {
	return s.eth.Load(ctx, ethPriceKey, func(ctx context.Context) (model.EthPrice, bool, error) {
		price, err := s.fetchEthPrice(ctx)
		return price, err == nil, err
	})
}

func (s *Service) fetchEthPrice(ctx context.Context) (model.EthPrice, error) {
	if s.index == nil || s.resolver == nil {
		return model.EthPrice{}, fmt.Errorf("stats service is not configured")
	}
	oneDayAgo, _, _ := ChangeTimestamps(s.now())
	block, found, err := s.resolver.ResolveOne(ctx, oneDayAgo)
	if err != nil {
		return model.EthPrice{}, fmt.Errorf("resolve one day block: %w", err)
	}

	current, err := s.bundlePrice(ctx, 0)
	if err != nil {
		return model.EthPrice{}, err
	}
	if current <= 0 {
		return model.EthPrice{}, ErrNoEthPrice
	}
	var previous float64
	if found {
		if previous, err = s.bundlePrice(ctx, block); err != nil {
			return model.EthPrice{}, err
		}
	}

	return model.EthPrice{
		Current:       current,
		OneDayAgo:     previous,
		ChangePercent: PercentChange(current, previous),
	}, nil
}

func (s *Service) bundlePrice(ctx context.Context, block uint64) (float64, error) {
	var resp subgraph.BundlesResponse
	if err := s.index.Query(ctx, subgraph.EthPriceQuery(block), nil, &resp); err != nil {
		return 0, fmt.Errorf("query eth price at block %d: %w", block, err)
	}
	if len(resp.Bundles) == 0 {
		return 0, nil
	}
	return resp.Bundles[0].EthPrice.InexactFloat64(), nil
}
