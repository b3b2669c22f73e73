package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	apihttp "pairScope/internal/api/http"
	"pairScope/internal/blocks"
	"pairScope/internal/cache"
	"pairScope/internal/chain"
	"pairScope/internal/config"
	"pairScope/internal/dex"
	"pairScope/internal/metrics"
	"pairScope/internal/model"
	"pairScope/internal/series"
	"pairScope/internal/stats"
	"pairScope/internal/storage/postgres"
	"pairScope/internal/storage/redis"
	"pairScope/internal/subgraph"
	"pairScope/internal/tokens"
)

// deps holds everything a command may use. Optional parts are nil when not configured.
type deps struct {
	metrics  *metrics.Metrics
	resolver *blocks.Resolver
	stats    *stats.Service
	series   *series.Builder
	live     apihttp.LiveRates
	store    *postgres.Store

	closers []func()
}

func (d *deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func buildDeps(ctx context.Context, cfg config.Common, logger *zap.Logger) (*deps, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := &deps{metrics: metrics.New()}

	index, err := subgraph.NewClient(subgraph.Config{
		Name:         "chain-index",
		URL:          cfg.SubgraphURL,
		Timeout:      cfg.QueryTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, d.metrics, logger)
	if err != nil {
		return nil, err
	}
	blockSource, err := subgraph.NewClient(subgraph.Config{
		Name:         "block-index",
		URL:          cfg.BlocksURL,
		Timeout:      cfg.QueryTimeout,
		MaxRetries:   cfg.MaxRetries,
		RetryBackoff: cfg.RetryBackoff,
	}, d.metrics, logger)
	if err != nil {
		return nil, err
	}

	var blockCache blocks.Cache = blocks.NewMemoryCache()
	if cfg.RedisAddr != "" {
		rdb, err := redis.New(ctx, redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		if err != nil {
			d.Close()
			return nil, err
		}
		d.closers = append(d.closers, func() { rdb.Close() })
		shared, err := redis.NewBlockCache(rdb, "")
		if err != nil {
			d.Close()
			return nil, err
		}
		blockCache = shared
	}
	d.resolver = blocks.NewResolver(blockSource, index, blockCache, d.metrics, logger)

	d.stats = stats.NewService(stats.Config{}, index, d.resolver,
		cache.New[model.PairStats]("pairs", d.metrics),
		cache.New[model.EthPrice]("eth_price", d.metrics),
		logger)
	d.series = series.NewBuilder(series.Config{FreshOnly: cfg.FreshOnly}, index, d.resolver,
		cache.New[model.HourlyRates]("hourly", d.metrics), logger)

	d.live = apihttp.SnapshotRates{Stats: d.stats}
	if cfg.RPCURL != "" {
		client, err := dialChain(ctx, cfg.RPCURL, logger)
		if err != nil {
			d.Close()
			return nil, err
		}
		d.closers = append(d.closers, client.Close)
		d.resolver.WithChainHead(client)
		d.live = dex.NewPairReader(client, dex.NewTokenCache(), logger)
	}

	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			d.Close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		d.closers = append(d.closers, store.Close)
		if err := store.EnsureSchema(ctx); err != nil {
			d.Close()
			return nil, err
		}
		d.store = store
	}

	return d, nil
}

func dialChain(ctx context.Context, rpcURL string, logger *zap.Logger) (*chain.Client, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	client, err := chain.NewClient(dialCtx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("connect rpc: %w", err)
	}
	chainID, err := client.SupportedChain(dialCtx)
	if err != nil {
		client.Close()
		return nil, err
	}
	wrapped, _ := tokens.WrappedNative(chainID)
	logger.Info("rpc connected", zap.String("chain", chainID.String()), zap.String("wrapped_native", wrapped))
	return client, nil
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
