package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pairScope/internal/config"
	"pairScope/internal/model"
	"pairScope/internal/stats"
	"pairScope/internal/tokens"
)

type pairReport struct {
	model.PairStats
	Panels model.Panels `json:"panels"`
}

func runStats(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadStats(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if len(cfg.Pairs) == 0 {
		return fmt.Errorf("pair list is required")
	}
	pairs := make([]string, 0, len(cfg.Pairs))
	for _, raw := range cfg.Pairs {
		addr, ok := tokens.NormalizeAddress(raw)
		if !ok {
			return fmt.Errorf("invalid pair address %q", raw)
		}
		pairs = append(pairs, addr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := buildDeps(ctx, cfg.Common, logger)
	if err != nil {
		return err
	}
	defer d.Close()

	fetchCtx, cancel := withTimeout(ctx, cfg.QueryTimeout)
	defer cancel()

	price, err := d.stats.EthPrice(fetchCtx)
	if err != nil {
		return err
	}
	result, err := d.stats.FetchPairs(fetchCtx, pairs, price.Current)
	if err != nil {
		return err
	}
	if len(result) < len(pairs) {
		logger.Warn("pairs not found", zap.Int("requested", len(pairs)), zap.Int("found", len(result)))
	}

	if d.store != nil {
		if err := d.store.UpsertPairStats(fetchCtx, result, time.Now().UTC()); err != nil {
			return err
		}
		logger.Info("pair stats stored", zap.Int("pairs", len(result)))
	}

	reports := make([]pairReport, 0, len(result))
	for _, s := range result {
		reports = append(reports, pairReport{PairStats: s, Panels: stats.Panels(s)})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"ethPrice": price,
		"pairs":    reports,
	})
}
