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
	"pairScope/internal/series"
	"pairScope/internal/storage"
	"pairScope/internal/tokens"
)

func runChart(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadChart(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	pair, ok := tokens.NormalizeAddress(cfg.Pair)
	if !ok {
		return fmt.Errorf("invalid pair address %q", cfg.Pair)
	}
	window, err := series.ParseWindow(cfg.Window)
	if err != nil {
		return err
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

	rates := d.series.Hourly(fetchCtx, pair, window)
	switch rates.Status {
	case model.StatusFailed:
		return fmt.Errorf("build hourly rates: %w", rates.Err)
	case model.StatusAbsent:
		logger.Warn("no hourly rates", zap.String("pair", pair), zap.String("window", string(window)))
	}

	now := time.Now()
	candles := series.Candles(rates.Rate0, 0, now)
	if len(rates.Rate0) > 0 {
		live, err := d.live.LiveRate(fetchCtx, pair)
		if err != nil {
			logger.Warn("live rate unavailable", zap.String("pair", pair), zap.Error(err))
			candles = candles[:len(rates.Rate0)]
		} else {
			candles = series.Candles(rates.Rate0, live, now)
		}
	}

	if cfg.Out != "" {
		sink := storage.NewJsonlStorage(cfg.Out)
		if err := sink.PutCandles(storage.Rows(pair, 0, candles)); err != nil {
			return err
		}
		if err := sink.PutCandles(storage.Rows(pair, 1, series.Candles(rates.Rate1, 0, now)[:len(rates.Rate1)])); err != nil {
			return err
		}
		logger.Info("candles written", zap.String("out", cfg.Out), zap.Int("candles", len(candles)+len(rates.Rate1)))
	}

	if d.store != nil && rates.Status == model.StatusReady {
		if err := d.store.UpsertHourlyRates(fetchCtx, pair, rates); err != nil {
			return err
		}
		logger.Info("hourly rates stored", zap.String("pair", pair), zap.Int("points", len(rates.Rate0)))
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(map[string]any{
		"pair":    pair,
		"window":  window,
		"status":  rates.Status,
		"rate0":   rates.Rate0,
		"rate1":   rates.Rate1,
		"candles": candles,
	})
}
