package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pairScope/internal/blocks"
	"pairScope/internal/config"
)

func runBlocks(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadBlocks(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if len(cfg.Timestamps) == 0 {
		return fmt.Errorf("timestamp list is required")
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

	resolved, err := d.resolver.Resolve(fetchCtx, cfg.Timestamps, cfg.ChunkSize)
	if err != nil {
		return err
	}
	if cfg.FreshOnly {
		latest, err := d.resolver.LatestIndexedBlock(fetchCtx)
		if err != nil {
			return err
		}
		resolved = blocks.FilterFresh(resolved, latest)
	}

	logger.Info("blocks resolved", zap.Int("requested", len(cfg.Timestamps)), zap.Int("resolved", len(resolved)))

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(resolved)
}
