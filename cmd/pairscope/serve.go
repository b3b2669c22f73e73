package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	apihttp "pairScope/internal/api/http"
	"pairScope/internal/api/http/mw"
	"pairScope/internal/config"
)

func runServe(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadServe(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d, err := buildDeps(ctx, cfg.Common, logger)
	if err != nil {
		return err
	}
	defer d.Close()

	api := apihttp.NewAPI(apihttp.Deps{
		Stats:   d.stats,
		Series:  d.series,
		Live:    d.live,
		Timeout: cfg.QueryTimeout,
		Log:     logger,
	})
	router := apihttp.BuildRouter(api, mw.NewLogging(logger), d.metrics.Handler())

	logger.Info("serve start",
		zap.String("addr", cfg.Addr),
		zap.String("subgraph", cfg.SubgraphURL),
		zap.String("blocks", cfg.BlocksURL),
		zap.Bool("fresh_only", cfg.FreshOnly),
		zap.Bool("rpc", cfg.RPCURL != ""),
		zap.Bool("postgres", d.store != nil),
	)

	return apihttp.NewServer(cfg.Addr, router, logger).Run(ctx)
}
