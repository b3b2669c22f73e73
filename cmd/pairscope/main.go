package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	root := &cobra.Command{
		Use:          "pairscope",
		Short:        "DEX pair stats and hourly rate series",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Fetch pair stats with 24h, 48h and 1w changes",
		RunE:  runStats,
	}
	commonFlags(statsCmd.Flags())
	statsCmd.Flags().StringSlice("pair", nil, "pair addresses (comma-separated)")
	root.AddCommand(statsCmd)

	chartCmd := &cobra.Command{
		Use:   "chart",
		Short: "Build the hourly rate series and candles for a pair",
		RunE:  runChart,
	}
	commonFlags(chartCmd.Flags())
	chartCmd.Flags().String("pair", "", "pair address")
	chartCmd.Flags().String("window", "month", "history window (week, month, all)")
	chartCmd.Flags().String("out", "", "optional candles JSONL path")
	root.AddCommand(chartCmd)

	blocksCmd := &cobra.Command{
		Use:   "blocks",
		Short: "Resolve timestamps to indexed blocks",
		RunE:  runBlocks,
	}
	commonFlags(blocksCmd.Flags())
	blocksCmd.Flags().StringSlice("timestamp", nil, "timestamps (unix seconds or RFC3339, comma-separated)")
	blocksCmd.Flags().Int("chunk-size", 500, "timestamps per query")
	root.AddCommand(blocksCmd)

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve pair stats and hourly series over HTTP",
		RunE:  runServe,
	}
	commonFlags(serveCmd.Flags())
	serveCmd.Flags().String("addr", ":8080", "listen address")
	root.AddCommand(serveCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func commonFlags(fs *pflag.FlagSet) {
	fs.String("subgraph-url", "", "chain-index subgraph URL")
	fs.String("blocks-url", "", "block-index subgraph URL")
	fs.String("rpc", "", "optional Ethereum RPC URL for live reserves")
	fs.String("pg-dsn", "", "optional Postgres DSN")
	fs.String("redis-addr", "", "optional Redis address for the block cache")
	fs.String("redis-password", "", "Redis password")
	fs.Int("redis-db", 0, "Redis database")
	fs.Duration("query-timeout", 30*time.Second, "timeout for one fetch")
	fs.Int("max-retries", 3, "maximum retry attempts per query")
	fs.Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	fs.Bool("fresh-only", true, "drop blocks the chain-index subgraph has not indexed yet")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
