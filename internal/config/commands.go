package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// StatsConfig holds configuration for the stats command.
type StatsConfig struct {
	Common
	Pairs []string
}

func LoadStats(cfgFile string, flags *pflag.FlagSet) (StatsConfig, error) {
	v, err := load(cfgFile, flags, nil)
	if err != nil {
		return StatsConfig{}, err
	}
	return StatsConfig{Common: common(v), Pairs: getStringSlice(v, "pair")}, nil
}

// ChartConfig holds configuration for the chart command.
type ChartConfig struct {
	Common
	Pair   string
	Window string
	Out    string
}

func LoadChart(cfgFile string, flags *pflag.FlagSet) (ChartConfig, error) {
	v, err := load(cfgFile, flags, map[string]any{"window": "month"})
	if err != nil {
		return ChartConfig{}, err
	}
	return ChartConfig{
		Common: common(v),
		Pair:   v.GetString("pair"),
		Window: v.GetString("window"),
		Out:    v.GetString("out"),
	}, nil
}

// BlocksConfig holds configuration for the blocks command.
type BlocksConfig struct {
	Common
	Timestamps []int64
	ChunkSize  int
}

func LoadBlocks(cfgFile string, flags *pflag.FlagSet) (BlocksConfig, error) {
	v, err := load(cfgFile, flags, map[string]any{"chunk-size": 500})
	if err != nil {
		return BlocksConfig{}, err
	}
	cfg := BlocksConfig{Common: common(v), ChunkSize: v.GetInt("chunk-size")}
	for _, raw := range getStringSlice(v, "timestamp") {
		ts, err := ParseTimestamp(raw)
		if err != nil {
			return BlocksConfig{}, fmt.Errorf("parse timestamp %q: %w", raw, err)
		}
		cfg.Timestamps = append(cfg.Timestamps, ts)
	}
	return cfg, nil
}

// ServeConfig holds configuration for the serve command.
type ServeConfig struct {
	Common
	Addr string
}

func LoadServe(cfgFile string, flags *pflag.FlagSet) (ServeConfig, error) {
	v, err := load(cfgFile, flags, map[string]any{"addr": ":8080"})
	if err != nil {
		return ServeConfig{}, err
	}
	return ServeConfig{Common: common(v), Addr: v.GetString("addr")}, nil
}

// ParseTimestamp parses unix seconds or RFC3339.
func ParseTimestamp(input string) (int64, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, fmt.Errorf("empty timestamp")
	}
	if isNumeric(input) {
		return strconv.ParseInt(input, 10, 64)
	}
	tm, err := time.Parse(time.RFC3339, input)
	if err != nil {
		return 0, err
	}
	return tm.Unix(), nil
}

func isNumeric(input string) bool {
	for _, r := range input {
		if r < '0' || r > '9' {
			return false
		}
	}
	return input != ""
}
