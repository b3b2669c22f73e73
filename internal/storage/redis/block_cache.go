package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	goredis "github.com/redis/go-redis/v9"

	"pairScope/internal/blocks"
	"pairScope/internal/model"
)

var _ blocks.Cache = (*BlockCache)(nil)

const defaultBlockPrefix = "pairscope:block:"

// BlockCache shares resolved timestamp to block mappings between processes.
// Keys carry no TTL because a resolved mapping never changes.
type BlockCache struct {
	rdb    *Client
	prefix string
}

func NewBlockCache(rdb *Client, prefix string) (*BlockCache, error) {
	if rdb == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	if prefix == "" {
		prefix = defaultBlockPrefix
	}
	return &BlockCache{rdb: rdb, prefix: prefix}, nil
}

func (c *BlockCache) key(ts int64) string {
	return c.prefix + strconv.FormatInt(ts, 10)
}

func (c *BlockCache) GetBlocks(ctx context.Context, timestamps []int64) (map[int64]uint64, error) {
	out := make(map[int64]uint64, len(timestamps))
	if len(timestamps) == 0 {
		return out, nil
	}

	keys := make([]string, 0, len(timestamps))
	for _, ts := range timestamps {
		keys = append(keys, c.key(ts))
	}

	values, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil && !errors.Is(err, goredis.Nil) {
		return nil, fmt.Errorf("mget blocks: %w", err)
	}
	for i, value := range values {
		s, ok := value.(string)
		if !ok {
			continue
		}
		number, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			continue
		}
		out[timestamps[i]] = number
	}
	return out, nil
}

func (c *BlockCache) PutBlocks(ctx context.Context, blocks []model.Block) error {
	if len(blocks) == 0 {
		return nil
	}
	pipe := c.rdb.Pipeline()
	for _, b := range blocks {
		pipe.Set(ctx, c.key(b.Timestamp), strconv.FormatUint(b.Number, 10), 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store blocks: %w", err)
	}
	return nil
}
