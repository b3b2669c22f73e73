package dex

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Reserves are the raw pair balances as of BlockTimestampLast.
type Reserves struct {
	Reserve0           *big.Int
	Reserve1           *big.Int
	BlockTimestampLast uint32
}

// PairReader reads V2 pair state and scales reserves by token decimals.
type PairReader struct {
	caller Caller
	tokens *TokenCache
	logger *zap.Logger

	mu    sync.RWMutex
	pairs map[common.Address][2]common.Address
}

func NewPairReader(caller Caller, tokens *TokenCache, logger *zap.Logger) *PairReader {
	if tokens == nil {
		tokens = NewTokenCache()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PairReader{
		caller: caller,
		tokens: tokens,
		logger: logger,
		pairs:  make(map[common.Address][2]common.Address),
	}
}

// Tokens returns token0 and token1 of a pair. They never change and are cached.
func (r *PairReader) Tokens(ctx context.Context, pair common.Address) (common.Address, common.Address, error) {
	r.mu.RLock()
	cached, ok := r.pairs[pair]
	r.mu.RUnlock()
	if ok {
		return cached[0], cached[1], nil
	}
	if r.caller == nil {
		return common.Address{}, common.Address{}, fmt.Errorf("chain client is nil")
	}

	pairABI, err := V2PairABI()
	if err != nil {
		return common.Address{}, common.Address{}, fmt.Errorf("parse pair abi: %w", err)
	}
	var out [2]common.Address
	for i, method := range []string{"token0", "token1"} {
		values, err := call(ctx, r.caller, pair, pairABI, method, nil)
		if err != nil {
			return common.Address{}, common.Address{}, err
		}
		if out[i], err = asAddress(values[0]); err != nil {
			return common.Address{}, common.Address{}, fmt.Errorf("%s: %w", method, err)
		}
	}

	r.mu.Lock()
	r.pairs[pair] = out
	r.mu.Unlock()
	return out[0], out[1], nil
}

// Reserves reads getReserves at block, or at the head when block is nil.
func (r *PairReader) Reserves(ctx context.Context, pair common.Address, block *big.Int) (Reserves, error) {
	if r.caller == nil {
		return Reserves{}, fmt.Errorf("chain client is nil")
	}
	pairABI, err := V2PairABI()
	if err != nil {
		return Reserves{}, fmt.Errorf("parse pair abi: %w", err)
	}
	values, err := call(ctx, r.caller, pair, pairABI, "getReserves", block)
	if err != nil {
		return Reserves{}, err
	}
	if len(values) != 3 {
		return Reserves{}, fmt.Errorf("getReserves return size %d", len(values))
	}

	var res Reserves
	if res.Reserve0, err = asBigInt(values[0]); err != nil {
		return Reserves{}, fmt.Errorf("reserve0: %w", err)
	}
	if res.Reserve1, err = asBigInt(values[1]); err != nil {
		return Reserves{}, fmt.Errorf("reserve1: %w", err)
	}
	ts, err := asBigInt(values[2])
	if err != nil {
		return Reserves{}, fmt.Errorf("block timestamp: %w", err)
	}
	res.BlockTimestampLast = uint32(ts.Uint64())
	return res, nil
}

// LiveRate returns the current token1-per-token0 rate of a pair from its reserves.
func (r *PairReader) LiveRate(ctx context.Context, pairAddress string) (float64, error) {
	if !common.IsHexAddress(pairAddress) {
		return 0, fmt.Errorf("invalid pair address %q", pairAddress)
	}
	pair := common.HexToAddress(pairAddress)

	token0, token1, err := r.Tokens(ctx, pair)
	if err != nil {
		return 0, err
	}
	meta0, err := r.token(ctx, token0)
	if err != nil {
		return 0, err
	}
	meta1, err := r.token(ctx, token1)
	if err != nil {
		return 0, err
	}
	res, err := r.Reserves(ctx, pair, nil)
	if err != nil {
		return 0, err
	}

	reserve0 := decimal.NewFromBigInt(res.Reserve0, -int32(meta0.Decimals))
	reserve1 := decimal.NewFromBigInt(res.Reserve1, -int32(meta1.Decimals))
	if reserve0.IsZero() {
		return 0, nil
	}
	return reserve1.Div(reserve0).InexactFloat64(), nil
}

func (r *PairReader) token(ctx context.Context, address common.Address) (TokenMeta, error) {
	if meta, ok := r.tokens.Get(address); ok {
		return meta, nil
	}
	meta, err := FetchToken(ctx, r.caller, address, r.logger)
	if err != nil {
		return meta, fmt.Errorf("token %s: %w", address.Hex(), err)
	}
	r.tokens.Set(address, meta)
	return meta, nil
}
