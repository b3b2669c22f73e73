package dex

import (
	"context"
	"errors"
	"math/big"
	"sync/atomic"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	pairAddr  = common.HexToAddress("0x00000000000000000000000000000000000000aa")
	token0    = common.HexToAddress("0x00000000000000000000000000000000000000b0")
	token1    = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	legacyTok = common.HexToAddress("0x00000000000000000000000000000000000000b2")
)

const legacyTokenABIJSON = `[
  {"inputs": [], "name": "decimals", "outputs": [{"type": "uint8"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "symbol", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"},
  {"inputs": [], "name": "name", "outputs": [{"type": "bytes32"}], "stateMutability": "view", "type": "function"}
]`

// fakeChain answers eth_call from per-contract return values keyed by method name.
type fakeChain struct {
	abis    map[common.Address]abi.ABI
	returns map[common.Address]map[string][]interface{}
	calls   atomic.Int32
}

func (f *fakeChain) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	f.calls.Add(1)
	parsed, ok := f.abis[*msg.To]
	if !ok {
		return nil, errors.New("execution reverted")
	}
	method, err := parsed.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	values, ok := f.returns[*msg.To][method.Name]
	if !ok {
		return nil, errors.New("execution reverted")
	}
	return method.Outputs.Pack(values...)
}

func mustABI(t *testing.T, l *lazyABI) abi.ABI {
	t.Helper()
	parsed, err := l.get()
	require.NoError(t, err)
	return parsed
}

func newFakeChain(t *testing.T) *fakeChain {
	pairABI := mustABI(t, v2PairABI)
	stringABI := mustABI(t, erc20ABIString)

	var mkr [32]byte
	copy(mkr[:], "MKR")

	return &fakeChain{
		abis: map[common.Address]abi.ABI{
			pairAddr:  pairABI,
			token0:    stringABI,
			token1:    stringABI,
			legacyTok: mustABI(t, &lazyABI{json: legacyTokenABIJSON}),
		},
		returns: map[common.Address]map[string][]interface{}{
			pairAddr: {
				"token0": {token0},
				"token1": {token1},
				// 2 token0 (18 decimals) against 3000 token1 (6 decimals)
				"getReserves": {
					new(big.Int).Mul(big.NewInt(2), new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)),
					big.NewInt(3_000_000_000),
					uint32(1_600_000_000),
				},
			},
			token0:    {"decimals": {uint8(18)}, "symbol": {"WETH"}, "name": {"Wrapped Ether"}},
			token1:    {"decimals": {uint8(6)}, "symbol": {"USDC"}, "name": {"USD Coin"}},
			legacyTok: {"decimals": {uint8(18)}, "symbol": {mkr}, "name": {mkr}},
		},
	}
}

func TestLiveRateScalesByDecimals(t *testing.T) {
	fake := newFakeChain(t)
	r := NewPairReader(fake, nil, nil)

	rate, err := r.LiveRate(context.Background(), pairAddr.Hex())
	require.NoError(t, err)
	assert.InDelta(t, 1500.0, rate, 1e-9)

	calls := fake.calls.Load()
	_, err = r.LiveRate(context.Background(), pairAddr.Hex())
	require.NoError(t, err)
	// tokens and metadata are cached, only getReserves is repeated
	assert.Equal(t, calls+1, fake.calls.Load())
}

func TestReserves(t *testing.T) {
	r := NewPairReader(newFakeChain(t), nil, nil)

	res, err := r.Reserves(context.Background(), pairAddr, nil)
	require.NoError(t, err)
	assert.Equal(t, "3000000000", res.Reserve1.String())
	assert.Equal(t, uint32(1_600_000_000), res.BlockTimestampLast)
}

func TestLiveRateErrors(t *testing.T) {
	r := NewPairReader(newFakeChain(t), nil, nil)
	_, err := r.LiveRate(context.Background(), "0x1234")
	assert.Error(t, err)

	_, err = r.LiveRate(context.Background(), "0x00000000000000000000000000000000000000ff")
	assert.Error(t, err)

	_, err = NewPairReader(nil, nil, nil).LiveRate(context.Background(), pairAddr.Hex())
	assert.Error(t, err)
}

func TestFetchToken(t *testing.T) {
	fake := newFakeChain(t)

	meta, err := FetchToken(context.Background(), fake, token1, nil)
	require.NoError(t, err)
	assert.Equal(t, TokenMeta{Address: token1.Hex(), Decimals: 6, Symbol: "USDC", Name: "USD Coin"}, meta)

	meta, err = FetchToken(context.Background(), fake, legacyTok, nil)
	require.NoError(t, err)
	assert.Equal(t, "MKR", meta.Symbol)
	assert.Equal(t, "MKR", meta.Name)

	_, err = FetchToken(context.Background(), fake, pairAddr, nil)
	assert.Error(t, err, "decimals is required")
}

func TestBytes32ToString(t *testing.T) {
	var raw [32]byte
	copy(raw[:], "MKR")
	s, ok := bytes32ToString(raw)
	assert.True(t, ok)
	assert.Equal(t, "MKR", s)

	_, ok = bytes32ToString(42)
	assert.False(t, ok)
}
