package blocks

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairScope/internal/model"
	"pairScope/internal/subgraph"
	"pairScope/internal/subgraph/subgraphtest"
)

var aliasPattern = regexp.MustCompile(`t(\d+): blocks`)

// chainResponder answers bulk block lookups from a timestamp to block table.
func chainResponder(chain map[int64]uint64) func(string, map[string]any) (any, error) {
	return func(query string, vars map[string]any) (any, error) {
		if query == subgraph.BlockQuery {
			from, _ := vars["timestampFrom"].(int64)
			if number, ok := chain[from]; ok {
				return map[string]any{"blocks": []map[string]string{{"number": strconv.FormatUint(number, 10), "timestamp": strconv.FormatInt(from, 10)}}}, nil
			}
			return map[string]any{"blocks": []any{}}, nil
		}
		page := map[string]any{}
		for _, m := range aliasPattern.FindAllStringSubmatch(query, -1) {
			ts, _ := strconv.ParseInt(m[1], 10, 64)
			rows := []map[string]string{}
			if number, ok := chain[ts]; ok {
				rows = append(rows, map[string]string{"number": strconv.FormatUint(number, 10)})
			}
			page["t"+m[1]] = rows
		}
		return page, nil
	}
}

func TestResolveEmptyInputIssuesNoQuery(t *testing.T) {
	fake := &subgraphtest.Fake{Respond: chainResponder(nil)}
	r := NewResolver(fake, fake, nil, nil, nil)

	got, err := r.Resolve(context.Background(), nil, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, fake.Calls())
}

func TestResolveOrdersAndOmitsMissing(t *testing.T) {
	fake := &subgraphtest.Fake{Respond: chainResponder(map[int64]uint64{
		3600:  30,
		7200:  60,
		14400: 120,
	})}
	r := NewResolver(fake, fake, nil, nil, nil)

	got, err := r.Resolve(context.Background(), []int64{14400, 3600, 10800, 7200}, 0)
	require.NoError(t, err)
	assert.Equal(t, []model.Block{
		{Number: 30, Timestamp: 3600},
		{Number: 60, Timestamp: 7200},
		{Number: 120, Timestamp: 14400},
	}, got)
	assert.Len(t, fake.Calls(), 1)
}

func TestResolveChunksLargeInput(t *testing.T) {
	chain := map[int64]uint64{}
	timestamps := make([]int64, 0, 1200)
	for i := int64(0); i < 1200; i++ {
		ts := i * 3600
		chain[ts] = uint64(i + 1)
		timestamps = append(timestamps, ts)
	}
	fake := &subgraphtest.Fake{Respond: chainResponder(chain)}
	r := NewResolver(fake, fake, nil, nil, nil)

	got, err := r.Resolve(context.Background(), timestamps, 0)
	require.NoError(t, err)
	assert.Len(t, got, 1200)
	assert.Len(t, fake.Calls(), 3)
}

func TestResolveUsesCache(t *testing.T) {
	fake := &subgraphtest.Fake{Respond: chainResponder(map[int64]uint64{100: 1, 200: 2})}
	r := NewResolver(fake, fake, NewMemoryCache(), nil, nil)

	first, err := r.Resolve(context.Background(), []int64{100, 200, 300}, 0)
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.Len(t, fake.Calls(), 1)

	second, err := r.Resolve(context.Background(), []int64{100, 200}, 0)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, fake.Calls(), 1)

	// 300 had no block and is asked for again
	_, err = r.Resolve(context.Background(), []int64{100, 300}, 0)
	require.NoError(t, err)
	assert.Len(t, fake.Calls(), 2)
}

func TestResolvePropagatesTransportFailure(t *testing.T) {
	boom := errors.New("unreachable")
	fake := &subgraphtest.Fake{Respond: func(string, map[string]any) (any, error) { return nil, boom }}
	r := NewResolver(fake, fake, nil, nil, nil)

	_, err := r.Resolve(context.Background(), []int64{1}, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, boom))
}

func TestResolveOne(t *testing.T) {
	fake := &subgraphtest.Fake{Respond: chainResponder(map[int64]uint64{500: 77})}
	r := NewResolver(fake, fake, nil, nil, nil)

	number, ok, err := r.ResolveOne(context.Background(), 500)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, uint64(77), number)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, int64(500), calls[0].Vars["timestampFrom"])
	assert.Equal(t, int64(1100), calls[0].Vars["timestampTo"])

	_, ok, err = r.ResolveOne(context.Background(), 501)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFilterFresh(t *testing.T) {
	blocks := []model.Block{{Number: 10}, {Number: 20}, {Number: 30}}

	assert.Equal(t, []model.Block{{Number: 10}, {Number: 20}}, FilterFresh(blocks, 20))
	assert.Equal(t, blocks, FilterFresh(blocks, 0))
	assert.Empty(t, FilterFresh(blocks, 5))
}

func TestLatestIndexedBlock(t *testing.T) {
	index := &subgraphtest.Fake{Respond: func(query string, _ map[string]any) (any, error) {
		require.Equal(t, subgraph.LatestBlockQuery, query)
		return map[string]any{"_meta": map[string]any{"block": map[string]any{"number": 9001}}}, nil
	}}
	r := NewResolver(nil, index, nil, nil, nil)

	latest, err := r.LatestIndexedBlock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(9001), latest)
}

type fixedHead struct {
	number uint64
	err    error
	calls  int
}

func (h *fixedHead) LatestBlockNumber(context.Context) (uint64, error) {
	h.calls++
	return h.number, h.err
}

func TestLatestIndexedBlockFallsBackToChainHead(t *testing.T) {
	down := errors.New("index down")
	index := &subgraphtest.Fake{Respond: func(string, map[string]any) (any, error) { return nil, down }}

	head := &fixedHead{number: 12000}
	r := NewResolver(nil, index, nil, nil, nil).WithChainHead(head)
	latest, err := r.LatestIndexedBlock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(12000), latest)

	r = NewResolver(nil, index, nil, nil, nil).WithChainHead(&fixedHead{err: errors.New("rpc down")})
	_, err = r.LatestIndexedBlock(context.Background())
	assert.ErrorIs(t, err, down)

	_, err = NewResolver(nil, index, nil, nil, nil).LatestIndexedBlock(context.Background())
	assert.ErrorIs(t, err, down)
}

func TestLatestIndexedBlockPrefersIndexHead(t *testing.T) {
	index := &subgraphtest.Fake{Respond: func(string, map[string]any) (any, error) {
		return map[string]any{"_meta": map[string]any{"block": map[string]any{"number": 9001}}}, nil
	}}
	head := &fixedHead{number: 12000}
	r := NewResolver(nil, index, nil, nil, nil).WithChainHead(head)

	latest, err := r.LatestIndexedBlock(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(9001), latest)
	assert.Zero(t, head.calls)
}
