package subgraph

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairScope/internal/model"
)

func TestTimestampKey(t *testing.T) {
	key := TimestampKey(1700000000)
	assert.Equal(t, "t1700000000", key)

	ts, ok := ParseTimestampKey(key)
	require.True(t, ok)
	assert.Equal(t, int64(1700000000), ts)

	_, ok = ParseTimestampKey("b12")
	assert.False(t, ok)
	_, ok = ParseTimestampKey("tabc")
	assert.False(t, ok)
}

func TestBlocksQueryAliasesEveryTimestamp(t *testing.T) {
	q := BlocksQuery([]int64{100, 3700})
	assert.Contains(t, q, "t100: blocks(first: 1")
	assert.Contains(t, q, "timestamp_gte: 100, timestamp_lt: 700")
	assert.Contains(t, q, "t3700: blocks(first: 1")
	assert.Equal(t, 2, strings.Count(q, "blocks("))
}

func TestHourlyPairRatesQueryLowercasesPair(t *testing.T) {
	render := HourlyPairRatesQuery("0xA478c2975Ab1Ea89e8196811F51A7B7Ade33eB11")
	q := render([]model.Block{{Number: 10, Timestamp: 3600}, {Number: 20, Timestamp: 7200}})
	assert.Contains(t, q, `t3600: pair(id: "0xa478c2975ab1ea89e8196811f51a7b7ade33eb11", block: { number: 10 })`)
	assert.Contains(t, q, `t7200: pair(`)
}

func TestPairsHistoricalBulkQuery(t *testing.T) {
	q := PairsHistoricalBulkQuery(99, []string{"0xAA", "0xbb"})
	assert.Contains(t, q, `id_in: ["0xaa", "0xbb"]`)
	assert.Contains(t, q, "block: { number: 99 }")
}

func TestEthPriceQueryAtHead(t *testing.T) {
	assert.NotContains(t, EthPriceQuery(0), "block:")
	assert.Contains(t, EthPriceQuery(5), "block: { number: 5 }")
}

func TestPairFieldsSnapshot(t *testing.T) {
	raw := `{
		"id": "0xpair",
		"txCount": "12",
		"token0": {"id": "0xt0", "symbol": "WETH", "name": "Wrapped Ether", "derivedETH": "1"},
		"token1": {"id": "0xt1", "symbol": "DAI", "name": "Dai", "derivedETH": "0.0003"},
		"reserve0": "10.5",
		"reserve1": "31500",
		"reserveUSD": "63000.25",
		"trackedReserveETH": "21",
		"volumeUSD": "1000.5",
		"untrackedVolumeUSD": "2000",
		"token0Price": "0.000333",
		"token1Price": "3000",
		"createdAtTimestamp": "1589760000",
		"createdAtBlockNumber": "10000835"
	}`
	var fields PairFields
	require.NoError(t, json.Unmarshal([]byte(raw), &fields))

	snap := fields.Snapshot()
	assert.Equal(t, "0xpair", snap.ID)
	assert.Equal(t, "WETH", snap.Token0.Symbol)
	assert.Equal(t, uint64(12), snap.TxCount)
	assert.InDelta(t, 63000.25, snap.ReserveUSD, 1e-9)
	assert.InDelta(t, 21.0, snap.TrackedReserveETH, 1e-9)
	assert.Equal(t, uint64(10000835), snap.CreatedAtBlockNumber)
}
