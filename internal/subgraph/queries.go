package subgraph

import (
	"fmt"
	"strconv"
	"strings"

	"pairScope/internal/model"
)

// BlockWindowSeconds is the lookahead used when matching a timestamp to a block.
const BlockWindowSeconds = 600

const pairFieldsFragment = `
fragment PairFields on Pair {
  id
  txCount
  token0 { id symbol name derivedETH }
  token1 { id symbol name derivedETH }
  reserve0
  reserve1
  reserveUSD
  trackedReserveETH
  reserveETH
  volumeUSD
  untrackedVolumeUSD
  token0Price
  token1Price
  createdAtTimestamp
  createdAtBlockNumber
}`

// BlockQuery finds the first block in [$timestampFrom, $timestampTo).
const BlockQuery = `query block($timestampFrom: Int!, $timestampTo: Int!) {
  blocks(first: 1, orderBy: timestamp, orderDirection: asc, where: { timestamp_gte: $timestampFrom, timestamp_lt: $timestampTo }) {
    number
    timestamp
  }
}`

// PairsBulkQuery loads current snapshots for $allPairs.
const PairsBulkQuery = `query pairs($allPairs: [Bytes]!) {
  pairs(first: 500, where: { id_in: $allPairs }, orderBy: trackedReserveETH, orderDirection: desc) {
    ...PairFields
  }
}` + pairFieldsFragment

// LatestBlockQuery reads the indexing head of a subgraph.
const LatestBlockQuery = `{ _meta { block { number } } }`

// TimestampKey is the alias used for a timestamp bucket.
func TimestampKey(ts int64) string {
	return "t" + strconv.FormatInt(ts, 10)
}

// ParseTimestampKey reverses TimestampKey.
func ParseTimestampKey(key string) (int64, bool) {
	if !strings.HasPrefix(key, "t") {
		return 0, false
	}
	ts, err := strconv.ParseInt(key[1:], 10, 64)
	if err != nil {
		return 0, false
	}
	return ts, true
}

// BlocksQuery renders one aliased block lookup per timestamp.
func BlocksQuery(timestamps []int64) string {
	var b strings.Builder
	b.WriteString("query blocks {")
	for _, ts := range timestamps {
		fmt.Fprintf(&b, "\n  %s: blocks(first: 1, orderBy: timestamp, orderDirection: asc, where: { timestamp_gte: %d, timestamp_lt: %d }) { number }",
			TimestampKey(ts), ts, ts+BlockWindowSeconds)
	}
	b.WriteString("\n}")
	return b.String()
}

// HourlyPairRatesQuery returns a renderer of aliased pair price lookups at each block.
func HourlyPairRatesQuery(pairAddress string) func([]model.Block) string {
	pair := strings.ToLower(pairAddress)
	return func(blocks []model.Block) string {
		var b strings.Builder
		b.WriteString("query pairRates {")
		for _, block := range blocks {
			fmt.Fprintf(&b, "\n  %s: pair(id: %q, block: { number: %d }) { token0Price token1Price }",
				TimestampKey(block.Timestamp), pair, block.Number)
		}
		b.WriteString("\n}")
		return b.String()
	}
}

// PairsHistoricalBulkQuery loads the volume and reserve subset for pairs at a block.
func PairsHistoricalBulkQuery(block uint64, pairs []string) string {
	return fmt.Sprintf(`query pairsHistorical {
  pairs(first: 200, where: { id_in: %s }, block: { number: %d }, orderBy: trackedReserveETH, orderDirection: desc) {
    id
    reserveUSD
    trackedReserveETH
    volumeUSD
    untrackedVolumeUSD
  }
}`, quoteList(pairs), block)
}

// PairDataQuery loads the full fragment of one pair at a block.
func PairDataQuery(pairAddress string, block uint64) string {
	return fmt.Sprintf(`query pair {
  pairs(block: { number: %d }, where: { id: %q }) {
    ...PairFields
  }
}`, block, strings.ToLower(pairAddress)) + pairFieldsFragment
}

// EthPriceQuery loads the bundle price, at the head when block is zero.
func EthPriceQuery(block uint64) string {
	if block == 0 {
		return `query bundles { bundles(where: { id: 1 }) { id ethPrice } }`
	}
	return fmt.Sprintf(`query bundles { bundles(where: { id: 1 }, block: { number: %d }) { id ethPrice } }`, block)
}

func quoteList(items []string) string {
	quoted := make([]string, 0, len(items))
	for _, item := range items {
		quoted = append(quoted, strconv.Quote(strings.ToLower(item)))
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
