package batch

import (
	"context"
	"encoding/json"
	"fmt"

	"pairScope/internal/subgraph"
)

// DefaultChunkSize bounds the number of aliased lookups per request.
const DefaultChunkSize = 100

// Template renders the query document for one chunk of params. Fixed arguments such as a
// pair address are captured by the closure.
type Template[P any] func(chunk []P) string

// Execute issues one query per chunk of params, strictly in order, and merges the aliased
// results into a single mapping. A key returned by an earlier chunk is never overwritten.
//
// Paging stops after a chunk whose result holds fewer than chunkSize keys, or once every
// param has been sent. This assumes the backing store only returns a short page at the end
// of the data; a store that drops aliases mid-list would end the scan early.
//
// Any failed chunk aborts the whole call.
func Execute[P any](ctx context.Context, q subgraph.Querier, template Template[P], params []P, chunkSize int) (map[string]json.RawMessage, error) {
	if q == nil {
		return nil, fmt.Errorf("querier is nil")
	}
	if template == nil {
		return nil, fmt.Errorf("query template is nil")
	}
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	merged := make(map[string]json.RawMessage, len(params))
	for i, chunk := range Chunks(params, chunkSize) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := make(map[string]json.RawMessage, len(chunk))
		if err := q.Query(ctx, template(chunk), nil, &page); err != nil {
			return nil, fmt.Errorf("query chunk %d (offset %d): %w", i, i*chunkSize, err)
		}
		for key, value := range page {
			if _, ok := merged[key]; ok {
				continue
			}
			merged[key] = value
		}

		if len(page) < chunkSize {
			break
		}
	}

	return merged, nil
}
