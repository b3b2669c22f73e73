// Package subgraphtest provides an in-memory subgraph.Querier for tests.
package subgraphtest

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Call is one recorded query.
type Call struct {
	Query string
	Vars  map[string]any
}

// Fake answers queries with Respond and records every call.
// Respond returns the data object, which is round-tripped through JSON into out.
type Fake struct {
	Respond func(query string, vars map[string]any) (any, error)

	mu    sync.Mutex
	calls []Call
}

func (f *Fake) Query(ctx context.Context, query string, vars map[string]any, out any) error {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Query: query, Vars: vars})
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if f.Respond == nil {
		return fmt.Errorf("no responder")
	}
	data, err := f.Respond(query, vars)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// Calls returns a copy of the recorded calls.
func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Call, len(f.calls))
	copy(out, f.calls)
	return out
}
