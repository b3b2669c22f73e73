package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveQueryCountsOutcomes(t *testing.T) {
	m := New()
	m.ObserveQuery("chain-index", nil, time.Millisecond)
	m.ObserveQuery("chain-index", errors.New("boom"), time.Millisecond)
	m.ObserveQuery("chain-index", nil, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.queries.WithLabelValues("chain-index", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.queries.WithLabelValues("chain-index", "error")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveQuery("x", nil, 0)
	m.CacheHit("x")
	m.CacheMiss("x")
	require.NotNil(t, m.Handler())
}

func TestHandlerExposesCacheLookups(t *testing.T) {
	m := New()
	m.CacheHit("pairs")
	m.CacheMiss("pairs")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `pairscope_cache_lookups_total{cache="pairs",result="hit"} 1`))
	assert.True(t, strings.Contains(body, `pairscope_cache_lookups_total{cache="pairs",result="miss"} 1`))
}
