package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairScope/internal/model"
)

type fakeDB struct {
	batches []*pgx.Batch
	execs   []string
	failAt  int
}

func (f *fakeDB) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	f.batches = append(f.batches, b)
	return &fakeResults{failAt: f.failAt}
}

func (f *fakeDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	f.execs = append(f.execs, sql)
	return pgconn.NewCommandTag("CREATE TABLE"), nil
}

type fakeResults struct {
	n      int
	failAt int
}

func (r *fakeResults) Exec() (pgconn.CommandTag, error) {
	r.n++
	if r.failAt > 0 && r.n == r.failAt {
		return pgconn.CommandTag{}, errors.New("constraint violation")
	}
	return pgconn.NewCommandTag("INSERT 0 1"), nil
}

func (r *fakeResults) Query() (pgx.Rows, error) { return nil, errors.New("not supported") }
func (r *fakeResults) QueryRow() pgx.Row        { return nil }
func (r *fakeResults) Close() error             { return nil }

func TestUpsertPairStats(t *testing.T) {
	db := &fakeDB{}
	s := NewStoreWithDB(db)
	observed := time.Date(2021, 3, 10, 12, 0, 0, 0, time.UTC)

	stats := []model.PairStats{{
		PairSnapshot:       model.PairSnapshot{ID: "0xABC", ReserveUSD: 10},
		DerivedPairMetrics: model.DerivedPairMetrics{OneDayVolumeUSD: 5},
	}}
	require.NoError(t, s.UpsertPairStats(context.Background(), stats, observed))
	require.Len(t, db.batches, 1)

	queued := db.batches[0].QueuedQueries
	require.Len(t, queued, 1)
	assert.Equal(t, "0xabc", queued[0].Arguments[0])
	assert.Equal(t, observed, queued[0].Arguments[1])
	assert.Equal(t, 10.0, queued[0].Arguments[6])
	assert.Equal(t, 5.0, queued[0].Arguments[9])
}

func TestUpsertHourlyRatesQueuesBothSides(t *testing.T) {
	db := &fakeDB{}
	s := NewStoreWithDB(db)
	rates := model.HourlyRates{
		Rate0: []model.HourlyRatePoint{{Timestamp: 3600, Open: 1, Close: 2}, {Timestamp: 7200, Open: 2, Close: 3}},
		Rate1: []model.HourlyRatePoint{{Timestamp: 3600, Open: 1, Close: 0.5}},
	}

	require.NoError(t, s.UpsertHourlyRates(context.Background(), "0xPAIR", rates))
	queued := db.batches[0].QueuedQueries
	require.Len(t, queued, 3)
	assert.Equal(t, []any{"0xpair", int16(0), int64(3600), 1.0, 2.0}, queued[0].Arguments)
	assert.Equal(t, []any{"0xpair", int16(1), int64(3600), 1.0, 0.5}, queued[2].Arguments)
}

func TestUpsertSkipsEmptyInput(t *testing.T) {
	db := &fakeDB{}
	s := NewStoreWithDB(db)

	require.NoError(t, s.UpsertPairStats(context.Background(), nil, time.Now()))
	require.NoError(t, s.UpsertHourlyRates(context.Background(), "0xpair", model.HourlyRates{}))
	assert.Empty(t, db.batches)
}

func TestUpsertPropagatesExecError(t *testing.T) {
	db := &fakeDB{failAt: 2}
	s := NewStoreWithDB(db)
	rates := model.HourlyRates{Rate0: []model.HourlyRatePoint{{Timestamp: 1}, {Timestamp: 2}}}

	err := s.UpsertHourlyRates(context.Background(), "0xpair", rates)
	assert.ErrorContains(t, err, "upsert hourly rates")
}

func TestEnsureSchema(t *testing.T) {
	db := &fakeDB{}
	require.NoError(t, NewStoreWithDB(db).EnsureSchema(context.Background()))
	require.Len(t, db.execs, 1)
	assert.Contains(t, db.execs[0], "CREATE TABLE IF NOT EXISTS pair_hourly_rates")
}

func TestNewStoreRequiresDSN(t *testing.T) {
	_, err := NewStore(context.Background(), "")
	assert.Error(t, err)
}
