package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"pairScope/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS pair_stats (
	pair_address TEXT NOT NULL,
	observed_at TIMESTAMPTZ NOT NULL,
	token0 TEXT NOT NULL,
	token0_symbol TEXT NOT NULL,
	token1 TEXT NOT NULL,
	token1_symbol TEXT NOT NULL,
	reserve_usd DOUBLE PRECISION NOT NULL,
	tracked_reserve_usd DOUBLE PRECISION NOT NULL,
	volume_usd DOUBLE PRECISION NOT NULL,
	one_day_volume_usd DOUBLE PRECISION NOT NULL,
	one_week_volume_usd DOUBLE PRECISION NOT NULL,
	volume_change_usd DOUBLE PRECISION NOT NULL,
	one_day_volume_untracked DOUBLE PRECISION NOT NULL,
	one_week_volume_untracked DOUBLE PRECISION NOT NULL,
	volume_change_untracked DOUBLE PRECISION NOT NULL,
	liquidity_change_usd DOUBLE PRECISION NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (pair_address, observed_at)
);

CREATE TABLE IF NOT EXISTS pair_hourly_rates (
	pair_address TEXT NOT NULL,
	side SMALLINT NOT NULL,
	hour_ts BIGINT NOT NULL,
	open DOUBLE PRECISION NOT NULL,
	close DOUBLE PRECISION NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (pair_address, side, hour_ts)
);
`

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store persists derived pair metrics and hourly rates.
type Store struct {
	db   DB
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &Store{db: pool, pool: pool}, nil
}

// NewStoreWithDB wraps an existing connection.
func NewStoreWithDB(db DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// UpsertPairStats records the derived metrics of pairs as observed at one instant.
func (s *Store) UpsertPairStats(ctx context.Context, stats []model.PairStats, observedAt time.Time) error {
	if len(stats) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, st := range stats {
		batch.Queue(`
			INSERT INTO pair_stats (
				pair_address, observed_at, token0, token0_symbol, token1, token1_symbol,
				reserve_usd, tracked_reserve_usd, volume_usd,
				one_day_volume_usd, one_week_volume_usd, volume_change_usd,
				one_day_volume_untracked, one_week_volume_untracked, volume_change_untracked,
				liquidity_change_usd, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,now(),now())
			ON CONFLICT (pair_address, observed_at)
			DO UPDATE SET
				reserve_usd = EXCLUDED.reserve_usd,
				tracked_reserve_usd = EXCLUDED.tracked_reserve_usd,
				volume_usd = EXCLUDED.volume_usd,
				one_day_volume_usd = EXCLUDED.one_day_volume_usd,
				one_week_volume_usd = EXCLUDED.one_week_volume_usd,
				volume_change_usd = EXCLUDED.volume_change_usd,
				one_day_volume_untracked = EXCLUDED.one_day_volume_untracked,
				one_week_volume_untracked = EXCLUDED.one_week_volume_untracked,
				volume_change_untracked = EXCLUDED.volume_change_untracked,
				liquidity_change_usd = EXCLUDED.liquidity_change_usd,
				updated_at = now()
		`,
			strings.ToLower(st.ID),
			observedAt.UTC(),
			st.Token0.ID,
			st.Token0.Symbol,
			st.Token1.ID,
			st.Token1.Symbol,
			st.ReserveUSD,
			st.TrackedReserveUSD,
			st.VolumeUSD,
			st.OneDayVolumeUSD,
			st.OneWeekVolumeUSD,
			st.VolumeChangeUSD,
			st.OneDayVolumeUntracked,
			st.OneWeekVolumeUntracked,
			st.VolumeChangeUntracked,
			st.LiquidityChangeUSD,
		)
	}
	return s.send(ctx, batch, "pair stats")
}

// UpsertHourlyRates stores both rate series of a pair. Side 0 is rate0, side 1 is rate1.
func (s *Store) UpsertHourlyRates(ctx context.Context, pairAddress string, rates model.HourlyRates) error {
	if len(rates.Rate0)+len(rates.Rate1) == 0 {
		return nil
	}
	pair := strings.ToLower(pairAddress)
	batch := &pgx.Batch{}
	for side, points := range [][]model.HourlyRatePoint{rates.Rate0, rates.Rate1} {
		for _, p := range points {
			batch.Queue(`
				INSERT INTO pair_hourly_rates (pair_address, side, hour_ts, open, close, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, now(), now())
				ON CONFLICT (pair_address, side, hour_ts)
				DO UPDATE SET open = EXCLUDED.open, close = EXCLUDED.close, updated_at = now()
			`, pair, int16(side), p.Timestamp, p.Open, p.Close)
		}
	}
	return s.send(ctx, batch, "hourly rates")
}

func (s *Store) send(ctx context.Context, batch *pgx.Batch, what string) error {
	br := s.db.SendBatch(ctx, batch)
	defer br.Close()

	for i := 0; i < batch.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("upsert %s: %w", what, err)
		}
	}
	return nil
}
