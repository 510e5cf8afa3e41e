package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domain "github.com/rgclark/putterbase/pkg/types"
)

const defaultPoolSize = 10

// PostgresStore implements Store using pgxpool (connection-pooled
// PostgreSQL).
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore with connection pooling.
func NewPostgresStore(ctx context.Context, connString string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	cfg.MaxConns = defaultPoolSize

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

// Close gracefully shuts down the connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping verifies the database connection is alive.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Migrate applies pending SQL schema migrations.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	return RunMigrations(ctx, s.pool)
}

// InsertObservations inserts a batch of observations and returns the
// number actually stored. Duplicate (listing_id, observed_at) pairs are
// silently skipped, making repeated ingestion of the same feed safe.
func (s *PostgresStore) InsertObservations(
	ctx context.Context,
	obs []domain.ListingObservation,
) (int, error) {
	if len(obs) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for i := range obs {
		o := &obs[i]
		batch.Queue(queryInsertObservation, pgx.NamedArgs{
			"listing_id":     o.ListingID,
			"raw_title":      o.RawTitle,
			"model_key":      o.ModelKey,
			"variant_key":    o.VariantKey,
			"category":       o.Category,
			"rarity_tier":    o.RarityTier,
			"condition_band": string(o.ConditionBand),
			"price_cents":    o.PriceCents,
			"observed_at":    o.ObservedAt,
		})
	}

	results := s.pool.SendBatch(ctx, batch)
	defer results.Close() //nolint:errcheck // close error surfaces via Exec

	inserted := 0
	for range obs {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("inserting observation: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}

// ListObservationsSince returns all observations observed at or after the
// given time, oldest first.
func (s *PostgresStore) ListObservationsSince(
	ctx context.Context,
	since time.Time,
) ([]domain.ListingObservation, error) {
	rows, err := s.pool.Query(ctx, queryListObservationsSince, since)
	if err != nil {
		return nil, fmt.Errorf("querying observations: %w", err)
	}
	defer rows.Close()

	var obs []domain.ListingObservation
	for rows.Next() {
		var o domain.ListingObservation
		if err := rows.Scan(
			&o.ID, &o.ListingID, &o.RawTitle, &o.ModelKey, &o.VariantKey,
			&o.Category, &o.RarityTier, &o.ConditionBand, &o.PriceCents,
			&o.ObservedAt, &o.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning observation: %w", err)
		}
		obs = append(obs, o)
	}
	return obs, rows.Err()
}

// CountObservations returns the total number of stored observations.
func (s *PostgresStore) CountObservations(ctx context.Context) (int, error) {
	var n int
	if err := s.pool.QueryRow(ctx, queryCountObservations).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting observations: %w", err)
	}
	return n, nil
}

// ReplaceWindowStats atomically swaps out all stat rows for one window.
// Readers never see a half-written window: the delete and the inserts
// commit together.
func (s *PostgresStore) ReplaceWindowStats(
	ctx context.Context,
	windowDays int,
	stats []domain.AggregatedStat,
) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(ctx, queryDeleteWindowStats, windowDays); err != nil {
		return fmt.Errorf("deleting window %d stats: %w", windowDays, err)
	}

	batch := &pgx.Batch{}
	for i := range stats {
		st := &stats[i]
		batch.Queue(queryInsertStat, pgx.NamedArgs{
			"model_key":        st.ModelKey,
			"variant_key":      st.VariantKey,
			"category":         st.Category,
			"rarity_tier":      st.RarityTier,
			"condition_band":   string(st.ConditionBand),
			"window_days":      st.WindowDays,
			"n":                st.N,
			"p10_cents":        st.P10Cents,
			"p50_cents":        st.P50Cents,
			"p90_cents":        st.P90Cents,
			"dispersion_ratio": st.DispersionRatio,
		})
	}

	results := tx.SendBatch(ctx, batch)
	for range stats {
		if _, err := results.Exec(); err != nil {
			results.Close() //nolint:errcheck,gosec // already failing
			return fmt.Errorf("inserting stat row: %w", err)
		}
	}
	if err := results.Close(); err != nil {
		return fmt.Errorf("closing stat batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing window %d stats: %w", windowDays, err)
	}
	return nil
}

// GetStat retrieves one stat row by its full composite key. Returns
// (nil, nil) when no row exists.
func (s *PostgresStore) GetStat(
	ctx context.Context,
	key domain.StatKey,
) (*domain.AggregatedStat, error) {
	st := &domain.AggregatedStat{}
	err := scanStat(s.pool.QueryRow(ctx, queryGetStat,
		key.ModelKey, key.VariantKey, key.Category,
		key.RarityTier, string(key.ConditionBand), key.WindowDays,
	), st)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting stat: %w", err)
	}
	return st, nil
}

// GetBaselineStat retrieves the best baseline row for a model: variant
// and condition collapsed, highest sample count across rarity tiers.
// Returns (nil, nil) when the model has no stats for the window.
func (s *PostgresStore) GetBaselineStat(
	ctx context.Context,
	modelKey string,
	windowDays int,
) (*domain.AggregatedStat, error) {
	st := &domain.AggregatedStat{}
	err := scanStat(s.pool.QueryRow(ctx, queryGetBaselineStat, modelKey, windowDays), st)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting baseline stat: %w", err)
	}
	return st, nil
}

// ListStats queries stat rows with optional filters, returning results
// and total count.
func (s *PostgresStore) ListStats(
	ctx context.Context,
	opts *StatsQuery,
) ([]domain.AggregatedStat, int, error) {
	dataSQL, countSQL, args := opts.ToSQL()

	var total int
	if err := s.pool.QueryRow(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting stats: %w", err)
	}

	rows, err := s.pool.Query(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("querying stats: %w", err)
	}
	defer rows.Close()

	stats, err := scanStats(rows)
	if err != nil {
		return nil, 0, err
	}
	return stats, total, nil
}

// ListVariantStats returns the per-variant stat rows for a model, one row
// per variant key, keeping the condition band with the most samples.
func (s *PostgresStore) ListVariantStats(
	ctx context.Context,
	modelKey string,
	windowDays int,
) ([]domain.AggregatedStat, error) {
	rows, err := s.pool.Query(ctx, queryListVariantStats, modelKey, windowDays)
	if err != nil {
		return nil, fmt.Errorf("querying variant stats: %w", err)
	}
	defer rows.Close()

	return scanStats(rows)
}

// FuzzyFindModelKey finds the stored model key containing the needle with
// the largest sample size. Returns found=false when nothing matches.
func (s *PostgresStore) FuzzyFindModelKey(
	ctx context.Context,
	needle string,
	windowDays int,
) (string, bool, error) {
	var key string
	err := s.pool.QueryRow(ctx, queryFuzzyFindModelKey, needle, windowDays).Scan(&key)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("fuzzy finding model key: %w", err)
	}
	return key, true, nil
}

// GetSystemState returns a snapshot of aggregate system metrics.
func (s *PostgresStore) GetSystemState(ctx context.Context) (*domain.SystemState, error) {
	state := &domain.SystemState{StatRowsPerWindow: map[int]int{}}

	if err := s.pool.QueryRow(ctx, queryCountObservations).Scan(&state.ObservationsTotal); err != nil {
		return nil, fmt.Errorf("counting observations: %w", err)
	}
	if err := s.pool.QueryRow(ctx, queryCountDistinctModelKeys).Scan(&state.DistinctModelKeys); err != nil {
		return nil, fmt.Errorf("counting model keys: %w", err)
	}
	if err := s.pool.QueryRow(ctx, queryCountStatRows).Scan(
		&state.StatRowsTotal, &state.StatRowsInsufficient,
	); err != nil {
		return nil, fmt.Errorf("counting stat rows: %w", err)
	}

	rows, err := s.pool.Query(ctx, queryCountStatRowsPerWindow)
	if err != nil {
		return nil, fmt.Errorf("counting stat rows per window: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var window, count int
		if err := rows.Scan(&window, &count); err != nil {
			return nil, fmt.Errorf("scanning window count: %w", err)
		}
		state.StatRowsPerWindow[window] = count
	}
	return state, rows.Err()
}

// InsertJobRun records the start of a scheduled job run.
func (s *PostgresStore) InsertJobRun(ctx context.Context, jobName string) (string, error) {
	var id string
	if err := s.pool.QueryRow(ctx, queryInsertJobRun, jobName).Scan(&id); err != nil {
		return "", fmt.Errorf("inserting job run: %w", err)
	}
	return id, nil
}

// CompleteJobRun marks a job run finished with the given status.
func (s *PostgresStore) CompleteJobRun(
	ctx context.Context,
	id string,
	status string,
	errText string,
	rowsAffected int,
) error {
	_, err := s.pool.Exec(ctx, queryCompleteJobRun, id, status, errText, rowsAffected)
	if err != nil {
		return fmt.Errorf("completing job run: %w", err)
	}
	return nil
}

// ListJobRuns returns recent runs of one job, newest first.
func (s *PostgresStore) ListJobRuns(
	ctx context.Context,
	jobName string,
	limit int,
) ([]domain.JobRun, error) {
	rows, err := s.pool.Query(ctx, queryListJobRuns, jobName, limit)
	if err != nil {
		return nil, fmt.Errorf("querying job runs: %w", err)
	}
	defer rows.Close()

	return scanJobRuns(rows)
}

// ListLatestJobRuns returns the most recent run of every job.
func (s *PostgresStore) ListLatestJobRuns(ctx context.Context) ([]domain.JobRun, error) {
	rows, err := s.pool.Query(ctx, queryListLatestJobRuns)
	if err != nil {
		return nil, fmt.Errorf("querying latest job runs: %w", err)
	}
	defer rows.Close()

	return scanJobRuns(rows)
}

// RecoverStaleJobRuns marks runs stuck in 'running' older than the cutoff
// as crashed. Handles process crashes that never completed their run row.
func (s *PostgresStore) RecoverStaleJobRuns(
	ctx context.Context,
	olderThan time.Duration,
) (int, error) {
	cutoff := time.Now().Add(-olderThan)
	tag, err := s.pool.Exec(ctx, queryMarkStaleJobRunsCrashed, cutoff)
	if err != nil {
		return 0, fmt.Errorf("recovering stale job runs: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// AcquireSchedulerLock attempts to acquire a distributed lock for the
// given job. Returns true if the lock was acquired, false if another
// holder already owns it.
func (s *PostgresStore) AcquireSchedulerLock(
	ctx context.Context,
	jobName string,
	holder string,
	ttl time.Duration,
) (bool, error) {
	expiresAt := time.Now().Add(ttl)

	var gotName string
	err := s.pool.QueryRow(ctx, queryAcquireSchedulerLock, jobName, holder, expiresAt).Scan(&gotName)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil // lock held by another; conflict not replaced
	}
	if err != nil {
		return false, fmt.Errorf("acquiring scheduler lock: %w", err)
	}

	return true, nil
}

// ReleaseSchedulerLock deletes the lock row for the given job and holder.
func (s *PostgresStore) ReleaseSchedulerLock(
	ctx context.Context,
	jobName string,
	holder string,
) error {
	if _, err := s.pool.Exec(ctx, queryReleaseSchedulerLock, jobName, holder); err != nil {
		return fmt.Errorf("releasing scheduler lock: %w", err)
	}
	return nil
}

// scannable abstracts pgx.Row and pgx.Rows for shared scan helpers.
type scannable interface {
	Scan(dest ...any) error
}

func scanStat(row scannable, st *domain.AggregatedStat) error {
	return row.Scan(
		&st.ModelKey, &st.VariantKey, &st.Category, &st.RarityTier,
		&st.ConditionBand, &st.WindowDays, &st.N,
		&st.P10Cents, &st.P50Cents, &st.P90Cents,
		&st.DispersionRatio, &st.UpdatedAt,
	)
}

func scanStats(rows pgx.Rows) ([]domain.AggregatedStat, error) {
	var stats []domain.AggregatedStat
	for rows.Next() {
		var st domain.AggregatedStat
		if err := scanStat(rows, &st); err != nil {
			return nil, fmt.Errorf("scanning stat: %w", err)
		}
		stats = append(stats, st)
	}
	return stats, rows.Err()
}

func scanJobRuns(rows pgx.Rows) ([]domain.JobRun, error) {
	var runs []domain.JobRun
	for rows.Next() {
		var r domain.JobRun
		if err := rows.Scan(
			&r.ID, &r.JobName, &r.StartedAt, &r.CompletedAt,
			&r.Status, &r.ErrorText, &r.RowsAffected,
		); err != nil {
			return nil, fmt.Errorf("scanning job run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
