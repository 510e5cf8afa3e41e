package store

// Observation queries.
const (
	queryInsertObservation = `
		INSERT INTO observations (
			listing_id, raw_title, model_key, variant_key, category,
			rarity_tier, condition_band, price_cents, observed_at
		) VALUES (
			@listing_id, @raw_title, @model_key, @variant_key, @category,
			@rarity_tier, @condition_band, @price_cents, @observed_at
		)
		ON CONFLICT (listing_id, observed_at) DO NOTHING`

	queryListObservationsSince = `
		SELECT id, listing_id, raw_title, model_key, variant_key, category,
			rarity_tier, condition_band, price_cents, observed_at, created_at
		FROM observations
		WHERE observed_at >= $1
		ORDER BY observed_at ASC`

	queryCountObservations = `SELECT COUNT(*) FROM observations`
)

// Stat row queries. Baseline lookups collapse variant and condition; the
// highest-sample concrete rarity tier wins when a model spans several,
// and the rarity-collapsed row is only a fallback, since its percentiles
// blend tour and retail prices.
const (
	statColumns = `model_key, variant_key, category, rarity_tier, condition_band,
		window_days, n, p10_cents, p50_cents, p90_cents, dispersion_ratio, updated_at`

	queryDeleteWindowStats = `
		DELETE FROM model_stats WHERE window_days = $1`

	queryInsertStat = `
		INSERT INTO model_stats (
			model_key, variant_key, category, rarity_tier, condition_band,
			window_days, n, p10_cents, p50_cents, p90_cents, dispersion_ratio
		) VALUES (
			@model_key, @variant_key, @category, @rarity_tier, @condition_band,
			@window_days, @n, @p10_cents, @p50_cents, @p90_cents, @dispersion_ratio
		)`

	queryGetStat = `
		SELECT ` + statColumns + `
		FROM model_stats
		WHERE model_key = $1 AND variant_key = $2 AND category = $3
			AND rarity_tier = $4 AND condition_band = $5 AND window_days = $6`

	queryGetBaselineStat = `
		SELECT ` + statColumns + `
		FROM model_stats
		WHERE model_key = $1 AND window_days = $2
			AND variant_key = '*' AND condition_band = 'any'
		ORDER BY (rarity_tier = 'any') ASC, n DESC
		LIMIT 1`

	queryListVariantStats = `
		SELECT DISTINCT ON (variant_key) ` + statColumns + `
		FROM model_stats
		WHERE model_key = $1 AND window_days = $2
			AND variant_key <> '*' AND variant_key <> ''
			AND condition_band <> 'any'
		ORDER BY variant_key, n DESC`

	queryFuzzyFindModelKey = `
		SELECT model_key
		FROM model_stats
		WHERE window_days = $2
			AND variant_key = '*' AND condition_band = 'any'
			AND model_key LIKE '%' || $1 || '%'
		GROUP BY model_key
		ORDER BY MAX(n) DESC, model_key ASC
		LIMIT 1`
)

// System state queries.
const (
	queryCountDistinctModelKeys = `
		SELECT COUNT(DISTINCT model_key) FROM observations`

	queryCountStatRows = `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE p50_cents IS NULL)
		FROM model_stats`

	queryCountStatRowsPerWindow = `
		SELECT window_days, COUNT(*)
		FROM model_stats
		GROUP BY window_days`
)

// Scheduler queries.
const (
	queryInsertJobRun = `
		INSERT INTO job_runs (job_name)
		VALUES ($1)
		RETURNING id`

	queryCompleteJobRun = `
		UPDATE job_runs SET
			completed_at  = now(),
			status        = $2,
			error_text    = $3,
			rows_affected = $4
		WHERE id = $1`

	queryListJobRuns = `
		SELECT id, job_name, started_at, completed_at, status,
			COALESCE(error_text, ''), rows_affected
		FROM job_runs
		WHERE job_name = $1
		ORDER BY started_at DESC
		LIMIT $2`

	queryListLatestJobRuns = `
		SELECT DISTINCT ON (job_name)
			id, job_name, started_at, completed_at, status,
			COALESCE(error_text, ''), rows_affected
		FROM job_runs
		ORDER BY job_name, started_at DESC`

	queryMarkStaleJobRunsCrashed = `
		UPDATE job_runs SET
			status       = 'crashed',
			completed_at = now()
		WHERE status = 'running' AND started_at < $1`

	queryAcquireSchedulerLock = `
		INSERT INTO scheduler_locks (job_name, lock_holder, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (job_name) DO UPDATE
			SET locked_at   = now(),
				lock_holder = EXCLUDED.lock_holder,
				expires_at  = EXCLUDED.expires_at
			WHERE scheduler_locks.expires_at < now()
		RETURNING job_name`

	queryReleaseSchedulerLock = `
		DELETE FROM scheduler_locks WHERE job_name = $1 AND lock_holder = $2`
)
