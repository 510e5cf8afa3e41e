package store

import (
	"fmt"
	"strings"
)

const (
	defaultLimit = 50
	maxLimit     = 500

	orderByN         = "n"
	orderByP50       = "p50"
	orderByUpdatedAt = "updated_at"
)

// validOrderBy maps allowed OrderBy values to their SQL column expressions.
var validOrderBy = map[string]string{
	orderByN:         "n DESC",
	orderByP50:       "p50_cents ASC NULLS LAST",
	orderByUpdatedAt: "updated_at DESC",
}

const defaultOrderBy = "n DESC"

const baseStatsSelect = `SELECT ` + statColumns + `
FROM model_stats`

const countStatsSelect = "SELECT COUNT(*) FROM model_stats"

// ToSQL builds the WHERE clause, ORDER BY, LIMIT, and OFFSET for a stats
// query. It returns two SQL strings (one for the data query, one for the
// count query) and the positional parameters.
func (q *StatsQuery) ToSQL() (dataSQL, countSQL string, args []any) {
	var conditions []string
	paramIdx := 1

	addEq := func(column string, value any) {
		conditions = append(conditions, fmt.Sprintf("%s = $%d", column, paramIdx))
		args = append(args, value)
		paramIdx++
	}

	if q.ModelKey != nil {
		addEq("model_key", *q.ModelKey)
	}
	if q.VariantKey != nil {
		addEq("variant_key", *q.VariantKey)
	}
	if q.Category != nil {
		addEq("category", *q.Category)
	}
	if q.RarityTier != nil {
		addEq("rarity_tier", *q.RarityTier)
	}
	if q.ConditionBand != nil {
		addEq("condition_band", *q.ConditionBand)
	}
	if q.WindowDays != nil {
		addEq("window_days", *q.WindowDays)
	}
	if q.MinN != nil {
		conditions = append(conditions, fmt.Sprintf("n >= $%d", paramIdx))
		args = append(args, *q.MinN)
		paramIdx++
	}

	var whereClause string
	if len(conditions) > 0 {
		whereClause = " WHERE " + strings.Join(conditions, " AND ")
	}

	orderClause := defaultOrderBy
	if q.OrderBy != "" {
		if col, ok := validOrderBy[q.OrderBy]; ok {
			orderClause = col
		}
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	offset := max(q.Offset, 0)

	dataSQL = fmt.Sprintf(
		"%s%s ORDER BY %s LIMIT %d OFFSET %d",
		baseStatsSelect, whereClause, orderClause, limit, offset,
	)

	countSQL = countStatsSelect + whereClause

	return dataSQL, countSQL, args
}
