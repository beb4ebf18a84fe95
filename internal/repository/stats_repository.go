package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CountRow is a generic bucketed count.
type CountRow struct {
	Key   string
	Total int
}

// MonthCount is the case intake for one calendar month.
type MonthCount struct {
	Month time.Time
	Total int
}

// CategoryTiming is the closure timing for one category.
type CategoryTiming struct {
	Category string
	AvgDays  float64
	Closed   int
}

// StatsRepository aggregates persisted case state for the dashboard. It only
// reads; the lifecycle engine is the sole writer.
type StatsRepository interface {
	TotalCases(ctx context.Context) (int, error)
	CountFiledSince(ctx context.Context, since time.Time) (int, error)
	CountByStatus(ctx context.Context) ([]CountRow, error)
	CountByCategory(ctx context.Context) ([]CountRow, error)
	CountByTrafficLight(ctx context.Context) ([]CountRow, error)
	OverdueCount(ctx context.Context) (int, error)
	AvgResolutionDays(ctx context.Context) (float64, error)
	MonthlyCounts(ctx context.Context, months int) ([]MonthCount, error)
	TopAreas(ctx context.Context, limit int) ([]CountRow, error)
	AvgResolutionByCategory(ctx context.Context) ([]CategoryTiming, error)
}

type statsRepository struct {
	pool *pgxpool.Pool
}

// NewStatsRepository constructs repository.
func NewStatsRepository(pool *pgxpool.Pool) StatsRepository {
	return &statsRepository{pool: pool}
}

func (r *statsRepository) TotalCases(ctx context.Context) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM cases`).Scan(&total)
	return total, err
}

func (r *statsRepository) CountFiledSince(ctx context.Context, since time.Time) (int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM cases WHERE filed_at >= $1`, since).Scan(&total)
	return total, err
}

func (r *statsRepository) CountByStatus(ctx context.Context) ([]CountRow, error) {
	return r.bucketed(ctx, `SELECT status, COUNT(*) FROM cases GROUP BY status ORDER BY COUNT(*) DESC`)
}

func (r *statsRepository) CountByCategory(ctx context.Context) ([]CountRow, error) {
	return r.bucketed(ctx, `SELECT category, COUNT(*) FROM cases GROUP BY category ORDER BY COUNT(*) DESC`)
}

func (r *statsRepository) CountByTrafficLight(ctx context.Context) ([]CountRow, error) {
	return r.bucketed(ctx, `SELECT traffic_light, COUNT(*) FROM cases GROUP BY traffic_light ORDER BY COUNT(*) DESC`)
}

func (r *statsRepository) bucketed(ctx context.Context, query string) ([]CountRow, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CountRow
	for rows.Next() {
		var row CountRow
		if err := rows.Scan(&row.Key, &row.Total); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// OverdueCount recomputes against the deadline instead of trusting the stored
// status; overdue is derived lazily, so rows can lag behind the clock.
func (r *statsRepository) OverdueCount(ctx context.Context) (int, error) {
	const query = `
        SELECT COUNT(*) FROM cases
        WHERE status = 'overdue'
           OR (status NOT IN ('resolved','closed') AND response_due < NOW())`
	var total int
	err := r.pool.QueryRow(ctx, query).Scan(&total)
	return total, err
}

func (r *statsRepository) AvgResolutionDays(ctx context.Context) (float64, error) {
	const query = `
        SELECT COALESCE(AVG(EXTRACT(EPOCH FROM (closed_at - filed_at)) / 86400.0), 0)
        FROM cases WHERE status IN ('resolved','closed') AND closed_at IS NOT NULL`
	var avg float64
	err := r.pool.QueryRow(ctx, query).Scan(&avg)
	return avg, err
}

func (r *statsRepository) MonthlyCounts(ctx context.Context, months int) ([]MonthCount, error) {
	const query = `
        SELECT date_trunc('month', filed_at) AS month, COUNT(*)
        FROM cases
        WHERE filed_at >= date_trunc('month', NOW()) - ($1 || ' months')::interval
        GROUP BY month ORDER BY month ASC`
	rows, err := r.pool.Query(ctx, query, months-1)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []MonthCount
	for rows.Next() {
		var row MonthCount
		if err := rows.Scan(&row.Month, &row.Total); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *statsRepository) TopAreas(ctx context.Context, limit int) ([]CountRow, error) {
	if limit <= 0 {
		limit = 10
	}
	const query = `
        SELECT responsible_area, COUNT(*)
        FROM cases WHERE responsible_area <> ''
        GROUP BY responsible_area ORDER BY COUNT(*) DESC LIMIT $1`
	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CountRow
	for rows.Next() {
		var row CountRow
		if err := rows.Scan(&row.Key, &row.Total); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

func (r *statsRepository) AvgResolutionByCategory(ctx context.Context) ([]CategoryTiming, error) {
	const query = `
        SELECT category,
               COALESCE(AVG(EXTRACT(EPOCH FROM (closed_at - filed_at)) / 86400.0), 0),
               COUNT(*)
        FROM cases WHERE status IN ('resolved','closed') AND closed_at IS NOT NULL
        GROUP BY category ORDER BY category ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CategoryTiming
	for rows.Next() {
		var row CategoryTiming
		if err := rows.Scan(&row.Category, &row.AvgDays, &row.Closed); err != nil {
			return nil, err
		}
		result = append(result, row)
	}
	return result, rows.Err()
}
