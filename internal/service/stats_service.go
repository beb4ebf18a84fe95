package service

import (
	"context"
	"time"

	"github.com/spec-kit/pqrs-service/internal/domain"
	"github.com/spec-kit/pqrs-service/internal/repository"
)

// DistributionSlice is one bucket with its share of the whole.
type DistributionSlice struct {
	Key     string
	Total   int
	Percent float64
}

// MonthPoint is the intake volume for one month.
type MonthPoint struct {
	Month time.Time
	Total int
}

// CategoryResolution is the average closure time for one category.
type CategoryResolution struct {
	Category domain.CaseCategory
	AvgDays  float64
	Closed   int
}

// Overview is the dashboard headline block.
type Overview struct {
	TotalCases        int
	FiledThisMonth    int
	OverdueCases      int
	AvgResolutionDays float64
	ByStatus          []DistributionSlice
	ByCategory        []DistributionSlice
	ByTrafficLight    []DistributionSlice
}

// StatsService computes dashboard aggregates. Overdue counts are recomputed
// against the deadline so stale rows never undercount.
type StatsService struct {
	stats repository.StatsRepository
	now   func() time.Time
}

// NewStatsService constructs the service.
func NewStatsService(stats repository.StatsRepository) *StatsService {
	return &StatsService{stats: stats, now: time.Now}
}

// GetOverview assembles the headline dashboard block.
func (s *StatsService) GetOverview(ctx context.Context) (*Overview, error) {
	total, err := s.stats.TotalCases(ctx)
	if err != nil {
		return nil, err
	}

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	thisMonth, err := s.stats.CountFiledSince(ctx, monthStart)
	if err != nil {
		return nil, err
	}

	overdue, err := s.stats.OverdueCount(ctx)
	if err != nil {
		return nil, err
	}

	avgDays, err := s.stats.AvgResolutionDays(ctx)
	if err != nil {
		return nil, err
	}

	byStatus, err := s.stats.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	byCategory, err := s.stats.CountByCategory(ctx)
	if err != nil {
		return nil, err
	}
	byLight, err := s.stats.CountByTrafficLight(ctx)
	if err != nil {
		return nil, err
	}

	return &Overview{
		TotalCases:        total,
		FiledThisMonth:    thisMonth,
		OverdueCases:      overdue,
		AvgResolutionDays: avgDays,
		ByStatus:          toDistribution(byStatus, total),
		ByCategory:        toDistribution(byCategory, total),
		ByTrafficLight:    toDistribution(byLight, total),
	}, nil
}

// MonthlyEvolution returns intake per month for the last n months, zero-filled
// so charts always get a contiguous series.
func (s *StatsService) MonthlyEvolution(ctx context.Context, months int) ([]MonthPoint, error) {
	if months <= 0 {
		months = 6
	}
	counts, err := s.stats.MonthlyCounts(ctx, months)
	if err != nil {
		return nil, err
	}

	byMonth := make(map[time.Time]int, len(counts))
	for _, row := range counts {
		key := time.Date(row.Month.Year(), row.Month.Month(), 1, 0, 0, 0, 0, time.UTC)
		byMonth[key] = row.Total
	}

	now := s.now()
	series := make([]MonthPoint, 0, months)
	for i := months - 1; i >= 0; i-- {
		month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0)
		series = append(series, MonthPoint{Month: month, Total: byMonth[month]})
	}
	return series, nil
}

// TopAreas returns the busiest responsible areas.
func (s *StatsService) TopAreas(ctx context.Context, limit int) ([]DistributionSlice, error) {
	rows, err := s.stats.TopAreas(ctx, limit)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, row := range rows {
		total += row.Total
	}
	return toDistribution(rows, total), nil
}

// ResolutionByCategory returns average closure times per category. Categories
// with no closed cases still appear, with zero values.
func (s *StatsService) ResolutionByCategory(ctx context.Context) ([]CategoryResolution, error) {
	rows, err := s.stats.AvgResolutionByCategory(ctx)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string]repository.CategoryTiming, len(rows))
	for _, row := range rows {
		byCategory[row.Category] = row
	}

	categories := []domain.CaseCategory{
		domain.CategoryPetition,
		domain.CategoryComplaint,
		domain.CategoryClaim,
		domain.CategorySuggestion,
	}
	result := make([]CategoryResolution, 0, len(categories))
	for _, category := range categories {
		timing := byCategory[string(category)]
		result = append(result, CategoryResolution{
			Category: category,
			AvgDays:  timing.AvgDays,
			Closed:   timing.Closed,
		})
	}
	return result, nil
}

func toDistribution(rows []repository.CountRow, total int) []DistributionSlice {
	result := make([]DistributionSlice, 0, len(rows))
	for _, row := range rows {
		slice := DistributionSlice{Key: row.Key, Total: row.Total}
		if total > 0 {
			slice.Percent = float64(row.Total) * 100 / float64(total)
		}
		result = append(result, slice)
	}
	return result
}
