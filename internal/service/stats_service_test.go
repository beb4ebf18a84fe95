package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/pqrs-service/internal/domain"
	"github.com/spec-kit/pqrs-service/internal/repository"
)

type fakeStatsRepo struct {
	total      int
	thisMonth  int
	overdue    int
	avgDays    float64
	byStatus   []repository.CountRow
	byCategory []repository.CountRow
	byLight    []repository.CountRow
	monthly    []repository.MonthCount
	areas      []repository.CountRow
	timings    []repository.CategoryTiming
}

func (r *fakeStatsRepo) TotalCases(context.Context) (int, error)   { return r.total, nil }
func (r *fakeStatsRepo) OverdueCount(context.Context) (int, error) { return r.overdue, nil }
func (r *fakeStatsRepo) AvgResolutionDays(context.Context) (float64, error) {
	return r.avgDays, nil
}
func (r *fakeStatsRepo) CountFiledSince(context.Context, time.Time) (int, error) {
	return r.thisMonth, nil
}
func (r *fakeStatsRepo) CountByStatus(context.Context) ([]repository.CountRow, error) {
	return r.byStatus, nil
}
func (r *fakeStatsRepo) CountByCategory(context.Context) ([]repository.CountRow, error) {
	return r.byCategory, nil
}
func (r *fakeStatsRepo) CountByTrafficLight(context.Context) ([]repository.CountRow, error) {
	return r.byLight, nil
}
func (r *fakeStatsRepo) MonthlyCounts(context.Context, int) ([]repository.MonthCount, error) {
	return r.monthly, nil
}
func (r *fakeStatsRepo) TopAreas(context.Context, int) ([]repository.CountRow, error) {
	return r.areas, nil
}
func (r *fakeStatsRepo) AvgResolutionByCategory(context.Context) ([]repository.CategoryTiming, error) {
	return r.timings, nil
}

func TestGetOverview(t *testing.T) {
	repo := &fakeStatsRepo{
		total:     40,
		thisMonth: 8,
		overdue:   5,
		avgDays:   6.5,
		byStatus: []repository.CountRow{
			{Key: "pending", Total: 30},
			{Key: "closed", Total: 10},
		},
	}
	svc := NewStatsService(repo)

	overview, err := svc.GetOverview(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 40, overview.TotalCases)
	assert.Equal(t, 8, overview.FiledThisMonth)
	assert.Equal(t, 5, overview.OverdueCases)
	assert.InDelta(t, 6.5, overview.AvgResolutionDays, 0.001)
	require.Len(t, overview.ByStatus, 2)
	assert.InDelta(t, 75.0, overview.ByStatus[0].Percent, 0.001)
	assert.InDelta(t, 25.0, overview.ByStatus[1].Percent, 0.001)
}

func TestMonthlyEvolutionZeroFills(t *testing.T) {
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	repo := &fakeStatsRepo{
		monthly: []repository.MonthCount{
			{Month: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), Total: 7},
			{Month: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Total: 3},
		},
	}
	svc := NewStatsService(repo)
	svc.now = func() time.Time { return now }

	series, err := svc.MonthlyEvolution(context.Background(), 4)
	require.NoError(t, err)

	require.Len(t, series, 4)
	assert.Equal(t, time.March, series[0].Month.Month())
	assert.Equal(t, 0, series[0].Total)
	assert.Equal(t, 7, series[1].Total)
	assert.Equal(t, 0, series[2].Total)
	assert.Equal(t, 3, series[3].Total)
}

func TestResolutionByCategoryIncludesEmptyCategories(t *testing.T) {
	repo := &fakeStatsRepo{
		timings: []repository.CategoryTiming{
			{Category: "petition", AvgDays: 4.2, Closed: 12},
		},
	}
	svc := NewStatsService(repo)

	rows, err := svc.ResolutionByCategory(context.Background())
	require.NoError(t, err)

	require.Len(t, rows, 4)
	byCategory := map[domain.CaseCategory]CategoryResolution{}
	for _, row := range rows {
		byCategory[row.Category] = row
	}
	assert.InDelta(t, 4.2, byCategory[domain.CategoryPetition].AvgDays, 0.001)
	assert.Equal(t, 12, byCategory[domain.CategoryPetition].Closed)
	assert.Equal(t, 0, byCategory[domain.CategorySuggestion].Closed)
}
