package dto

import (
	"time"

	"github.com/spec-kit/pqrs-service/internal/service"
)

// DistributionSlice is one dashboard bucket.
type DistributionSlice struct {
	Key     string  `json:"key"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
}

// OverviewResponse is the dashboard headline block.
type OverviewResponse struct {
	TotalCases        int                 `json:"total_cases"`
	FiledThisMonth    int                 `json:"filed_this_month"`
	OverdueCases      int                 `json:"overdue_cases"`
	AvgResolutionDays float64             `json:"avg_resolution_days"`
	ByStatus          []DistributionSlice `json:"by_status"`
	ByCategory        []DistributionSlice `json:"by_category"`
	ByTrafficLight    []DistributionSlice `json:"by_traffic_light"`
}

// MonthPoint is one point on the intake chart.
type MonthPoint struct {
	Month time.Time `json:"month"`
	Total int       `json:"total"`
}

// CategoryResolution is the average closure time for one category.
type CategoryResolution struct {
	Category string  `json:"category"`
	AvgDays  float64 `json:"avg_days"`
	Closed   int     `json:"closed"`
}

// NewOverviewResponse maps the service overview.
func NewOverviewResponse(overview *service.Overview) OverviewResponse {
	return OverviewResponse{
		TotalCases:        overview.TotalCases,
		FiledThisMonth:    overview.FiledThisMonth,
		OverdueCases:      overview.OverdueCases,
		AvgResolutionDays: overview.AvgResolutionDays,
		ByStatus:          newSlices(overview.ByStatus),
		ByCategory:        newSlices(overview.ByCategory),
		ByTrafficLight:    newSlices(overview.ByTrafficLight),
	}
}

// NewMonthPoints maps the intake series.
func NewMonthPoints(points []service.MonthPoint) []MonthPoint {
	result := make([]MonthPoint, 0, len(points))
	for _, point := range points {
		result = append(result, MonthPoint{Month: point.Month, Total: point.Total})
	}
	return result
}

// NewCategoryResolutions maps closure timings.
func NewCategoryResolutions(rows []service.CategoryResolution) []CategoryResolution {
	result := make([]CategoryResolution, 0, len(rows))
	for _, row := range rows {
		result = append(result, CategoryResolution{
			Category: string(row.Category),
			AvgDays:  row.AvgDays,
			Closed:   row.Closed,
		})
	}
	return result
}

// NewDistributionSlices maps service slices.
func NewDistributionSlices(slices []service.DistributionSlice) []DistributionSlice {
	return newSlices(slices)
}

func newSlices(slices []service.DistributionSlice) []DistributionSlice {
	result := make([]DistributionSlice, 0, len(slices))
	for _, slice := range slices {
		result = append(result, DistributionSlice{
			Key:     slice.Key,
			Total:   slice.Total,
			Percent: slice.Percent,
		})
	}
	return result
}
