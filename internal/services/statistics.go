package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"mibolsillo/internal/core"
)

// StatisticsService covers /statistics.
type StatisticsService struct {
	api API
}

func NewStatisticsService(api API) *StatisticsService {
	return &StatisticsService{api: api}
}

// GetDashboard loads aggregates for the last months months. Out-of-range
// windows fall back to the default. List fields are never nil.
func (s *StatisticsService) GetDashboard(ctx context.Context, months int) (core.DashboardStatistics, error) {
	months = core.NormalizeMonths(months)
	q := url.Values{"months": {strconv.Itoa(months)}}

	var stats core.DashboardStatistics
	if err := s.api.Get(ctx, "/statistics/dashboard", q, &stats); err != nil {
		return core.DashboardStatistics{}, fmt.Errorf("dashboard statistics: %w", err)
	}
	stats.Normalize()
	return stats, nil
}
