package service

import (
	"context"

	"mdash/internal/modules/stats/domain"
	statsout "mdash/internal/modules/stats/port/out"
)

// StatsService is pure computation over the observation source; it owns
// no state and persists nothing.
type StatsService struct {
	source statsout.ObservationSource
}

func NewStatsService(source statsout.ObservationSource) *StatsService {
	return &StatsService{source: source}
}

func (s *StatsService) Summary(ctx context.Context) (domain.Summary, error) {
	observations, err := s.source.List(ctx)
	if err != nil {
		return domain.Summary{}, err
	}
	return domain.ComputeSummary(observations), nil
}

func (s *StatsService) Trend(ctx context.Context) ([]domain.TrendPoint, error) {
	observations, err := s.source.List(ctx)
	if err != nil {
		return nil, err
	}
	return domain.TrendSeries(observations), nil
}

func (s *StatsService) ImprovementBars(ctx context.Context) ([]domain.Bar, error) {
	observations, err := s.source.List(ctx)
	if err != nil {
		return nil, err
	}
	return domain.ImprovementBars(observations), nil
}
