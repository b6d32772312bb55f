package usecase

import (
	"context"
	"math"

	"mdash/internal/modules/stats/domain"
	"mdash/internal/modules/stats/dto"
	statsin "mdash/internal/modules/stats/port/in"
	"mdash/internal/modules/stats/service"
)

type Interactor struct {
	svc *service.StatsService
}

func NewInteractor(svc *service.StatsService) statsin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Summary(ctx context.Context) (dto.SummaryOutput, error) {
	summary, err := i.svc.Summary(ctx)
	if err != nil {
		return dto.SummaryOutput{}, err
	}
	return dto.SummaryOutput{
		EntryCount:            summary.EntryCount,
		ToolCalls:             roundPair(summary.Averages.ToolCalls),
		Terminal:              roundPair(summary.Averages.Terminal),
		DebugTime:             roundPair(summary.Averages.DebugTime),
		AvgToolCallReduction:  wholePercent(summary.AvgToolCallReduction),
		AvgDebugTimeReduction: wholePercent(summary.AvgDebugTimeReduction),
		TotalMinutesSaved:     summary.TotalMinutesSaved,
		TotalHoursSaved:       round1(summary.TotalHoursSaved),
	}, nil
}

func (i *Interactor) Trend(ctx context.Context) ([]dto.TrendPointOutput, error) {
	points, err := i.svc.Trend(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TrendPointOutput, 0, len(points))
	for _, p := range points {
		out = append(out, dto.TrendPointOutput{
			Date:            p.Date,
			Label:           p.Label,
			ToolCallsBefore: p.ToolCallsBefore,
			ToolCallsAfter:  p.ToolCallsAfter,
			DebugTimeBefore: p.DebugTimeBefore,
			DebugTimeAfter:  p.DebugTimeAfter,
		})
	}
	return out, nil
}

func (i *Interactor) ImprovementBars(ctx context.Context) ([]dto.BarOutput, error) {
	bars, err := i.svc.ImprovementBars(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BarOutput, 0, len(bars))
	for _, bar := range bars {
		out = append(out, dto.BarOutput{Category: bar.Category, Percent: wholePercent(bar.Percent)})
	}
	return out, nil
}

func roundPair(pair domain.PairAverages) dto.PairAveragesOutput {
	return dto.PairAveragesOutput{Before: round1(pair.Before), After: round1(pair.After)}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func wholePercent(v float64) int {
	return int(math.Round(v))
}
