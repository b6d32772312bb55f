package in

import (
	"context"

	"mdash/internal/modules/stats/dto"
)

type Usecase interface {
	Summary(ctx context.Context) (dto.SummaryOutput, error)
	Trend(ctx context.Context) ([]dto.TrendPointOutput, error)
	ImprovementBars(ctx context.Context) ([]dto.BarOutput, error)
}
