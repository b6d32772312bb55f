package in

import (
	"context"

	"mdash/internal/modules/stats/dto"
	statsin "mdash/internal/modules/stats/port/in"
)

type CLIHandler struct {
	usecase statsin.Usecase
}

func NewCLIHandler(usecase statsin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Summary(ctx context.Context) (dto.SummaryOutput, error) {
	return h.usecase.Summary(ctx)
}

func (h CLIHandler) Trend(ctx context.Context) ([]dto.TrendPointOutput, error) {
	return h.usecase.Trend(ctx)
}

func (h CLIHandler) ImprovementBars(ctx context.Context) ([]dto.BarOutput, error) {
	return h.usecase.ImprovementBars(ctx)
}
