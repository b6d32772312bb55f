package in

import (
	"context"

	"mdash/internal/modules/metrics/dto"
	metricsin "mdash/internal/modules/metrics/port/in"
)

type CLIHandler struct {
	usecase metricsin.Usecase
}

func NewCLIHandler(usecase metricsin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Add(ctx context.Context, input dto.AddEntryInput) (dto.EntryOutput, error) {
	return h.usecase.Add(ctx, input)
}

func (h CLIHandler) List(ctx context.Context) ([]dto.EntryOutput, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Get(ctx context.Context, id string) (dto.EntryOutput, error) {
	return h.usecase.Get(ctx, id)
}

func (h CLIHandler) ClearAll(ctx context.Context) error {
	return h.usecase.ClearAll(ctx)
}

func (h CLIHandler) Import(ctx context.Context, rawJSON []byte) (dto.ImportOutput, error) {
	return h.usecase.Import(ctx, dto.ImportInput{RawJSON: rawJSON})
}

func (h CLIHandler) Export(ctx context.Context) (dto.ExportOutput, error) {
	return h.usecase.Export(ctx)
}

func (h CLIHandler) LoadSample(ctx context.Context) (dto.ImportOutput, error) {
	return h.usecase.LoadSample(ctx)
}

func (h CLIHandler) Reindex(ctx context.Context) error {
	return h.usecase.Reindex(ctx)
}
