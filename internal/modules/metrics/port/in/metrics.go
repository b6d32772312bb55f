package in

import (
	"context"

	"mdash/internal/modules/metrics/dto"
)

type Usecase interface {
	Add(ctx context.Context, input dto.AddEntryInput) (dto.EntryOutput, error)
	List(ctx context.Context) ([]dto.EntryOutput, error)
	Get(ctx context.Context, id string) (dto.EntryOutput, error)
	ClearAll(ctx context.Context) error
	Import(ctx context.Context, input dto.ImportInput) (dto.ImportOutput, error)
	Export(ctx context.Context) (dto.ExportOutput, error)
	LoadSample(ctx context.Context) (dto.ImportOutput, error)
	Reindex(ctx context.Context) error
}
