package usecase

import (
	"context"

	"mdash/internal/modules/metrics/domain"
	"mdash/internal/modules/metrics/dto"
	metricsin "mdash/internal/modules/metrics/port/in"
	"mdash/internal/modules/metrics/service"
)

type Interactor struct {
	svc *service.EntryService
}

func NewInteractor(svc *service.EntryService) metricsin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Add(ctx context.Context, input dto.AddEntryInput) (dto.EntryOutput, error) {
	entry, err := i.svc.Add(ctx, domain.Entry{
		Date:            input.Date,
		ToolCallsBefore: input.ToolCallsBefore,
		ToolCallsAfter:  input.ToolCallsAfter,
		TerminalBefore:  input.TerminalBefore,
		TerminalAfter:   input.TerminalAfter,
		DebugTimeBefore: input.DebugTimeBefore,
		DebugTimeAfter:  input.DebugTimeAfter,
		TaskDescription: input.TaskDescription,
	})
	if err != nil {
		return dto.EntryOutput{}, err
	}
	return toOutput(entry), nil
}

func (i *Interactor) List(ctx context.Context) ([]dto.EntryOutput, error) {
	entries, err := i.svc.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.EntryOutput, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toOutput(entry))
	}
	return out, nil
}

func (i *Interactor) Get(ctx context.Context, id string) (dto.EntryOutput, error) {
	entry, err := i.svc.Get(ctx, id)
	if err != nil {
		return dto.EntryOutput{}, err
	}
	return toOutput(entry), nil
}

func (i *Interactor) ClearAll(ctx context.Context) error {
	return i.svc.ClearAll(ctx)
}

func (i *Interactor) Import(ctx context.Context, input dto.ImportInput) (dto.ImportOutput, error) {
	count, err := i.svc.Import(ctx, input.RawJSON)
	if err != nil {
		return dto.ImportOutput{}, err
	}
	return dto.ImportOutput{Count: count}, nil
}

func (i *Interactor) Export(ctx context.Context) (dto.ExportOutput, error) {
	payload, filename, err := i.svc.Export(ctx)
	if err != nil {
		return dto.ExportOutput{}, err
	}
	return dto.ExportOutput{Filename: filename, Payload: payload}, nil
}

func (i *Interactor) LoadSample(ctx context.Context) (dto.ImportOutput, error) {
	count, err := i.svc.LoadSample(ctx)
	if err != nil {
		return dto.ImportOutput{}, err
	}
	return dto.ImportOutput{Count: count}, nil
}

func (i *Interactor) Reindex(ctx context.Context) error {
	return i.svc.Reindex(ctx)
}

func toOutput(entry domain.Entry) dto.EntryOutput {
	return dto.EntryOutput{
		ID:              entry.ID,
		Date:            entry.Date,
		ToolCallsBefore: entry.ToolCallsBefore,
		ToolCallsAfter:  entry.ToolCallsAfter,
		TerminalBefore:  entry.TerminalBefore,
		TerminalAfter:   entry.TerminalAfter,
		DebugTimeBefore: entry.DebugTimeBefore,
		DebugTimeAfter:  entry.DebugTimeAfter,
		TaskDescription: entry.TaskDescription,
		CreatedAt:       entry.CreatedAt,
	}
}
