package usecase

import (
	"context"

	"mdash/internal/modules/report/dto"
	reportin "mdash/internal/modules/report/port/in"
	"mdash/internal/modules/report/service"
)

type Interactor struct {
	svc *service.ReportService
}

func NewInteractor(svc *service.ReportService) reportin.Usecase {
	return &Interactor{svc: svc}
}

func (i *Interactor) Write(ctx context.Context, input dto.WriteInput) (dto.WriteOutput, error) {
	report, path, err := i.svc.Write(ctx, input.Title)
	if err != nil {
		return dto.WriteOutput{}, err
	}
	return dto.WriteOutput{Path: path, Slug: report.Slug, EntryCount: report.EntryCount}, nil
}
