package in

import (
	"context"

	"mdash/internal/modules/report/dto"
	reportin "mdash/internal/modules/report/port/in"
)

type CLIHandler struct {
	usecase reportin.Usecase
}

func NewCLIHandler(usecase reportin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Write(ctx context.Context, title string) (dto.WriteOutput, error) {
	return h.usecase.Write(ctx, dto.WriteInput{Title: title})
}
