package in

import (
	"context"

	"mdash/internal/modules/report/dto"
)

type Usecase interface {
	Write(ctx context.Context, input dto.WriteInput) (dto.WriteOutput, error)
}
