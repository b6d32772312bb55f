package out

import (
	"context"

	"mdash/internal/modules/report/domain"
)

type ReportStore interface {
	Save(ctx context.Context, report domain.Report) (string, error)
}
