package out

import (
	"context"

	"mdash/internal/modules/stats/domain"
)

// ObservationSource supplies the current collection to aggregate over.
type ObservationSource interface {
	List(ctx context.Context) ([]domain.Observation, error)
}
