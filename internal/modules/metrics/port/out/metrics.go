package out

import (
	"context"

	"mdash/internal/modules/metrics/domain"
)

// LedgerStore persists the full collection; every mutation rewrites it.
type LedgerStore interface {
	Load(ctx context.Context) ([]domain.Entry, error)
	Save(ctx context.Context, entries []domain.Entry) error
}

type EntryIndexProjector interface {
	Reset(ctx context.Context) error
	UpsertEntry(ctx context.Context, entry domain.Entry) error
}
