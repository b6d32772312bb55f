package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"mdash/internal/modules/metrics/domain"
	metricsout "mdash/internal/modules/metrics/port/out"
)

// FileLedgerStore keeps the collection in a single JSON array file, the
// lone persisted state that survives between runs.
type FileLedgerStore struct {
	path string
}

func NewFileLedgerStore(path string) metricsout.LedgerStore {
	return &FileLedgerStore{path: path}
}

func (s *FileLedgerStore) Load(_ context.Context) ([]domain.Entry, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Entry{}, nil
		}
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	entries, err := domain.DecodeEntries(raw)
	if err != nil {
		return nil, fmt.Errorf("decode ledger %s: %w", s.path, err)
	}
	return entries, nil
}

func (s *FileLedgerStore) Save(_ context.Context, entries []domain.Entry) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create ledger directory: %w", err)
	}
	payload, err := domain.EncodeEntries(entries)
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}
	if err := os.WriteFile(s.path, append(payload, '\n'), 0o644); err != nil {
		return fmt.Errorf("write ledger: %w", err)
	}
	return nil
}
