package service

import (
	"context"
	"fmt"
	"strings"

	"mdash/internal/modules/metrics/domain"
	metricsout "mdash/internal/modules/metrics/port/out"
	"mdash/internal/platform/clock"
	"mdash/internal/platform/config"
	apperrors "mdash/internal/platform/errors"
	"mdash/internal/platform/id"
)

type EntryService struct {
	clock     clock.Clock
	idGen     id.Generator
	store     metricsout.LedgerStore
	projector metricsout.EntryIndexProjector
}

func NewEntryService(clock clock.Clock, idGen id.Generator, store metricsout.LedgerStore, projector metricsout.EntryIndexProjector) *EntryService {
	return &EntryService{clock: clock, idGen: idGen, store: store, projector: projector}
}

func (s *EntryService) Add(ctx context.Context, entry domain.Entry) (domain.Entry, error) {
	entry.ID = s.idGen.New()
	entry.CreatedAt = s.clock.Now()
	if strings.TrimSpace(entry.TaskDescription) == "" {
		entry.TaskDescription = domain.DefaultTaskDescription
	}
	if err := entry.Validate(); err != nil {
		return domain.Entry{}, err
	}
	entries, err := s.store.Load(ctx)
	if err != nil {
		return domain.Entry{}, err
	}
	entries = append(entries, entry)
	if err := s.store.Save(ctx, entries); err != nil {
		return domain.Entry{}, err
	}
	if err := s.projector.UpsertEntry(ctx, entry); err != nil {
		return domain.Entry{}, err
	}
	return entry, nil
}

func (s *EntryService) List(ctx context.Context) ([]domain.Entry, error) {
	return s.store.Load(ctx)
}

func (s *EntryService) Get(ctx context.Context, entryID string) (domain.Entry, error) {
	entries, err := s.store.Load(ctx)
	if err != nil {
		return domain.Entry{}, err
	}
	for _, entry := range entries {
		if entry.ID == entryID {
			return entry, nil
		}
	}
	return domain.Entry{}, fmt.Errorf("entry %q: %w", entryID, apperrors.ErrNotFound)
}

func (s *EntryService) ClearAll(ctx context.Context) error {
	if err := s.store.Save(ctx, nil); err != nil {
		return err
	}
	return s.projector.Reset(ctx)
}

// Import replaces the whole collection with the decoded payload. Records
// are validated against the entry contract before anything is persisted;
// a single bad record rejects the import with the collection untouched.
func (s *EntryService) Import(ctx context.Context, raw []byte) (int, error) {
	decoded, err := domain.DecodeEntries(raw)
	if err != nil {
		return 0, fmt.Errorf("decode import payload: %w", err)
	}
	now := s.clock.Now()
	entries := make([]domain.Entry, 0, len(decoded))
	for i, entry := range decoded {
		if strings.TrimSpace(entry.ID) == "" {
			entry.ID = s.idGen.New()
		}
		if entry.CreatedAt.IsZero() {
			entry.CreatedAt = now
		}
		if strings.TrimSpace(entry.TaskDescription) == "" {
			entry.TaskDescription = domain.DefaultTaskDescription
		}
		if err := entry.Validate(); err != nil {
			return 0, fmt.Errorf("import record %d: %w", i, err)
		}
		entries = append(entries, entry)
	}
	if err := s.replaceAll(ctx, entries); err != nil {
		return 0, err
	}
	return len(entries), nil
}

func (s *EntryService) Export(ctx context.Context) ([]byte, string, error) {
	entries, err := s.store.Load(ctx)
	if err != nil {
		return nil, "", err
	}
	payload, err := domain.EncodeEntries(entries)
	if err != nil {
		return nil, "", fmt.Errorf("encode export payload: %w", err)
	}
	filename := config.ExportPrefix + "-" + s.clock.Now().Format(domain.DateLayout) + ".json"
	return payload, filename, nil
}

func (s *EntryService) LoadSample(ctx context.Context) (int, error) {
	samples := domain.SampleEntries()
	if err := s.replaceAll(ctx, samples); err != nil {
		return 0, err
	}
	return len(samples), nil
}

func (s *EntryService) Reindex(ctx context.Context) error {
	if err := s.projector.Reset(ctx); err != nil {
		return err
	}
	entries, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := s.projector.UpsertEntry(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

func (s *EntryService) replaceAll(ctx context.Context, entries []domain.Entry) error {
	if err := s.store.Save(ctx, entries); err != nil {
		return err
	}
	if err := s.projector.Reset(ctx); err != nil {
		return err
	}
	for _, entry := range entries {
		if err := s.projector.UpsertEntry(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}
