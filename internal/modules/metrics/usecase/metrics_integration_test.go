package usecase_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	metricsout "mdash/internal/modules/metrics/adapter/out"
	"mdash/internal/modules/metrics/dto"
	"mdash/internal/modules/metrics/service"
	"mdash/internal/modules/metrics/usecase"
	"mdash/internal/platform/config"
	apperrors "mdash/internal/platform/errors"

	_ "modernc.org/sqlite"
)

type fakeClock struct {
	values []time.Time
	idx    int
}

func (f *fakeClock) Now() time.Time {
	if f.idx >= len(f.values) {
		return f.values[len(f.values)-1]
	}
	v := f.values[f.idx]
	f.idx++
	return v
}

type fakeID struct{ n int }

func (f *fakeID) New() string {
	f.n++
	return fmt.Sprintf("entry-%04d", f.n)
}

func newTestInteractor(t *testing.T) (config.Config, *fakeClock, interface {
	Add(context.Context, dto.AddEntryInput) (dto.EntryOutput, error)
	List(context.Context) ([]dto.EntryOutput, error)
	Get(context.Context, string) (dto.EntryOutput, error)
	ClearAll(context.Context) error
	Import(context.Context, dto.ImportInput) (dto.ImportOutput, error)
	Export(context.Context) (dto.ExportOutput, error)
	LoadSample(context.Context) (dto.ImportOutput, error)
	Reindex(context.Context) error
}) {
	t.Helper()
	cfg, err := config.New(t.TempDir())
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	clk := &fakeClock{values: []time.Time{time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)}}
	projector, err := metricsout.NewSQLiteEntryProjector(cfg.DBPath)
	if err != nil {
		t.Fatalf("new projector: %v", err)
	}
	svc := service.NewEntryService(clk, &fakeID{}, metricsout.NewFileLedgerStore(cfg.LedgerPath), projector)
	return cfg, clk, usecase.NewInteractor(svc)
}

func TestAddListGetClear(t *testing.T) {
	t.Parallel()
	cfg, _, uc := newTestInteractor(t)
	ctx := context.Background()

	added, err := uc.Add(ctx, dto.AddEntryInput{
		Date:            "2024-03-05",
		ToolCallsBefore: 20, ToolCallsAfter: 5,
		DebugTimeBefore: 60, DebugTimeAfter: 20,
	})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if added.ID == "" {
		t.Fatalf("entry id must be assigned")
	}
	if added.TaskDescription != "General development task" {
		t.Fatalf("empty task must get the default, got %q", added.TaskDescription)
	}

	entries, err := uc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}

	got, err := uc.Get(ctx, added.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Date != "2024-03-05" {
		t.Fatalf("unexpected entry: %+v", got)
	}
	if _, err := uc.Get(ctx, "missing"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := uc.ClearAll(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	entries, err = uc.List(ctx)
	if err != nil {
		t.Fatalf("list after clear: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty collection after clear, got %d", len(entries))
	}
	if _, err := os.Stat(cfg.LedgerPath); err != nil {
		t.Fatalf("ledger file must survive clear: %v", err)
	}
}

func TestAddRejectsInvalidEntries(t *testing.T) {
	t.Parallel()
	_, _, uc := newTestInteractor(t)
	ctx := context.Background()

	if _, err := uc.Add(ctx, dto.AddEntryInput{ToolCallsBefore: 1}); err == nil {
		t.Fatalf("missing date should fail")
	}
	if _, err := uc.Add(ctx, dto.AddEntryInput{Date: "2024-03-05"}); err == nil {
		t.Fatalf("all-zero before metrics should fail")
	}
	if _, err := uc.Add(ctx, dto.AddEntryInput{Date: "2024-03-05", ToolCallsBefore: 5, DebugTimeAfter: -1}); err == nil {
		t.Fatalf("negative metric should fail")
	}
	entries, err := uc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("rejected adds must not persist, got %d entries", len(entries))
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	t.Parallel()
	_, _, uc := newTestInteractor(t)
	ctx := context.Background()

	if _, err := uc.LoadSample(ctx); err != nil {
		t.Fatalf("load sample: %v", err)
	}
	exported, err := uc.Export(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if exported.Filename != "mdash-metrics-2024-03-05.json" {
		t.Fatalf("unexpected export filename %q", exported.Filename)
	}

	out, err := uc.Import(ctx, dto.ImportInput{RawJSON: exported.Payload})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if out.Count != 3 {
		t.Fatalf("expected 3 imported entries, got %d", out.Count)
	}
	entries, err := uc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 3 || entries[0].TaskDescription != "Refactor auth middleware" {
		t.Fatalf("round trip lost data: %+v", entries)
	}
}

func TestImportRejectsBadPayloadAndLeavesStateUntouched(t *testing.T) {
	t.Parallel()
	_, _, uc := newTestInteractor(t)
	ctx := context.Background()

	if _, err := uc.LoadSample(ctx); err != nil {
		t.Fatalf("load sample: %v", err)
	}
	cases := [][]byte{
		[]byte(`{"not":"an array"}`),
		[]byte(`[{"date":"2024-01-10","toolCallsBefore":-2}]`),
		[]byte(`[{"toolCallsBefore":5}]`),
		[]byte(`not json at all`),
	}
	for _, raw := range cases {
		if _, err := uc.Import(ctx, dto.ImportInput{RawJSON: raw}); err == nil {
			t.Fatalf("payload %s should fail", raw)
		}
		entries, err := uc.List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(entries) != 3 {
			t.Fatalf("failed import must leave collection untouched, got %d entries", len(entries))
		}
	}
}

func TestImportCoercesMissingFields(t *testing.T) {
	t.Parallel()
	_, _, uc := newTestInteractor(t)
	ctx := context.Background()

	raw := []byte(`[{"date":"2024-04-01","toolCallsBefore":7,"toolCallsAfter":2}]`)
	out, err := uc.Import(ctx, dto.ImportInput{RawJSON: raw})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if out.Count != 1 {
		t.Fatalf("expected one entry, got %d", out.Count)
	}
	entries, err := uc.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	e := entries[0]
	if e.ID == "" || e.CreatedAt.IsZero() || e.TaskDescription != "General development task" {
		t.Fatalf("missing fields must be coerced, got %+v", e)
	}
}

func TestReindexRebuildsProjection(t *testing.T) {
	t.Parallel()
	cfg, _, uc := newTestInteractor(t)
	ctx := context.Background()

	if _, err := uc.LoadSample(ctx); err != nil {
		t.Fatalf("load sample: %v", err)
	}
	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		t.Fatalf("drop projection rows: %v", err)
	}
	if err := uc.Reindex(ctx); err != nil {
		t.Fatalf("reindex: %v", err)
	}
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM entries`).Scan(&count); err != nil {
		t.Fatalf("count entries: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 projected rows after reindex, got %d", count)
	}
}
