package service_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	reportout "mdash/internal/modules/report/adapter/out"
	"mdash/internal/modules/report/domain"
	"mdash/internal/modules/report/service"
	statsdto "mdash/internal/modules/stats/dto"
	"mdash/internal/platform/markdown"
)

type fakeClock struct{ now time.Time }

func (f fakeClock) Now() time.Time { return f.now }

type fakeStats struct {
	summary statsdto.SummaryOutput
	bars    []statsdto.BarOutput
}

func (f fakeStats) Summary(context.Context) (statsdto.SummaryOutput, error) {
	return f.summary, nil
}
func (f fakeStats) Trend(context.Context) ([]statsdto.TrendPointOutput, error) {
	return nil, nil
}
func (f fakeStats) ImprovementBars(context.Context) ([]statsdto.BarOutput, error) {
	return f.bars, nil
}

func newTestService(t *testing.T) (*service.ReportService, string) {
	t.Helper()
	reportsPath := t.TempDir()
	stats := fakeStats{
		summary: statsdto.SummaryOutput{
			EntryCount:            2,
			ToolCalls:             statsdto.PairAveragesOutput{Before: 15, After: 5},
			Terminal:              statsdto.PairAveragesOutput{Before: 7, After: 3},
			DebugTime:             statsdto.PairAveragesOutput{Before: 60, After: 20},
			AvgToolCallReduction:  67,
			AvgDebugTimeReduction: 67,
			TotalMinutesSaved:     80,
			TotalHoursSaved:       80.0 / 60.0,
		},
		bars: []statsdto.BarOutput{
			{Category: "Tool Calls", Percent: 67},
			{Category: "Terminal Commands", Percent: 57},
			{Category: "Debug Time", Percent: 67},
		},
	}
	clk := fakeClock{now: time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)}
	svc := service.NewReportService(clk, stats, reportout.NewVaultReportStore(reportsPath))
	return svc, reportsPath
}

func TestWriteCreatesManagedReport(t *testing.T) {
	t.Parallel()
	svc, reportsPath := newTestService(t)

	report, path, err := svc.Write(context.Background(), "Weekly Review")
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if report.Slug != "weekly-review" {
		t.Fatalf("unexpected slug %q", report.Slug)
	}
	if path != filepath.Join(reportsPath, "weekly-review.md") {
		t.Fatalf("unexpected report path %q", path)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	content := string(raw)
	if !strings.Contains(content, domain.ManagedStatsStart) || !strings.Contains(content, domain.ManagedStatsEnd) {
		t.Fatalf("managed block markers missing:\n%s", content)
	}
	if !strings.Contains(content, "| Tool calls | 15.0 | 5.0 |") {
		t.Fatalf("averages table missing:\n%s", content)
	}
	if !strings.Contains(content, "Debug time saved: 80 min (1.3 h)") {
		t.Fatalf("saved-time line missing:\n%s", content)
	}

	meta, _, err := markdown.SplitFrontmatter(content)
	if err != nil {
		t.Fatalf("split frontmatter: %v", err)
	}
	if meta["title"] != "Weekly Review" {
		t.Fatalf("unexpected frontmatter title: %v", meta["title"])
	}
	if meta["schema_version"] != domain.SchemaVersion {
		t.Fatalf("unexpected schema version: %v", meta["schema_version"])
	}
	if meta["generated_at"] != "2024-03-05T09:30:00Z" {
		t.Fatalf("unexpected generated_at: %v", meta["generated_at"])
	}
	if meta["entry_count"] != 2 {
		t.Fatalf("unexpected entry count: %v", meta["entry_count"])
	}
}

func TestWriteDefaultsTitle(t *testing.T) {
	t.Parallel()
	svc, _ := newTestService(t)
	report, _, err := svc.Write(context.Background(), "   ")
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if report.Title != "Metrics Report" || report.Slug != "metrics-report" {
		t.Fatalf("blank title must default, got %+v", report)
	}
}

func TestRewritePreservesUserProse(t *testing.T) {
	t.Parallel()
	svc, reportsPath := newTestService(t)

	_, path, err := svc.Write(context.Background(), "Weekly Review")
	if err != nil {
		t.Fatalf("first write: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	edited := strings.Replace(string(raw), "## Notes\n", "## Notes\n\nHand-written observations stay.\n", 1)
	if err := os.WriteFile(path, []byte(edited), 0o644); err != nil {
		t.Fatalf("edit report: %v", err)
	}

	if _, _, err := svc.Write(context.Background(), "Weekly Review"); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	raw, err = os.ReadFile(filepath.Join(reportsPath, "weekly-review.md"))
	if err != nil {
		t.Fatalf("reread report: %v", err)
	}
	content := string(raw)
	if !strings.Contains(content, "Hand-written observations stay.") {
		t.Fatalf("user prose must survive rewrite:\n%s", content)
	}
	if strings.Count(content, domain.ManagedStatsStart) != 1 {
		t.Fatalf("managed block must not duplicate:\n%s", content)
	}
}
