package domain_test

import (
	"math"
	"testing"

	"mdash/internal/modules/stats/domain"
)

func TestImprovementPercent(t *testing.T) {
	t.Parallel()
	if got := domain.ImprovementPercent(20, 5); got != 75 {
		t.Fatalf("20->5 should be 75%%, got %v", got)
	}
	if got := domain.ImprovementPercent(0, 10); got != 0 {
		t.Fatalf("zero before must yield 0, got %v", got)
	}
	if got := domain.ImprovementPercent(10, 15); got != -50 {
		t.Fatalf("regression must keep its sign, got %v", got)
	}
	if got := domain.ImprovementPercent(8, 8); got != 0 {
		t.Fatalf("no change should be 0, got %v", got)
	}
}

func TestComputeAveragesEmpty(t *testing.T) {
	t.Parallel()
	avg := domain.ComputeAverages(nil)
	if avg != (domain.Averages{}) {
		t.Fatalf("empty input must yield all zeros, got %+v", avg)
	}
}

func TestComputeAverages(t *testing.T) {
	t.Parallel()
	avg := domain.ComputeAverages([]domain.Observation{
		{ToolCallsBefore: 10, ToolCallsAfter: 4, TerminalBefore: 6, TerminalAfter: 2, DebugTimeBefore: 90, DebugTimeAfter: 30},
		{ToolCallsBefore: 20, ToolCallsAfter: 6, TerminalBefore: 8, TerminalAfter: 4, DebugTimeBefore: 30, DebugTimeAfter: 10},
	})
	if avg.ToolCalls.Before != 15 || avg.ToolCalls.After != 5 {
		t.Fatalf("tool call averages wrong: %+v", avg.ToolCalls)
	}
	if avg.Terminal.Before != 7 || avg.Terminal.After != 3 {
		t.Fatalf("terminal averages wrong: %+v", avg.Terminal)
	}
	if avg.DebugTime.Before != 60 || avg.DebugTime.After != 20 {
		t.Fatalf("debug averages wrong: %+v", avg.DebugTime)
	}
}

func TestComputeSummaryAveragesRatiosNotSums(t *testing.T) {
	t.Parallel()
	// Per-entry reductions are 75% and 25%; their average is 50%. The
	// ratio of sums would give a different figure, which belongs to the
	// bar chart, not here.
	summary := domain.ComputeSummary([]domain.Observation{
		{ToolCallsBefore: 100, ToolCallsAfter: 25, DebugTimeBefore: 40, DebugTimeAfter: 10},
		{ToolCallsBefore: 4, ToolCallsAfter: 3, DebugTimeBefore: 20, DebugTimeAfter: 15},
	})
	if summary.AvgToolCallReduction != 50 {
		t.Fatalf("expected average of per-entry ratios 50, got %v", summary.AvgToolCallReduction)
	}
	if summary.AvgDebugTimeReduction != 50 {
		t.Fatalf("expected average debug reduction 50, got %v", summary.AvgDebugTimeReduction)
	}
	if summary.TotalMinutesSaved != 35 {
		t.Fatalf("expected 35 minutes saved, got %d", summary.TotalMinutesSaved)
	}
	if math.Abs(summary.TotalHoursSaved-35.0/60.0) > 1e-9 {
		t.Fatalf("hours saved wrong: %v", summary.TotalHoursSaved)
	}
}

func TestComputeSummarySkipsZeroBeforeEntries(t *testing.T) {
	t.Parallel()
	// The zero-before entry must not dilute the average to 25%.
	summary := domain.ComputeSummary([]domain.Observation{
		{ToolCallsBefore: 10, ToolCallsAfter: 5, DebugTimeBefore: 1},
		{ToolCallsBefore: 0, ToolCallsAfter: 7, DebugTimeBefore: 1},
	})
	if summary.AvgToolCallReduction != 50 {
		t.Fatalf("zero-before entry must be excluded, got %v", summary.AvgToolCallReduction)
	}
}

func TestComputeSummaryEmpty(t *testing.T) {
	t.Parallel()
	summary := domain.ComputeSummary(nil)
	if summary.EntryCount != 0 || summary.AvgToolCallReduction != 0 ||
		summary.TotalMinutesSaved != 0 || summary.TotalHoursSaved != 0 {
		t.Fatalf("empty collection must yield zeros, got %+v", summary)
	}
}

func TestTrendSeriesSortsByDate(t *testing.T) {
	t.Parallel()
	points := domain.TrendSeries([]domain.Observation{
		{Date: "2024-02-14", ToolCallsBefore: 9},
		{Date: "2024-01-03", ToolCallsBefore: 7},
		{Date: "2024-01-20", ToolCallsBefore: 8},
	})
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	if points[0].Date != "2024-01-03" || points[1].Date != "2024-01-20" || points[2].Date != "2024-02-14" {
		t.Fatalf("points not in chronological order: %+v", points)
	}
	if points[0].Label != "Jan 3" || points[2].Label != "Feb 14" {
		t.Fatalf("unexpected labels: %q %q", points[0].Label, points[2].Label)
	}
}

func TestTrendLabelFallsBackToRawDate(t *testing.T) {
	t.Parallel()
	points := domain.TrendSeries([]domain.Observation{{Date: "not-a-date"}})
	if points[0].Label != "not-a-date" {
		t.Fatalf("unparseable date should keep raw label, got %q", points[0].Label)
	}
}

func TestImprovementBarsUseRatioOfSums(t *testing.T) {
	t.Parallel()
	bars := domain.ImprovementBars([]domain.Observation{
		{ToolCallsBefore: 100, ToolCallsAfter: 25},
		{ToolCallsBefore: 4, ToolCallsAfter: 3},
	})
	if len(bars) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(bars))
	}
	if bars[0].Category != domain.CategoryToolCalls {
		t.Fatalf("unexpected first category %q", bars[0].Category)
	}
	// (104-28)/104 ≈ 73.08 — deliberately different from the 50% average
	// of per-entry ratios.
	want := (104.0 - 28.0) / 104.0 * 100
	if math.Abs(bars[0].Percent-want) > 1e-9 {
		t.Fatalf("expected ratio-of-sums %v, got %v", want, bars[0].Percent)
	}
}

func TestImprovementBarsEmptyCollection(t *testing.T) {
	t.Parallel()
	for _, b := range domain.ImprovementBars(nil) {
		if b.Percent != 0 {
			t.Fatalf("empty collection must yield zero bars, got %+v", b)
		}
	}
}
