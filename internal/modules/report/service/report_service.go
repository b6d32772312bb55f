package service

import (
	"context"
	"fmt"
	"strings"

	"mdash/internal/modules/report/domain"
	reportout "mdash/internal/modules/report/port/out"
	statsdto "mdash/internal/modules/stats/dto"
	statsin "mdash/internal/modules/stats/port/in"
	"mdash/internal/platform/clock"
	"mdash/internal/platform/slug"
)

type ReportService struct {
	clock clock.Clock
	stats statsin.Usecase
	store reportout.ReportStore
}

func NewReportService(clock clock.Clock, stats statsin.Usecase, store reportout.ReportStore) *ReportService {
	return &ReportService{clock: clock, stats: stats, store: store}
}

func (s *ReportService) Write(ctx context.Context, title string) (domain.Report, string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Metrics Report"
	}
	summary, err := s.stats.Summary(ctx)
	if err != nil {
		return domain.Report{}, "", err
	}
	bars, err := s.stats.ImprovementBars(ctx)
	if err != nil {
		return domain.Report{}, "", err
	}
	report := domain.Report{
		Title:       title,
		Slug:        slug.Make(title),
		GeneratedAt: s.clock.Now(),
		EntryCount:  summary.EntryCount,
		StatsBlock:  renderStatsBlock(summary, bars),
	}
	if err := report.Validate(); err != nil {
		return domain.Report{}, "", err
	}
	path, err := s.store.Save(ctx, report)
	if err != nil {
		return domain.Report{}, "", err
	}
	return report, path, nil
}

func renderStatsBlock(summary statsdto.SummaryOutput, bars []statsdto.BarOutput) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Entries: %d\n\n", summary.EntryCount))
	sb.WriteString("| Metric | Before (avg) | After (avg) |\n")
	sb.WriteString("| --- | ---: | ---: |\n")
	sb.WriteString(fmt.Sprintf("| Tool calls | %.1f | %.1f |\n", summary.ToolCalls.Before, summary.ToolCalls.After))
	sb.WriteString(fmt.Sprintf("| Terminal commands | %.1f | %.1f |\n", summary.Terminal.Before, summary.Terminal.After))
	sb.WriteString(fmt.Sprintf("| Debug minutes | %.1f | %.1f |\n", summary.DebugTime.Before, summary.DebugTime.After))
	sb.WriteString("\n| Category | Overall improvement |\n")
	sb.WriteString("| --- | ---: |\n")
	for _, bar := range bars {
		sb.WriteString(fmt.Sprintf("| %s | %d%% |\n", bar.Category, bar.Percent))
	}
	sb.WriteString(fmt.Sprintf("\nAverage tool-call reduction: %d%%\n", summary.AvgToolCallReduction))
	sb.WriteString(fmt.Sprintf("Average debug-time reduction: %d%%\n", summary.AvgDebugTimeReduction))
	sb.WriteString(fmt.Sprintf("Debug time saved: %d min (%.1f h)", summary.TotalMinutesSaved, summary.TotalHoursSaved))
	return sb.String()
}
