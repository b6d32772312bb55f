package out

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"mdash/internal/modules/report/domain"
	reportout "mdash/internal/modules/report/port/out"
	"mdash/internal/platform/markdown"
)

type VaultReportStore struct {
	reportsPath string
}

func NewVaultReportStore(reportsPath string) reportout.ReportStore {
	return &VaultReportStore{reportsPath: reportsPath}
}

func (s *VaultReportStore) Save(_ context.Context, report domain.Report) (string, error) {
	reportPath := filepath.Join(s.reportsPath, report.Slug+".md")
	if err := os.MkdirAll(filepath.Dir(reportPath), 0o755); err != nil {
		return "", fmt.Errorf("create reports directory: %w", err)
	}

	body := ""
	if existing, err := os.ReadFile(reportPath); err == nil {
		_, existingBody, splitErr := markdown.SplitFrontmatter(string(existing))
		if splitErr == nil {
			body = existingBody
		}
	}
	if strings.TrimSpace(body) == "" {
		body = "## Notes\n"
	}
	body = markdown.ReplaceManagedBlock(body, domain.ManagedStatsStart, domain.ManagedStatsEnd, report.StatsBlock)

	meta := map[string]any{
		"schema_version": domain.SchemaVersion,
		"title":          report.Title,
		"generated_at":   report.GeneratedAt.Format(time.RFC3339),
		"entry_count":    report.EntryCount,
	}
	rendered, err := markdown.RenderFrontmatter(meta, body)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(reportPath, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("write report markdown: %w", err)
	}
	return reportPath, nil
}
