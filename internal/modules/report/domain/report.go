package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	ManagedStatsStart = "<!-- mdash:stats:start -->"
	ManagedStatsEnd   = "<!-- mdash:stats:end -->"
	SchemaVersion     = 1
)

// Report is a markdown summary note. Only the managed stats block is
// regenerated on rewrite; prose around it belongs to the user.
type Report struct {
	Title       string
	Slug        string
	GeneratedAt time.Time
	EntryCount  int
	StatsBlock  string
}

func (r Report) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return fmt.Errorf("title is required")
	}
	if strings.TrimSpace(r.Slug) == "" {
		return fmt.Errorf("slug is required")
	}
	if strings.TrimSpace(r.StatsBlock) == "" {
		return fmt.Errorf("stats block is required")
	}
	return nil
}
