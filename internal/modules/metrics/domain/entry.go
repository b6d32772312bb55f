package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	SchemaVersion = 1

	// DateLayout is the calendar-date form accepted for Entry.Date.
	DateLayout = "2006-01-02"

	// DefaultTaskDescription replaces an empty task label on submission.
	DefaultTaskDescription = "General development task"
)

// Entry is one recorded before/after comparison for a development task:
// the same kind of work measured without and with the optimization rules
// applied.
type Entry struct {
	ID              string
	Date            string
	ToolCallsBefore int
	ToolCallsAfter  int
	TerminalBefore  int
	TerminalAfter   int
	DebugTimeBefore int
	DebugTimeAfter  int
	TaskDescription string
	CreatedAt       time.Time
}

func (e Entry) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Errorf("id is required")
	}
	if strings.TrimSpace(e.Date) == "" {
		return fmt.Errorf("date is required")
	}
	if _, err := time.Parse(DateLayout, e.Date); err != nil {
		return fmt.Errorf("date must be %s: %q", DateLayout, e.Date)
	}
	for _, field := range []struct {
		name  string
		value int
	}{
		{"tool_calls_before", e.ToolCallsBefore},
		{"tool_calls_after", e.ToolCallsAfter},
		{"terminal_before", e.TerminalBefore},
		{"terminal_after", e.TerminalAfter},
		{"debug_time_before", e.DebugTimeBefore},
		{"debug_time_after", e.DebugTimeAfter},
	} {
		if field.value < 0 {
			return fmt.Errorf("%s must not be negative", field.name)
		}
	}
	if e.ToolCallsBefore == 0 && e.TerminalBefore == 0 && e.DebugTimeBefore == 0 {
		return fmt.Errorf("at least one before metric must be non-zero")
	}
	return nil
}

// SampleEntries returns the three fixed demo records used by the
// sample-load operation. Callers must not mutate the returned entries.
func SampleEntries() []Entry {
	return []Entry{
		{
			ID:              "sample-0001",
			Date:            "2024-01-10",
			ToolCallsBefore: 24, ToolCallsAfter: 9,
			TerminalBefore: 18, TerminalAfter: 7,
			DebugTimeBefore: 95, DebugTimeAfter: 40,
			TaskDescription: "Refactor auth middleware",
			CreatedAt:       time.Date(2024, 1, 10, 17, 30, 0, 0, time.UTC),
		},
		{
			ID:              "sample-0002",
			Date:            "2024-01-17",
			ToolCallsBefore: 31, ToolCallsAfter: 11,
			TerminalBefore: 22, TerminalAfter: 8,
			DebugTimeBefore: 120, DebugTimeAfter: 45,
			TaskDescription: "Add pagination to search API",
			CreatedAt:       time.Date(2024, 1, 17, 16, 5, 0, 0, time.UTC),
		},
		{
			ID:              "sample-0003",
			Date:            "2024-01-24",
			ToolCallsBefore: 18, ToolCallsAfter: 6,
			TerminalBefore: 14, TerminalAfter: 5,
			DebugTimeBefore: 75, DebugTimeAfter: 25,
			TaskDescription: "Fix websocket reconnect loop",
			CreatedAt:       time.Date(2024, 1, 24, 18, 45, 0, 0, time.UTC),
		},
	}
}
