package domain_test

import (
	"testing"
	"time"

	"mdash/internal/modules/metrics/domain"
)

func TestEntryValidate(t *testing.T) {
	t.Parallel()
	base := domain.Entry{
		ID:              "e-1",
		Date:            "2024-03-05",
		ToolCallsBefore: 20,
		ToolCallsAfter:  5,
		TerminalBefore:  10,
		TerminalAfter:   3,
		DebugTimeBefore: 60,
		DebugTimeAfter:  20,
		TaskDescription: "Fix flaky test",
		CreatedAt:       time.Now().UTC(),
	}

	if err := base.Validate(); err != nil {
		t.Fatalf("entry should be valid: %v", err)
	}
	missingID := base
	missingID.ID = ""
	if err := missingID.Validate(); err == nil {
		t.Fatalf("missing id should fail")
	}
	missingDate := base
	missingDate.Date = ""
	if err := missingDate.Validate(); err == nil {
		t.Fatalf("missing date should fail")
	}
	badDate := base
	badDate.Date = "03/05/2024"
	if err := badDate.Validate(); err == nil {
		t.Fatalf("non-ISO date should fail")
	}
	negative := base
	negative.DebugTimeAfter = -5
	if err := negative.Validate(); err == nil {
		t.Fatalf("negative metric should fail")
	}
}

func TestEntryValidateRequiresOneBeforeMetric(t *testing.T) {
	t.Parallel()
	entry := domain.Entry{
		ID:   "e-1",
		Date: "2024-03-05",
		// all before metrics zero, afters alone are meaningless
		ToolCallsAfter: 4,
		DebugTimeAfter: 10,
	}
	if err := entry.Validate(); err == nil {
		t.Fatalf("all-zero before metrics should fail")
	}
	entry.DebugTimeBefore = 1
	if err := entry.Validate(); err != nil {
		t.Fatalf("one non-zero before metric should pass: %v", err)
	}
}

func TestSampleEntriesAreValid(t *testing.T) {
	t.Parallel()
	samples := domain.SampleEntries()
	if len(samples) != 3 {
		t.Fatalf("expected 3 sample entries, got %d", len(samples))
	}
	for _, s := range samples {
		if err := s.Validate(); err != nil {
			t.Fatalf("sample %s invalid: %v", s.ID, err)
		}
	}
	if samples[0].Date >= samples[1].Date || samples[1].Date >= samples[2].Date {
		t.Fatalf("sample entries must be date-ordered")
	}
}
