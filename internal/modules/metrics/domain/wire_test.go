package domain_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"mdash/internal/modules/metrics/domain"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	t.Parallel()
	entries := domain.SampleEntries()
	raw, err := domain.EncodeEntries(entries)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.HasPrefix(string(raw), "[\n  {") {
		t.Fatalf("payload must be a pretty-printed array, got prefix %q", string(raw)[:10])
	}
	if !strings.Contains(string(raw), `"toolCallsBefore": 24`) {
		t.Fatalf("wire field names must use camelCase: %s", raw)
	}

	decoded, err := domain.DecodeEntries(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != len(entries) {
		t.Fatalf("expected %d entries, got %d", len(entries), len(decoded))
	}
	for i := range entries {
		if !decoded[i].CreatedAt.Equal(entries[i].CreatedAt) {
			t.Fatalf("entry %d timestamp changed: want %v got %v", i, entries[i].CreatedAt, decoded[i].CreatedAt)
		}
		got, want := decoded[i], entries[i]
		got.CreatedAt, want.CreatedAt = time.Time{}, time.Time{}
		if got != want {
			t.Fatalf("entry %d changed across round trip:\n want %+v\n got  %+v", i, want, got)
		}
	}
}

func TestDecodeRejectsNonArray(t *testing.T) {
	t.Parallel()
	if _, err := domain.DecodeEntries([]byte(`{"date":"2024-01-10"}`)); !errors.Is(err, domain.ErrNotArray) {
		t.Fatalf("object payload should fail with ErrNotArray, got %v", err)
	}
	if _, err := domain.DecodeEntries([]byte(`"hello"`)); !errors.Is(err, domain.ErrNotArray) {
		t.Fatalf("string payload should fail with ErrNotArray, got %v", err)
	}
	if _, err := domain.DecodeEntries([]byte(`{not json`)); err == nil {
		t.Fatalf("malformed payload should fail")
	}
}

func TestDecodeLeavesBadTimestampZero(t *testing.T) {
	t.Parallel()
	raw := []byte(`[{"date":"2024-01-10","toolCallsBefore":5,"timestamp":"yesterday"}]`)
	entries, err := domain.DecodeEntries(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 1 || !entries[0].CreatedAt.IsZero() {
		t.Fatalf("unparseable timestamp must decode to zero time, got %+v", entries)
	}
}

func TestDecodeEmptyArray(t *testing.T) {
	t.Parallel()
	entries, err := domain.DecodeEntries([]byte(`[]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty collection, got %d entries", len(entries))
	}
}
