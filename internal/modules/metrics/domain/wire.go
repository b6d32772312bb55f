package domain

import (
	"encoding/json"
	"errors"
	"time"
)

// ErrNotArray is returned when an import payload is valid JSON but not a
// top-level array. Callers must leave the collection untouched.
var ErrNotArray = errors.New("payload is not a JSON array")

// record is the wire form shared by the ledger file and import/export
// payloads. Field names are part of the interchange contract and must not
// change.
type record struct {
	ID              string `json:"id,omitempty"`
	Date            string `json:"date"`
	ToolCallsBefore int    `json:"toolCallsBefore"`
	ToolCallsAfter  int    `json:"toolCallsAfter"`
	TerminalBefore  int    `json:"terminalBefore"`
	TerminalAfter   int    `json:"terminalAfter"`
	DebugTimeBefore int    `json:"debugTimeBefore"`
	DebugTimeAfter  int    `json:"debugTimeAfter"`
	TaskDescription string `json:"taskDescription"`
	Timestamp       string `json:"timestamp"`
}

// EncodeEntries renders the collection as a pretty-printed JSON array with
// two-space indentation.
func EncodeEntries(entries []Entry) ([]byte, error) {
	records := make([]record, 0, len(entries))
	for _, e := range entries {
		records = append(records, record{
			ID:              e.ID,
			Date:            e.Date,
			ToolCallsBefore: e.ToolCallsBefore,
			ToolCallsAfter:  e.ToolCallsAfter,
			TerminalBefore:  e.TerminalBefore,
			TerminalAfter:   e.TerminalAfter,
			DebugTimeBefore: e.DebugTimeBefore,
			DebugTimeAfter:  e.DebugTimeAfter,
			TaskDescription: e.TaskDescription,
			Timestamp:       e.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return json.MarshalIndent(records, "", "  ")
}

// DecodeEntries parses a JSON array of entry records. A payload whose top
// level is not an array fails with ErrNotArray. Timestamps that do not
// parse are left zero for the caller to coerce.
func DecodeEntries(raw []byte) ([]Entry, error) {
	var probe any
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}
	if _, ok := probe.([]any); !ok {
		return nil, ErrNotArray
	}
	var records []record
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(records))
	for _, r := range records {
		createdAt, _ := time.Parse(time.RFC3339, r.Timestamp)
		entries = append(entries, Entry{
			ID:              r.ID,
			Date:            r.Date,
			ToolCallsBefore: r.ToolCallsBefore,
			ToolCallsAfter:  r.ToolCallsAfter,
			TerminalBefore:  r.TerminalBefore,
			TerminalAfter:   r.TerminalAfter,
			DebugTimeBefore: r.DebugTimeBefore,
			DebugTimeAfter:  r.DebugTimeAfter,
			TaskDescription: r.TaskDescription,
			CreatedAt:       createdAt,
		})
	}
	return entries, nil
}
