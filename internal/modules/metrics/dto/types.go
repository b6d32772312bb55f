package dto

import "time"

type AddEntryInput struct {
	Date            string
	ToolCallsBefore int
	ToolCallsAfter  int
	TerminalBefore  int
	TerminalAfter   int
	DebugTimeBefore int
	DebugTimeAfter  int
	TaskDescription string
}

type EntryOutput struct {
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

type ImportInput struct {
	RawJSON []byte
}

type ImportOutput struct {
	Count int
}

type ExportOutput struct {
	Filename string
	Payload  []byte
}
