package domain

import (
	"sort"
	"time"
)

// Observation is one before/after measurement as the aggregator sees it.
// The stats module never mutates observations and holds no state of its
// own; everything below is recomputed from the full slice on demand.
type Observation struct {
	Date            string
	ToolCallsBefore int
	ToolCallsAfter  int
	TerminalBefore  int
	TerminalAfter   int
	DebugTimeBefore int
	DebugTimeAfter  int
	TaskDescription string
}

type PairAverages struct {
	Before float64
	After  float64
}

type Averages struct {
	ToolCalls PairAverages
	Terminal  PairAverages
	DebugTime PairAverages
}

// ImprovementPercent is the relative reduction from before to after,
// expressed as a percentage of before. A zero before yields zero. The
// sign is preserved: a negative result denotes a regression.
func ImprovementPercent(before, after float64) float64 {
	if before == 0 {
		return 0
	}
	return (before - after) / before * 100
}

// ComputeAverages returns the arithmetic mean of each before/after pair.
// An empty input yields all zeros.
func ComputeAverages(observations []Observation) Averages {
	if len(observations) == 0 {
		return Averages{}
	}
	var out Averages
	for _, o := range observations {
		out.ToolCalls.Before += float64(o.ToolCallsBefore)
		out.ToolCalls.After += float64(o.ToolCallsAfter)
		out.Terminal.Before += float64(o.TerminalBefore)
		out.Terminal.After += float64(o.TerminalAfter)
		out.DebugTime.Before += float64(o.DebugTimeBefore)
		out.DebugTime.After += float64(o.DebugTimeAfter)
	}
	n := float64(len(observations))
	out.ToolCalls.Before /= n
	out.ToolCalls.After /= n
	out.Terminal.Before /= n
	out.Terminal.After /= n
	out.DebugTime.Before /= n
	out.DebugTime.After /= n
	return out
}

type Summary struct {
	EntryCount int
	Averages   Averages

	// Per-entry improvement percentages averaged across the entries whose
	// before value is non-zero. This is an average of ratios and must not
	// be replaced with a ratio of averages: the two disagree whenever
	// entries differ in magnitude.
	AvgToolCallReduction  float64
	AvgDebugTimeReduction float64

	TotalMinutesSaved int
	TotalHoursSaved   float64
}

// ComputeSummary derives the summary-panel figures from the full
// collection.
func ComputeSummary(observations []Observation) Summary {
	summary := Summary{
		EntryCount: len(observations),
		Averages:   ComputeAverages(observations),
	}
	var toolSum, debugSum float64
	var toolN, debugN int
	for _, o := range observations {
		if o.ToolCallsBefore > 0 {
			toolSum += ImprovementPercent(float64(o.ToolCallsBefore), float64(o.ToolCallsAfter))
			toolN++
		}
		if o.DebugTimeBefore > 0 {
			debugSum += ImprovementPercent(float64(o.DebugTimeBefore), float64(o.DebugTimeAfter))
			debugN++
		}
		summary.TotalMinutesSaved += o.DebugTimeBefore - o.DebugTimeAfter
	}
	if toolN > 0 {
		summary.AvgToolCallReduction = toolSum / float64(toolN)
	}
	if debugN > 0 {
		summary.AvgDebugTimeReduction = debugSum / float64(debugN)
	}
	summary.TotalHoursSaved = float64(summary.TotalMinutesSaved) / 60
	return summary
}

type TrendPoint struct {
	Date            string
	Label           string
	ToolCallsBefore int
	ToolCallsAfter  int
	DebugTimeBefore int
	DebugTimeAfter  int
}

// TrendSeries returns one point per observation in chronological order,
// independent of insertion order. ISO dates sort lexicographically, so
// the stable sort keys on the raw date string.
func TrendSeries(observations []Observation) []TrendPoint {
	points := make([]TrendPoint, 0, len(observations))
	for _, o := range observations {
		points = append(points, TrendPoint{
			Date:            o.Date,
			Label:           trendLabel(o.Date),
			ToolCallsBefore: o.ToolCallsBefore,
			ToolCallsAfter:  o.ToolCallsAfter,
			DebugTimeBefore: o.DebugTimeBefore,
			DebugTimeAfter:  o.DebugTimeAfter,
		})
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}

func trendLabel(date string) string {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return parsed.Format("Jan 2")
}

const (
	CategoryToolCalls = "Tool Calls"
	CategoryTerminal  = "Terminal Commands"
	CategoryDebugTime = "Debug Time"
)

type Bar struct {
	Category string
	Percent  float64
}

// ImprovementBars computes one bar per metric category from the sums of
// before/after values across all observations. This ratio of sums is a
// different statistic than Summary's average of per-entry ratios; the
// two coexist on purpose.
func ImprovementBars(observations []Observation) []Bar {
	var toolB, toolA, termB, termA, debugB, debugA int
	for _, o := range observations {
		toolB += o.ToolCallsBefore
		toolA += o.ToolCallsAfter
		termB += o.TerminalBefore
		termA += o.TerminalAfter
		debugB += o.DebugTimeBefore
		debugA += o.DebugTimeAfter
	}
	return []Bar{
		{Category: CategoryToolCalls, Percent: ImprovementPercent(float64(toolB), float64(toolA))},
		{Category: CategoryTerminal, Percent: ImprovementPercent(float64(termB), float64(termA))},
		{Category: CategoryDebugTime, Percent: ImprovementPercent(float64(debugB), float64(debugA))},
	}
}
