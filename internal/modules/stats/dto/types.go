package dto

// Averages carry one decimal place; reduction percentages are rounded to
// whole points. Rounding happens at this boundary only, never inside the
// aggregation math.

type PairAveragesOutput struct {
	Before float64
	After  float64
}

type SummaryOutput struct {
	EntryCount            int
	ToolCalls             PairAveragesOutput
	Terminal              PairAveragesOutput
	DebugTime             PairAveragesOutput
	AvgToolCallReduction  int
	AvgDebugTimeReduction int
	TotalMinutesSaved     int
	TotalHoursSaved       float64
}

type TrendPointOutput struct {
	Date            string
	Label           string
	ToolCallsBefore int
	ToolCallsAfter  int
	DebugTimeBefore int
	DebugTimeAfter  int
}

type BarOutput struct {
	Category string
	Percent  int
}
