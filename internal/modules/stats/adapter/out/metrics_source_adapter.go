package out

import (
	"context"

	metricsin "mdash/internal/modules/metrics/port/in"
	"mdash/internal/modules/stats/domain"
	statsout "mdash/internal/modules/stats/port/out"
)

// MetricsSourceAdapter feeds the aggregator from the metric store's
// public port, keeping the stats module decoupled from storage.
type MetricsSourceAdapter struct {
	metrics metricsin.Usecase
}

func NewMetricsSourceAdapter(metrics metricsin.Usecase) statsout.ObservationSource {
	return &MetricsSourceAdapter{metrics: metrics}
}

func (a *MetricsSourceAdapter) List(ctx context.Context) ([]domain.Observation, error) {
	entries, err := a.metrics.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Observation, 0, len(entries))
	for _, entry := range entries {
		out = append(out, domain.Observation{
			Date:            entry.Date,
			ToolCallsBefore: entry.ToolCallsBefore,
			ToolCallsAfter:  entry.ToolCallsAfter,
			TerminalBefore:  entry.TerminalBefore,
			TerminalAfter:   entry.TerminalAfter,
			DebugTimeBefore: entry.DebugTimeBefore,
			DebugTimeAfter:  entry.DebugTimeAfter,
			TaskDescription: entry.TaskDescription,
		})
	}
	return out, nil
}
