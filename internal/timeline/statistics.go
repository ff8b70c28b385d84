package timeline

// Statistics is a read-only aggregation over a timeline's operation log
type Statistics struct {
	TimelineID        string         `json:"timeline_id"`
	TotalOperations   int            `json:"total_operations"`
	CurrentIndex      int            `json:"current_index"`
	CountsByStatus    map[string]int `json:"counts_by_status"`
	CountsByOperation map[string]int `json:"counts_by_operation"`
	TimedOperations   int            `json:"timed_operations"`
	TotalDurationMS   int64          `json:"total_duration_ms"`
	AverageDurationMS float64        `json:"average_duration_ms"`
}

// Statistics computes aggregate counts over the timeline's operations.
// Duration totals and averages only cover operations that recorded one.
func (m *Manager) Statistics(id string) (*Statistics, error) {
	t, err := m.load(id)
	if err != nil {
		return nil, err
	}

	stats := &Statistics{
		TimelineID:        t.ID,
		TotalOperations:   len(t.Operations),
		CurrentIndex:      t.CurrentIndex,
		CountsByStatus:    map[string]int{},
		CountsByOperation: map[string]int{},
	}

	for i := range t.Operations {
		op := &t.Operations[i]
		stats.CountsByStatus[string(op.Status)]++
		stats.CountsByOperation[op.Operation]++
		if op.DurationMS != nil {
			stats.TimedOperations++
			stats.TotalDurationMS += *op.DurationMS
		}
	}

	if stats.TimedOperations > 0 {
		stats.AverageDurationMS = float64(stats.TotalDurationMS) / float64(stats.TimedOperations)
	}

	return stats, nil
}
