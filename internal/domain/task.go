package domain

import "time"

// BaselineSnapshot is the post state captured when a monitoring lifecycle
// starts. It is held fixed for the lifetime of the task.
type BaselineSnapshot struct {
	CoreViewpoint      string         `json:"core_viewpoint"`
	SentimentScore     float64        `json:"sentiment_score"`
	ViewpointExtremism float64        `json:"viewpoint_extremism"`
	Engagement         EngagementData `json:"engagement_data"`
	Timestamp          time.Time      `json:"timestamp"`
}

// MonitoringTask tracks one active intervention lifecycle. It is owned
// exclusively by the monitoring loop goroutine that runs it; no other
// component mutates it concurrently.
type MonitoringTask struct {
	TaskID       string `json:"task_id"`
	ActionID     string `json:"action_id"`
	TargetPostID string `json:"target_post_id"`

	Baseline BaselineSnapshot `json:"baseline_data"`

	// Interval is the wall-clock wait between monitoring rounds. Must be
	// positive; the loop refuses to run otherwise.
	Interval time.Duration `json:"monitoring_interval"`

	// Reports is append-only, one entry per completed cycle including the
	// baseline cycle.
	Reports []EffectivenessReport `json:"feedback_reports"`

	InterventionCount int `json:"intervention_count"`

	// InitialStrategy is the strategy used for the first action, retained
	// for lineage in the persisted action log.
	InitialStrategy *StrategyResult `json:"initial_strategy_result,omitempty"`
}

// LastReport returns the most recent report, or nil if none exist yet.
func (t *MonitoringTask) LastReport() *EffectivenessReport {
	if len(t.Reports) == 0 {
		return nil
	}
	return &t.Reports[len(t.Reports)-1]
}
