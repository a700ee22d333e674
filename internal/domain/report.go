package domain

import (
	"fmt"
	"time"
)

// Report types. Round reports are named monitoring_round_N.
const (
	ReportTypeBaseline = "baseline"

	reportTypeRoundFmt = "monitoring_round_%d"
)

// RoundReportType returns the report type label for a monitoring round.
func RoundReportType(round int) string {
	return fmt.Sprintf(reportTypeRoundFmt, round)
}

// MetricSet holds a post-level measurement. Scores are always normalized to
// [0,1] before they are stored here.
type MetricSet struct {
	ExtremismScore float64 `json:"extremism_score"`
	SentimentScore float64 `json:"sentiment_score"`
	Level          string  `json:"level"`
}

// ChangeMetrics holds the baseline-to-current deltas. Positive values mean
// improvement for both fields: extremism_change is baseline minus current
// (lower extremism is better), sentiment_change is current minus baseline.
type ChangeMetrics struct {
	ExtremismChange    float64 `json:"extremism_change"`
	SentimentChange    float64 `json:"sentiment_change"`
	ExtremismChangePct float64 `json:"extremism_change_pct"`
	SentimentChangePct float64 `json:"sentiment_change_pct"`
}

// Assessment is the effectiveness verdict attached to a report.
type Assessment struct {
	OverallScore        float64  `json:"overall_score"`
	NeedsIntervention   bool     `json:"needs_intervention"`
	InterventionReasons []string `json:"intervention_reasons,omitempty"`
}

// EffectivenessReport is an immutable snapshot comparison produced once per
// monitoring cycle.
type EffectivenessReport struct {
	ReportID   string        `json:"report_id"`
	PostID     string        `json:"post_id"`
	ActionID   string        `json:"action_id"`
	ReportType string        `json:"report_type"`
	Timestamp  time.Time     `json:"timestamp"`
	Baseline   MetricSet     `json:"baseline_metrics"`
	Current    MetricSet     `json:"current_metrics"`
	Change     ChangeMetrics `json:"change_metrics"`
	Assessment Assessment    `json:"effectiveness_assessment"`
}
