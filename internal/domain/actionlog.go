package domain

import "time"

// ActionLogRecord is the learning artifact persisted exactly once per
// monitoring lifecycle termination. EffectivenessScore is always the final
// monitoring cycle's overall score, never the transient heuristic computed
// right after the first intervention. Records are upserted by ActionID so
// idempotent re-runs are safe, and never mutated after the write.
type ActionLogRecord struct {
	ActionID           string         `json:"action_id"`
	Timestamp          time.Time      `json:"timestamp"`
	ExecutionTime      float64        `json:"execution_time"`
	Success            bool           `json:"success"`
	EffectivenessScore float64        `json:"effectiveness_score"`
	SituationContext   map[string]any `json:"situation_context,omitempty"`
	StrategicDecision  map[string]any `json:"strategic_decision,omitempty"`
	ExecutionDetails   map[string]any `json:"execution_details,omitempty"`
	LessonsLearned     map[string]any `json:"lessons_learned,omitempty"`
}
