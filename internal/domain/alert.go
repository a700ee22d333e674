package domain

import "time"

// Alert levels span 0 (calm) to 4 (critical). They map to [0,1] scores via
// scoring.NormalizeLevel.
const (
	AlertLevelMin = 0
	AlertLevelMax = 4
)

// Alert is the typed trigger handed to the strategy provider when a report
// signals that intervention is needed. It is constructed once at the boundary
// and never passed around as an untyped map.
type Alert struct {
	AlertID        string    `json:"alert_id"`
	PostID         string    `json:"post_id"`
	Level          int       `json:"level"`
	Description    string    `json:"description"`
	TriggerContent string    `json:"trigger_content,omitempty"`
	Reasons        []string  `json:"reasons,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Strategy describes how synthesized responses should argue.
type Strategy struct {
	Name          string   `json:"name"`
	CoreViewpoint string   `json:"core_viewpoint"`
	Guidance      string   `json:"guidance"`
	// ContentIDs identifies the knowledge elements the strategy drew on;
	// they are handed back to the knowledge refiner with the reward.
	ContentIDs []string `json:"content_ids,omitempty"`
}

// StrategyResult is the strategy provider's response. Provider failures are
// reported as Success=false, never as a panic.
type StrategyResult struct {
	Success           bool     `json:"success"`
	Strategy          Strategy `json:"strategy"`
	AgentInstructions string   `json:"agent_instructions,omitempty"`
}
