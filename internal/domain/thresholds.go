package domain

import "fmt"

// ThresholdSet holds an extremism/sentiment threshold pair on the [0,1]
// scale. Both sides of every comparison in the service are normalized to
// [0,1] before being compared to these values.
type ThresholdSet struct {
	Extremism float64 `yaml:"extremism_threshold" json:"extremism_threshold"`
	Sentiment float64 `yaml:"sentiment_threshold" json:"sentiment_threshold"`
}

// SuccessThresholds extends a threshold pair with the minimum overall
// effectiveness score required to declare success.
type SuccessThresholds struct {
	OverallScore float64 `yaml:"overall_score_threshold" json:"overall_score_threshold"`
	Extremism    float64 `yaml:"extremism_threshold"     json:"extremism_threshold"`
	Sentiment    float64 `yaml:"sentiment_threshold"     json:"sentiment_threshold"`
}

// Thresholds is the process-wide threshold configuration, read-only after
// startup.
type Thresholds struct {
	InitialIntervention   ThresholdSet      `yaml:"initial_intervention"   json:"initial_intervention"`
	SecondaryIntervention ThresholdSet      `yaml:"secondary_intervention" json:"secondary_intervention"`
	Success               SuccessThresholds `yaml:"success_criteria"       json:"success_criteria"`
}

// Validate checks that every threshold is inside [0,1].
func (t Thresholds) Validate() error {
	checks := []struct {
		name  string
		value float64
	}{
		{"initial_intervention.extremism_threshold", t.InitialIntervention.Extremism},
		{"initial_intervention.sentiment_threshold", t.InitialIntervention.Sentiment},
		{"secondary_intervention.extremism_threshold", t.SecondaryIntervention.Extremism},
		{"secondary_intervention.sentiment_threshold", t.SecondaryIntervention.Sentiment},
		{"success_criteria.overall_score_threshold", t.Success.OverallScore},
		{"success_criteria.extremism_threshold", t.Success.Extremism},
		{"success_criteria.sentiment_threshold", t.Success.Sentiment},
	}
	for _, c := range checks {
		if c.value < 0 || c.value > 1 {
			return fmt.Errorf("threshold %s must be in [0,1], got %v", c.name, c.value)
		}
	}
	return nil
}
