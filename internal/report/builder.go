// Package report builds effectiveness reports from baseline/current
// snapshots and evaluates success criteria against them.
package report

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/opinionbalance/balancer/internal/domain"
	"github.com/opinionbalance/balancer/internal/logging"
	"github.com/opinionbalance/balancer/internal/scoring"
)

// Effectiveness weights: de-escalation is prioritized over mood, so the
// extremism component dominates.
const (
	extremismWeight = 0.7
	sentimentWeight = 0.3

	// changeScale maps a change of 0.5 (half the score range) to a full
	// component score.
	changeScale = 0.5

	// neutralScore is the fallback when a computation degenerates.
	neutralScore = 0.5
)

// Trend thresholds: when both changes fall below these, the post is treated
// as showing negligible improvement.
const (
	minExtremismImprovement = 0.05
	minSentimentImprovement = 0.1
)

// Builder produces effectiveness reports.
type Builder struct {
	thresholds domain.Thresholds
	logger     logging.Logger
}

// NewBuilder creates a report builder.
func NewBuilder(thresholds domain.Thresholds, logger logging.Logger) *Builder {
	return &Builder{thresholds: thresholds, logger: logger}
}

// Build compares a baseline snapshot against the current snapshot and
// produces an immutable report. Both inputs are normalized before any
// comparison. reportType is domain.ReportTypeBaseline or a round label.
func (b *Builder) Build(baseline, current domain.MetricSet, postID, actionID, reportType string) domain.EffectivenessReport {
	baseline = normalizeMetrics(baseline)
	current = normalizeMetrics(current)

	change := changeMetrics(baseline, current)
	overall := effectivenessScore(change)
	needs, reasons := b.interventionCheck(current, change)

	rep := domain.EffectivenessReport{
		ReportID:   uuid.NewString(),
		PostID:     postID,
		ActionID:   actionID,
		ReportType: reportType,
		Timestamp:  time.Now().UTC(),
		Baseline:   baseline,
		Current:    current,
		Change:     change,
		Assessment: domain.Assessment{
			OverallScore:        overall,
			NeedsIntervention:   needs,
			InterventionReasons: reasons,
		},
	}

	b.logger.Info("effectiveness report built",
		logging.String("post_id", postID),
		logging.String("report_type", reportType),
		logging.Float64("extremism_change", change.ExtremismChange),
		logging.Float64("sentiment_change", change.SentimentChange),
		logging.Float64("overall_score", overall),
		logging.Bool("needs_intervention", needs))

	return rep
}

func normalizeMetrics(m domain.MetricSet) domain.MetricSet {
	m.ExtremismScore = scoring.Normalize(m.ExtremismScore)
	m.SentimentScore = scoring.Normalize(m.SentimentScore)
	if m.Level == "" {
		m.Level = scoring.ExtremismLabel(m.ExtremismScore)
	}
	return m
}

// changeMetrics computes the improvement deltas. Positive extremism change
// means extremism dropped; positive sentiment change means sentiment rose.
func changeMetrics(baseline, current domain.MetricSet) domain.ChangeMetrics {
	change := domain.ChangeMetrics{
		ExtremismChange: baseline.ExtremismScore - current.ExtremismScore,
		SentimentChange: current.SentimentScore - baseline.SentimentScore,
	}
	if baseline.ExtremismScore > 0 {
		change.ExtremismChangePct = change.ExtremismChange / baseline.ExtremismScore * 100
	}
	if baseline.SentimentScore > 0 {
		change.SentimentChangePct = change.SentimentChange / baseline.SentimentScore * 100
	}
	return change
}

// effectivenessScore combines the two change components 0.7/0.3. An
// improving component maps change/0.5 onto [0,1]; a worsening component
// starts from 0.5 and loses the regression amount. Degenerate inputs fall
// back to the neutral score.
func effectivenessScore(change domain.ChangeMetrics) float64 {
	if math.IsNaN(change.ExtremismChange) || math.IsNaN(change.SentimentChange) {
		return neutralScore
	}

	score := extremismWeight*component(change.ExtremismChange) +
		sentimentWeight*component(change.SentimentChange)
	if math.IsNaN(score) {
		return neutralScore
	}
	return scoring.Clamp01(score)
}

func component(change float64) float64 {
	if change > 0 {
		return scoring.Clamp01(change / changeScale)
	}
	return scoring.Clamp01(neutralScore + change)
}

// interventionCheck decides whether the post still needs intervention:
// either the absolute state is bad against the secondary thresholds, or the
// trend shows negligible improvement. Every triggering condition is reported
// with its numeric value.
func (b *Builder) interventionCheck(current domain.MetricSet, change domain.ChangeMetrics) (bool, []string) {
	secondary := b.thresholds.SecondaryIntervention
	var reasons []string

	if current.ExtremismScore > secondary.Extremism {
		reasons = append(reasons, fmt.Sprintf(
			"extremism %.3f above secondary threshold %.3f",
			current.ExtremismScore, secondary.Extremism))
	}
	if current.SentimentScore < secondary.Sentiment {
		reasons = append(reasons, fmt.Sprintf(
			"sentiment %.3f below secondary threshold %.3f",
			current.SentimentScore, secondary.Sentiment))
	}
	if change.ExtremismChange < minExtremismImprovement && change.SentimentChange < minSentimentImprovement {
		reasons = append(reasons, fmt.Sprintf(
			"negligible improvement: extremism change %.3f < %.3f and sentiment change %.3f < %.3f",
			change.ExtremismChange, minExtremismImprovement,
			change.SentimentChange, minSentimentImprovement))
	}

	return len(reasons) > 0, reasons
}
