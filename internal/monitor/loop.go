// Package monitor runs the multi-round monitoring and effectiveness
// feedback loop for active intervention tasks.
package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/opinionbalance/balancer/internal/domain"
	"github.com/opinionbalance/balancer/internal/intervention"
	"github.com/opinionbalance/balancer/internal/logging"
	"github.com/opinionbalance/balancer/internal/report"
	"github.com/opinionbalance/balancer/internal/scoring"
	"github.com/opinionbalance/balancer/internal/store"
)

// Task termination outcomes. Reaching the cycle bound without success is a
// normal termination, not an error.
const (
	OutcomeSuccess   = "success"
	OutcomeMaxCycles = "max_cycles"
	OutcomeCancelled = "cancelled"
)

// Budget for the best-effort final persist after the task context is gone.
const finalizeTimeout = 10 * time.Second

// Measurer produces the current post-level snapshot. Store and classifier
// failures degrade inside the measurer; it never fails a cycle.
type Measurer interface {
	Snapshot(ctx context.Context, postID string) domain.MetricSet
}

// Intervener executes one intervention against the task's target post.
type Intervener interface {
	Execute(ctx context.Context, task *domain.MonitoringTask, alert domain.Alert) (intervention.Result, error)
}

// RewardSink propagates the learning signal at lifecycle termination.
type RewardSink interface {
	Apply(ctx context.Context, rep domain.EffectivenessReport, contentIDs []string) float64
}

// RoundObserver is notified after every recorded round. The monitoring task
// itself is owned by the loop goroutine; observers are how other goroutines
// (the supervisor's status view) see progress without touching the task.
type RoundObserver func(rep domain.EffectivenessReport, interventionCount int)

// LoopMetrics is the telemetry hook for the loop.
type LoopMetrics interface {
	CycleCompleted(d time.Duration)
	TaskCompleted(outcome string, finalScore float64)
}

// Config bounds the loop. Cycles comes from configuration
// (feedback_monitoring_cycles) and is validated positive at startup.
type Config struct {
	Cycles int
}

// Loop drives one monitoring task through baseline, measurement rounds,
// interventions and final persistence.
type Loop struct {
	measurer   Measurer
	builder    *report.Builder
	evaluator  *report.Evaluator
	intervener Intervener
	learning   store.LearningStore
	rewards    RewardSink
	thresholds domain.Thresholds
	cycles     int
	metrics    LoopMetrics
	logger     logging.Logger
}

// NewLoop creates a monitoring loop. metrics may be nil.
func NewLoop(
	cfg Config,
	measurer Measurer,
	builder *report.Builder,
	evaluator *report.Evaluator,
	intervener Intervener,
	learning store.LearningStore,
	rewards RewardSink,
	thresholds domain.Thresholds,
	metrics LoopMetrics,
	logger logging.Logger,
) *Loop {
	return &Loop{
		measurer:   measurer,
		builder:    builder,
		evaluator:  evaluator,
		intervener: intervener,
		learning:   learning,
		rewards:    rewards,
		thresholds: thresholds,
		cycles:     cfg.Cycles,
		metrics:    metrics,
		logger:     logger,
	}
}

// Run executes the full monitoring lifecycle for one task. It returns the
// termination outcome and the final report. Cycles are strictly sequential;
// the only long suspension is the inter-round wait, which observes context
// cancellation promptly. Cancellation does not roll back side effects of
// the round already in progress.
func (l *Loop) Run(ctx context.Context, task *domain.MonitoringTask, observer RoundObserver) (string, *domain.EffectivenessReport, error) {
	if task.Interval <= 0 {
		return "", nil, fmt.Errorf("task %s: monitoring interval must be positive, got %v", task.TaskID, task.Interval)
	}
	if l.cycles <= 0 {
		return "", nil, fmt.Errorf("task %s: monitoring cycle bound must be positive, got %d", task.TaskID, l.cycles)
	}

	start := time.Now()
	log := l.logger.With(
		logging.String("task_id", task.TaskID),
		logging.String("post_id", task.TargetPostID),
		logging.String("action_id", task.ActionID))

	baseline := domain.MetricSet{
		ExtremismScore: scoring.Normalize(task.Baseline.ViewpointExtremism),
		SentimentScore: scoring.Normalize(task.Baseline.SentimentScore),
	}
	baseline.Level = scoring.ExtremismLabel(baseline.ExtremismScore)

	log.Info("monitoring lifecycle started",
		logging.Float64("baseline_extremism", baseline.ExtremismScore),
		logging.Float64("baseline_sentiment", baseline.SentimentScore),
		logging.Duration("interval", task.Interval),
		logging.Int("max_cycles", l.cycles))

	// Round 0: the baseline measurement is the current measurement. This
	// establishes the report history and may trigger an immediate
	// intervention; it does not count against the cycle bound.
	outcome := ""
	if success := l.runRound(ctx, task, baseline, baseline, 0, observer, log); success {
		outcome = OutcomeSuccess
	}

	for round := 1; outcome == "" && round <= l.cycles; round++ {
		if cancelled := l.wait(ctx, task.Interval); cancelled {
			outcome = OutcomeCancelled
			break
		}

		current := l.measurer.Snapshot(ctx, task.TargetPostID)
		if success := l.runRound(ctx, task, baseline, current, round, observer, log); success {
			outcome = OutcomeSuccess
		}

		if ctx.Err() != nil && outcome == "" {
			outcome = OutcomeCancelled
		}
	}
	if outcome == "" {
		outcome = OutcomeMaxCycles
	}

	final := l.finalize(task, outcome, time.Since(start), log)

	log.Info("monitoring lifecycle finished",
		logging.String("outcome", outcome),
		logging.Int("rounds", len(task.Reports)),
		logging.Int("interventions", task.InterventionCount),
		logging.Duration("elapsed", time.Since(start)))

	return outcome, final, nil
}

// runRound executes one measure/report/evaluate/intervene cycle and reports
// whether the success criteria were met. Any failure inside the round is
// logged and absorbed so a single bad cycle cannot kill a multi-hour task.
func (l *Loop) runRound(ctx context.Context, task *domain.MonitoringTask, baseline, current domain.MetricSet, round int, observer RoundObserver, log logging.Logger) (success bool) {
	roundStart := time.Now()
	defer func() {
		if r := recover(); r != nil {
			log.Error("monitoring round panicked", logging.Int("round", round), logging.Any("panic", r))
			success = false
		}
		if l.metrics != nil {
			l.metrics.CycleCompleted(time.Since(roundStart))
		}
	}()

	reportType := domain.ReportTypeBaseline
	if round > 0 {
		reportType = domain.RoundReportType(round)
	}

	rep := l.builder.Build(baseline, current, task.TargetPostID, task.ActionID, reportType)
	task.Reports = append(task.Reports, rep)
	if observer != nil {
		defer func() { observer(rep, task.InterventionCount) }()
	}

	if l.evaluator.IsSuccess(rep, l.thresholds.Success) {
		log.Info("success criteria met", logging.Int("round", round),
			logging.Float64("overall_score", rep.Assessment.OverallScore))
		return true
	}

	if rep.Assessment.NeedsIntervention {
		alert := intervention.NewAlert(rep)
		alert.TriggerContent = task.Baseline.CoreViewpoint
		result, err := l.intervener.Execute(ctx, task, alert)
		switch {
		case err != nil:
			// Intervention failure is logged but never aborts monitoring.
			log.Warn("intervention failed", logging.Int("round", round), logging.Err(err))
		case !result.Success:
			log.Warn("intervention declined or posted nothing", logging.Int("round", round))
		default:
			log.Info("intervention applied",
				logging.Int("round", round),
				logging.Int("leader_comments", len(result.LeaderCommentIDs)),
				logging.Int("amplifier_comments", result.AmplifierComments),
				logging.Float64("base_effectiveness", result.BaseEffectiveness))
		}
	} else {
		log.Info("no intervention needed this round", logging.Int("round", round))
	}

	return false
}

// wait sleeps for one monitoring interval, returning true if the context
// was cancelled during the wait.
func (l *Loop) wait(ctx context.Context, interval time.Duration) bool {
	timer := time.NewTimer(interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return true
	case <-timer.C:
		return false
	}
}

// finalize persists exactly one action log record and propagates the reward.
// The effectiveness score written is always the final monitoring report's
// overall score, never the transient post-intervention heuristic. Runs on a
// fresh context so a cancelled task still persists best-effort.
func (l *Loop) finalize(task *domain.MonitoringTask, outcome string, elapsed time.Duration, log logging.Logger) *domain.EffectivenessReport {
	final := task.LastReport()
	if final == nil {
		log.Warn("no reports recorded, skipping final persistence")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), finalizeTimeout)
	defer cancel()

	var contentIDs []string
	if task.InitialStrategy != nil {
		contentIDs = task.InitialStrategy.Strategy.ContentIDs
	}
	rewardValue := l.rewards.Apply(ctx, *final, contentIDs)

	record := &domain.ActionLogRecord{
		ActionID:           task.ActionID,
		Timestamp:          time.Now().UTC(),
		ExecutionTime:      elapsed.Seconds(),
		Success:            outcome == OutcomeSuccess,
		EffectivenessScore: final.Assessment.OverallScore,
		SituationContext: map[string]any{
			"post_id":            task.TargetPostID,
			"core_viewpoint":     task.Baseline.CoreViewpoint,
			"baseline_extremism": final.Baseline.ExtremismScore,
			"baseline_sentiment": final.Baseline.SentimentScore,
		},
		StrategicDecision: strategicDecision(task),
		ExecutionDetails: map[string]any{
			"outcome":            outcome,
			"rounds":             len(task.Reports),
			"intervention_count": task.InterventionCount,
		},
		LessonsLearned: map[string]any{
			"reward":           rewardValue,
			"extremism_change": final.Change.ExtremismChange,
			"sentiment_change": final.Change.SentimentChange,
		},
	}

	if err := l.learning.PersistActionLog(ctx, record); err != nil {
		log.Error("final action log persistence failed", logging.Err(err))
	}

	if l.metrics != nil {
		l.metrics.TaskCompleted(outcome, final.Assessment.OverallScore)
	}

	return final
}

func strategicDecision(task *domain.MonitoringTask) map[string]any {
	if task.InitialStrategy == nil {
		return nil
	}
	return map[string]any{
		"strategy_name":  task.InitialStrategy.Strategy.Name,
		"core_viewpoint": task.InitialStrategy.Strategy.CoreViewpoint,
	}
}
