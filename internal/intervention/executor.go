package intervention

import (
	"context"
	"fmt"

	"github.com/opinionbalance/balancer/internal/domain"
	"github.com/opinionbalance/balancer/internal/logging"
	"github.com/opinionbalance/balancer/internal/retry"
	"github.com/opinionbalance/balancer/internal/store"
)

// Each intervention posts two leader comments.
const leaderCommentCount = 2

const defaultAmplifierCount = 3

// StrategyProvider is the external strategy boundary. Providers report
// failure as Success=false; a transport error is treated the same way by the
// executor.
type StrategyProvider interface {
	CreateStrategy(ctx context.Context, alert domain.Alert) (domain.StrategyResult, error)
}

// Synthesizer turns a strategy and role into response text. The actual LLM
// prompt templates live behind this boundary.
type Synthesizer interface {
	Compose(ctx context.Context, role AgentRole, style StyleConfig, strategy domain.Strategy, trigger string) (string, error)
}

// Metrics is the telemetry hook the executor reports to.
type Metrics interface {
	InterventionExecuted(success bool)
}

// Result summarizes one intervention run. BaseEffectiveness is a transient
// progress heuristic derived from how many responses were posted; it is
// never persisted as the learning signal.
type Result struct {
	Success           bool
	StrategyUsed      domain.StrategyResult
	LeaderCommentIDs  []string
	AmplifierComments int
	BaseEffectiveness float64
}

// Executor runs interventions: it obtains a strategy, posts leader and
// amplifier comments, and records engagement side effects. Store write
// failures skip the individual side effect and are logged; monitoring
// continues regardless.
type Executor struct {
	posts          store.PostStore
	strategies     StrategyProvider
	synth          Synthesizer
	amplifierCount int
	authorPrefix   string
	retryCfg       retry.Config
	metrics        Metrics
	logger         logging.Logger
}

// ExecutorOption configures optional executor collaborators.
type ExecutorOption func(*Executor)

// WithAmplifierCount sets how many amplifier responses each intervention
// posts.
func WithAmplifierCount(n int) ExecutorOption {
	return func(e *Executor) {
		if n > 0 {
			e.amplifierCount = n
		}
	}
}

// WithMetrics attaches intervention metrics.
func WithMetrics(m Metrics) ExecutorOption {
	return func(e *Executor) { e.metrics = m }
}

// NewExecutor creates an intervention executor.
func NewExecutor(posts store.PostStore, strategies StrategyProvider, synth Synthesizer, logger logging.Logger, opts ...ExecutorOption) *Executor {
	e := &Executor{
		posts:          posts,
		strategies:     strategies,
		synth:          synth,
		amplifierCount: defaultAmplifierCount,
		authorPrefix:   "balancer",
		retryCfg:       retry.DefaultConfig(),
		logger:         logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs one intervention against the task's target post. It mutates
// task.InterventionCount and retains the first strategy for lineage. A
// strategy-provider failure yields Result.Success=false without side
// effects; partial posting failures degrade the result but do not error.
func (e *Executor) Execute(ctx context.Context, task *domain.MonitoringTask, alert domain.Alert) (Result, error) {
	strategyResult, err := e.createStrategy(ctx, alert)
	if err != nil || !strategyResult.Success {
		if err != nil {
			e.logger.Warn("strategy creation failed",
				logging.String("post_id", alert.PostID), logging.Err(err))
		} else {
			e.logger.Warn("strategy provider declined",
				logging.String("post_id", alert.PostID))
		}
		if e.metrics != nil {
			e.metrics.InterventionExecuted(false)
		}
		return Result{Success: false}, nil
	}

	if task.InitialStrategy == nil {
		task.InitialStrategy = &strategyResult
	}

	result := Result{Success: true, StrategyUsed: strategyResult}
	strategy := strategyResult.Strategy

	// Leader comments anchor the counter-viewpoint.
	for i := 0; i < leaderCommentCount; i++ {
		role := Leader()
		text, err := e.synth.Compose(ctx, role, StyleFor(role), strategy, alert.TriggerContent)
		if err != nil {
			e.logger.Warn("leader comment synthesis failed",
				logging.String("post_id", alert.PostID), logging.Err(err))
			continue
		}
		id, err := e.postComment(ctx, task.TargetPostID, fmt.Sprintf("%s-leader-%d", e.authorPrefix, i+1), text)
		if err != nil {
			e.logger.Warn("leader comment insert failed",
				logging.String("post_id", alert.PostID), logging.Err(err))
			continue
		}
		result.LeaderCommentIDs = append(result.LeaderCommentIDs, id)
	}

	// Amplifier responses back the leaders up and like them.
	for i := 0; i < e.amplifierCount; i++ {
		role := Amplifier(AmplifierTag(i))
		text, err := e.synth.Compose(ctx, role, StyleFor(role), strategy, alert.TriggerContent)
		if err != nil {
			e.logger.Warn("amplifier synthesis failed",
				logging.String("post_id", alert.PostID), logging.Err(err))
			continue
		}
		if _, err := e.postComment(ctx, task.TargetPostID, fmt.Sprintf("%s-amplifier-%d", e.authorPrefix, i+1), text); err != nil {
			e.logger.Warn("amplifier comment insert failed",
				logging.String("post_id", alert.PostID), logging.Err(err))
			continue
		}
		result.AmplifierComments++

		for _, leaderID := range result.LeaderCommentIDs {
			if err := e.posts.UpdateCommentLikes(ctx, leaderID, 1); err != nil {
				e.logger.Warn("leader like failed",
					logging.String("comment_id", leaderID), logging.Err(err))
			}
		}
	}

	posted := len(result.LeaderCommentIDs) + result.AmplifierComments
	if posted > 0 {
		// One aggregate counter write per cycle; likes from amplifiers,
		// comment count from everything posted.
		if err := e.posts.UpdatePostCounters(ctx, task.TargetPostID, result.AmplifierComments, posted); err != nil {
			e.logger.Warn("post counter update failed",
				logging.String("post_id", task.TargetPostID), logging.Err(err))
		}
	}

	task.InterventionCount++
	result.BaseEffectiveness = float64(posted) / float64(leaderCommentCount+e.amplifierCount)
	result.Success = posted > 0

	if e.metrics != nil {
		e.metrics.InterventionExecuted(result.Success)
	}

	e.logger.Info("intervention executed",
		logging.String("post_id", task.TargetPostID),
		logging.String("strategy", strategy.Name),
		logging.Int("leader_comments", len(result.LeaderCommentIDs)),
		logging.Int("amplifier_comments", result.AmplifierComments),
		logging.Int("intervention_count", task.InterventionCount),
		logging.Float64("base_effectiveness", result.BaseEffectiveness))

	return result, nil
}

func (e *Executor) createStrategy(ctx context.Context, alert domain.Alert) (domain.StrategyResult, error) {
	var result domain.StrategyResult
	err := retry.Do(ctx, e.retryCfg, func() error {
		r, err := e.strategies.CreateStrategy(ctx, alert)
		if err != nil {
			return err
		}
		result = r
		return nil
	})
	return result, err
}

func (e *Executor) postComment(ctx context.Context, postID, authorID, text string) (string, error) {
	var id string
	err := retry.Do(ctx, e.retryCfg, func() error {
		commentID, err := e.posts.InsertComment(ctx, postID, authorID, text)
		if err != nil {
			return err
		}
		id = commentID
		return nil
	})
	return id, err
}
