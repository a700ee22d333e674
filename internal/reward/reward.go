// Package reward computes the scalar learning signal derived from a
// monitoring lifecycle and hands it to the knowledge refinement boundary.
package reward

import (
	"context"

	"github.com/opinionbalance/balancer/internal/domain"
	"github.com/opinionbalance/balancer/internal/logging"
)

// Config holds the reward weights. Both default to 1.0: a strict
// de-escalation-and-positivity objective.
type Config struct {
	Lambda1 float64 `yaml:"lambda1"`
	Lambda2 float64 `yaml:"lambda2"`
}

// DefaultConfig returns the default reward weights.
func DefaultConfig() Config {
	return Config{Lambda1: 1.0, Lambda2: 1.0}
}

// Refiner is the external knowledge-refinement boundary. It adjusts the
// scoring of the content elements used in the most recent intervention.
type Refiner interface {
	Refine(ctx context.Context, reward, overallScore float64, contentIDs []string) error
}

// Compute derives the reward from the report change convention: with
// Δv = current − baseline extremism (the negative of extremismChange) and
// Δe = sentimentChange, reward = −λ1·Δv + λ2·Δe. The reward is positive
// when extremism dropped and sentiment rose.
func Compute(cfg Config, extremismChange, sentimentChange float64) float64 {
	deltaV := -extremismChange
	deltaE := sentimentChange
	return -cfg.Lambda1*deltaV + cfg.Lambda2*deltaE
}

// Updater computes rewards at lifecycle termination and dispatches them to
// the refiner, best-effort.
type Updater struct {
	cfg     Config
	refiner Refiner
	logger  logging.Logger
}

// NewUpdater creates a reward updater. refiner may be nil, in which case
// rewards are computed and logged but not dispatched.
func NewUpdater(cfg Config, refiner Refiner, logger logging.Logger) *Updater {
	if cfg.Lambda1 == 0 && cfg.Lambda2 == 0 {
		cfg = DefaultConfig()
	}
	return &Updater{cfg: cfg, refiner: refiner, logger: logger}
}

// Apply computes the reward from the final report and propagates it together
// with the content identifiers used by the last intervention. Refiner
// failures are logged, never surfaced: a lost learning update must not fail
// lifecycle termination.
func (u *Updater) Apply(ctx context.Context, rep domain.EffectivenessReport, contentIDs []string) float64 {
	value := Compute(u.cfg, rep.Change.ExtremismChange, rep.Change.SentimentChange)

	u.logger.Info("reward computed",
		logging.String("post_id", rep.PostID),
		logging.Float64("reward", value),
		logging.Float64("extremism_change", rep.Change.ExtremismChange),
		logging.Float64("sentiment_change", rep.Change.SentimentChange),
		logging.Int("content_ids", len(contentIDs)))

	if u.refiner != nil {
		if err := u.refiner.Refine(ctx, value, rep.Assessment.OverallScore, contentIDs); err != nil {
			u.logger.Warn("knowledge refinement failed", logging.Err(err))
		}
	}
	return value
}
