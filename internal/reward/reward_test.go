package reward

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opinionbalance/balancer/internal/domain"
	"github.com/opinionbalance/balancer/internal/logging"
)

func TestCompute(t *testing.T) {
	cfg := DefaultConfig()

	testCases := []struct {
		name            string
		extremismChange float64
		sentimentChange float64
		expected        float64
	}{
		{name: "improvement on both axes", extremismChange: 0.3, sentimentChange: 0.2, expected: 0.5},
		{name: "regression on both axes", extremismChange: -0.3, sentimentChange: -0.2, expected: -0.5},
		{name: "no change", extremismChange: 0, sentimentChange: 0, expected: 0},
		{name: "extremism down sentiment down", extremismChange: 0.4, sentimentChange: -0.1, expected: 0.3},
		{name: "extremism up sentiment up", extremismChange: -0.4, sentimentChange: 0.1, expected: -0.3},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, Compute(cfg, tc.extremismChange, tc.sentimentChange), 1e-9)
		})
	}
}

func TestComputeWeights(t *testing.T) {
	cfg := Config{Lambda1: 2.0, Lambda2: 0.5}

	// reward = -λ1*(-extremismChange) + λ2*sentimentChange
	assert.InDelta(t, 2.0*0.3+0.5*0.2, Compute(cfg, 0.3, 0.2), 1e-9)
}

type recordingRefiner struct {
	reward     float64
	overall    float64
	contentIDs []string
	calls      int
	err        error
}

func (r *recordingRefiner) Refine(_ context.Context, reward, overallScore float64, contentIDs []string) error {
	r.calls++
	r.reward = reward
	r.overall = overallScore
	r.contentIDs = contentIDs
	return r.err
}

func finalReport(extremismChange, sentimentChange, overall float64) domain.EffectivenessReport {
	return domain.EffectivenessReport{
		PostID: "post-1",
		Change: domain.ChangeMetrics{
			ExtremismChange: extremismChange,
			SentimentChange: sentimentChange,
		},
		Assessment: domain.Assessment{OverallScore: overall},
	}
}

func TestUpdaterApply(t *testing.T) {
	refiner := &recordingRefiner{}
	u := NewUpdater(DefaultConfig(), refiner, logging.Nop())

	value := u.Apply(context.Background(), finalReport(0.3, 0.2, 0.94), []string{"c1", "c2"})

	require.Equal(t, 1, refiner.calls)
	assert.InDelta(t, 0.5, value, 1e-9)
	assert.InDelta(t, 0.5, refiner.reward, 1e-9)
	assert.InDelta(t, 0.94, refiner.overall, 1e-9)
	assert.Equal(t, []string{"c1", "c2"}, refiner.contentIDs)
}

func TestUpdaterApplySwallowsRefinerError(t *testing.T) {
	refiner := &recordingRefiner{err: errors.New("refinement service down")}
	u := NewUpdater(DefaultConfig(), refiner, logging.Nop())

	value := u.Apply(context.Background(), finalReport(-0.1, 0.0, 0.2), nil)

	assert.Equal(t, 1, refiner.calls)
	assert.InDelta(t, -0.1, value, 1e-9)
}

func TestUpdaterNilRefiner(t *testing.T) {
	u := NewUpdater(DefaultConfig(), nil, logging.Nop())
	assert.InDelta(t, 0.5, u.Apply(context.Background(), finalReport(0.3, 0.2, 0.9), nil), 1e-9)
}

func TestUpdaterZeroConfigFallsBackToDefaults(t *testing.T) {
	u := NewUpdater(Config{}, nil, logging.Nop())
	assert.InDelta(t, 0.5, u.Apply(context.Background(), finalReport(0.3, 0.2, 0.9), nil), 1e-9)
}
