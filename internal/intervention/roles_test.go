package intervention

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opinionbalance/balancer/internal/domain"
)

func TestAmplifierTagCycles(t *testing.T) {
	assert.Equal(t, "casual", AmplifierTag(0))
	assert.Equal(t, "curious", AmplifierTag(1))
	assert.Equal(t, "supportive", AmplifierTag(2))
	assert.Equal(t, "casual", AmplifierTag(3))
	assert.Equal(t, "curious", AmplifierTag(7))
}

func TestStyleFor(t *testing.T) {
	leader := StyleFor(Leader())
	assert.Equal(t, "measured", leader.Tone)
	assert.True(t, leader.CitesEvidence)

	amplifier := StyleFor(Amplifier("curious"))
	assert.Equal(t, "curious", amplifier.Tone)
	assert.False(t, amplifier.CitesEvidence)

	untagged := StyleFor(Amplifier(""))
	assert.Equal(t, "casual", untagged.Tone)
}

func TestNewAlertFromReport(t *testing.T) {
	rep := domain.EffectivenessReport{
		PostID: "post-1",
		Current: domain.MetricSet{
			ExtremismScore: 0.75,
			SentimentScore: 0.2,
			Level:          "high",
		},
		Assessment: domain.Assessment{
			InterventionReasons: []string{"extremism 0.750 above secondary threshold 0.600"},
		},
	}

	alert := NewAlert(rep)

	assert.NotEmpty(t, alert.AlertID)
	assert.Equal(t, "post-1", alert.PostID)
	assert.Equal(t, 3, alert.Level)
	assert.Contains(t, alert.Description, "post-1")
	assert.Equal(t, rep.Assessment.InterventionReasons, alert.Reasons)
}

func TestStaticStrategyProvider(t *testing.T) {
	p := StaticStrategyProvider{}

	low, err := p.CreateStrategy(context.Background(), domain.Alert{Level: 1})
	require.NoError(t, err)
	assert.True(t, low.Success)
	assert.Equal(t, "gentle_reframe", low.Strategy.Name)

	high, err := p.CreateStrategy(context.Background(), domain.Alert{Level: 4})
	require.NoError(t, err)
	assert.Equal(t, "evidence_counter", high.Strategy.Name)
}

func TestTemplateSynthesizer(t *testing.T) {
	s := TemplateSynthesizer{}
	strategy := domain.Strategy{
		CoreViewpoint: "more context helps",
		Guidance:      "cite the underlying report",
	}

	leaderText, err := s.Compose(context.Background(), Leader(), StyleFor(Leader()), strategy, "")
	require.NoError(t, err)
	assert.Contains(t, leaderText, "more context helps")
	assert.Contains(t, leaderText, "cite the underlying report")

	for i := range 3 {
		role := Amplifier(AmplifierTag(i))
		text, err := s.Compose(context.Background(), role, StyleFor(role), strategy, "")
		require.NoError(t, err)
		assert.NotEmpty(t, text)
	}
}
