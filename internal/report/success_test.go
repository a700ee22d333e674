package report

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opinionbalance/balancer/internal/domain"
	"github.com/opinionbalance/balancer/internal/logging"
)

func reportWith(overall, extremism, sentiment float64) domain.EffectivenessReport {
	return domain.EffectivenessReport{
		PostID:     "post-1",
		ReportType: domain.RoundReportType(1),
		Current:    domain.MetricSet{ExtremismScore: extremism, SentimentScore: sentiment},
		Assessment: domain.Assessment{OverallScore: overall},
	}
}

func TestIsSuccess(t *testing.T) {
	criteria := domain.SuccessThresholds{
		OverallScore: 0.6,
		Extremism:    0.4,
		Sentiment:    0.5,
	}

	testCases := []struct {
		name     string
		overall  float64
		current  [2]float64 // extremism, sentiment
		expected bool
	}{
		{name: "all criteria met", overall: 0.7, current: [2]float64{0.3, 0.6}, expected: true},
		{name: "exactly at thresholds", overall: 0.6, current: [2]float64{0.4, 0.5}, expected: true},
		{name: "overall score too low", overall: 0.5, current: [2]float64{0.3, 0.6}, expected: false},
		{name: "extremism too high", overall: 0.7, current: [2]float64{0.5, 0.6}, expected: false},
		{name: "sentiment too low", overall: 0.7, current: [2]float64{0.3, 0.4}, expected: false},
		{name: "everything failing", overall: 0.1, current: [2]float64{0.9, 0.1}, expected: false},
	}

	e := NewEvaluator(logging.Nop())
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rep := reportWith(tc.overall, tc.current[0], tc.current[1])
			assert.Equal(t, tc.expected, e.IsSuccess(rep, criteria))
		})
	}
}

func TestIsSuccessMonotonicInOverallScore(t *testing.T) {
	criteria := domain.SuccessThresholds{OverallScore: 0.6, Extremism: 0.4, Sentiment: 0.5}
	e := NewEvaluator(logging.Nop())

	// Once a report with a given score succeeds, any higher score with the
	// same current state must also succeed.
	succeeded := false
	for _, overall := range []float64{0.0, 0.2, 0.4, 0.6, 0.8, 1.0} {
		ok := e.IsSuccess(reportWith(overall, 0.2, 0.8), criteria)
		if succeeded {
			assert.True(t, ok, "overall=%v", overall)
		}
		succeeded = succeeded || ok
	}
	assert.True(t, succeeded)
}
