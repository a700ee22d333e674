package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	testCases := []struct {
		name     string
		input    float64
		expected float64
	}{
		{name: "already normalized passes through", input: 0.42, expected: 0.42},
		{name: "exactly one passes through", input: 1.0, expected: 1.0},
		{name: "zero passes through", input: 0.0, expected: 0.0},
		{name: "raw scale divided by ten", input: 8.0, expected: 0.8},
		{name: "raw scale maximum", input: 10.0, expected: 1.0},
		{name: "above raw scale clamps to one", input: 15.0, expected: 1.0},
		{name: "negative clamps to zero", input: -0.5, expected: 0.0},
		{name: "nan maps to zero", input: math.NaN(), expected: 0.0},
		{name: "infinity maps to zero", input: math.Inf(1), expected: 0.0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.InDelta(t, tc.expected, Normalize(tc.input), 1e-9)
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	for _, raw := range []float64{0.0, 0.3, 0.99, 1.0, 2.5, 8.0, 10.0, 42.0, -3.0} {
		once := Normalize(raw)
		twice := Normalize(once)
		assert.InDelta(t, once, twice, 1e-9, "raw=%v", raw)
	}
}

func TestNormalizeLevel(t *testing.T) {
	assert.InDelta(t, 0.0, NormalizeLevel(0), 1e-9)
	assert.InDelta(t, 0.5, NormalizeLevel(2), 1e-9)
	assert.InDelta(t, 1.0, NormalizeLevel(4), 1e-9)

	// Out-of-range levels clamp instead of dividing by ten.
	assert.InDelta(t, 1.0, NormalizeLevel(7), 1e-9)
	assert.InDelta(t, 0.0, NormalizeLevel(-1), 1e-9)
}

func TestLevelForScore(t *testing.T) {
	assert.Equal(t, 0, LevelForScore(0.0))
	assert.Equal(t, 1, LevelForScore(0.3))
	assert.Equal(t, 2, LevelForScore(0.5))
	assert.Equal(t, 3, LevelForScore(0.7))
	assert.Equal(t, 4, LevelForScore(1.0))
	assert.Equal(t, 4, LevelForScore(9.9))
}

func TestExtremismLabel(t *testing.T) {
	assert.Equal(t, "neutral", ExtremismLabel(0.1))
	assert.Equal(t, "mild", ExtremismLabel(0.2))
	assert.Equal(t, "moderate", ExtremismLabel(0.45))
	assert.Equal(t, "high", ExtremismLabel(0.65))
	assert.Equal(t, "extreme", ExtremismLabel(0.95))
}

func TestSentimentLabel(t *testing.T) {
	assert.Equal(t, "very_negative", SentimentLabel(0.0))
	assert.Equal(t, "negative", SentimentLabel(0.25))
	assert.Equal(t, "neutral", SentimentLabel(0.5))
	assert.Equal(t, "positive", SentimentLabel(0.7))
	assert.Equal(t, "very_positive", SentimentLabel(1.0))
}
