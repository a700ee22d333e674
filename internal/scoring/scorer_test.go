package scoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opinionbalance/balancer/internal/logging"
	"github.com/opinionbalance/balancer/internal/retry"
)

type stubClassifier struct {
	response string
	err      error
	calls    int
}

func (s *stubClassifier) Classify(_ context.Context, _ string) (string, error) {
	s.calls++
	return s.response, s.err
}

type countingFallbacks struct{ count int }

func (c *countingFallbacks) ClassifierFallback() { c.count++ }

type mapCache struct {
	entries map[string]ScorePair
	puts    int
}

func newMapCache() *mapCache { return &mapCache{entries: make(map[string]ScorePair)} }

func (m *mapCache) Get(_ context.Context, text string) (ScorePair, bool) {
	pair, ok := m.entries[text]
	return pair, ok
}

func (m *mapCache) Put(_ context.Context, text string, pair ScorePair) {
	m.puts++
	m.entries[text] = pair
}

// noRetry keeps classifier failures from sleeping through backoff in tests.
func noRetry() retry.Config {
	return retry.Config{
		MaxAttempts:  1,
		InitialDelay: time.Millisecond,
		MaxDelay:     time.Millisecond,
		Multiplier:   1.0,
		IsRetryable:  func(error) bool { return false },
	}
}

func TestParseScorePair(t *testing.T) {
	testCases := []struct {
		name      string
		response  string
		extremism float64
		sentiment float64
		wantErr   bool
	}{
		{name: "plain pair", response: "0.7, 0.3", extremism: 0.7, sentiment: 0.3},
		{name: "no space", response: "0.2,0.9", extremism: 0.2, sentiment: 0.9},
		{name: "parenthesized", response: "(0.5, 0.5)", extremism: 0.5, sentiment: 0.5},
		{name: "labeled", response: "scores: 0.4, 0.6", extremism: 0.4, sentiment: 0.6},
		{name: "raw ten scale normalized", response: "8, 6", extremism: 0.8, sentiment: 0.6},
		{name: "trailing newline", response: "0.1, 0.2\n", extremism: 0.1, sentiment: 0.2},
		{name: "single value", response: "0.7", wantErr: true},
		{name: "three values", response: "0.1, 0.2, 0.3", wantErr: true},
		{name: "not numbers", response: "high, low", wantErr: true},
		{name: "empty", response: "", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pair, err := ParseScorePair(tc.response)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.InDelta(t, tc.extremism, pair.Extremism, 1e-9)
			assert.InDelta(t, tc.sentiment, pair.Sentiment, 1e-9)
		})
	}
}

func TestScorerShortTextSkipsClassifier(t *testing.T) {
	classifier := &stubClassifier{response: "0.9, 0.9"}
	scorer := NewScorer(classifier, logging.Nop())

	pair := scorer.Score(context.Background(), "hm")

	assert.Zero(t, classifier.calls)
	assert.InDelta(t, 0.0, pair.Extremism, 1e-9)
	assert.InDelta(t, 0.5, pair.Sentiment, 1e-9)
}

func TestScorerClassifierPath(t *testing.T) {
	classifier := &stubClassifier{response: "0.6, 0.4"}
	scorer := NewScorer(classifier, logging.Nop(), WithRetryConfig(noRetry()))

	pair := scorer.Score(context.Background(), "this policy goes too far")

	assert.Equal(t, 1, classifier.calls)
	assert.InDelta(t, 0.6, pair.Extremism, 1e-9)
	assert.InDelta(t, 0.4, pair.Sentiment, 1e-9)
}

func TestScorerFallsBackOnClassifierError(t *testing.T) {
	classifier := &stubClassifier{err: errors.New("connection refused")}
	fallbacks := &countingFallbacks{}
	scorer := NewScorer(classifier, logging.Nop(),
		WithRetryConfig(noRetry()), WithFallbackCounter(fallbacks))

	pair := scorer.Score(context.Background(), "I hate this, they are all traitors")

	assert.Equal(t, 1, fallbacks.count)
	assert.Greater(t, pair.Extremism, 0.0)
	assert.InDelta(t, 0.5, pair.Sentiment, 1e-9)
}

func TestScorerFallsBackOnUnparseableResponse(t *testing.T) {
	classifier := &stubClassifier{response: "I cannot rate this content"}
	fallbacks := &countingFallbacks{}
	scorer := NewScorer(classifier, logging.Nop(),
		WithRetryConfig(noRetry()), WithFallbackCounter(fallbacks))

	pair := scorer.Score(context.Background(), "a perfectly ordinary remark")

	assert.Equal(t, 1, fallbacks.count)
	assert.InDelta(t, 0.5, pair.Sentiment, 1e-9)
}

func TestScorerNilClassifierUsesRules(t *testing.T) {
	scorer := NewScorer(nil, logging.Nop(), WithRetryConfig(noRetry()))

	pair := scorer.Score(context.Background(), "a perfectly ordinary remark")

	assert.GreaterOrEqual(t, pair.Extremism, 0.0)
	assert.LessOrEqual(t, pair.Extremism, 1.0)
	assert.InDelta(t, 0.5, pair.Sentiment, 1e-9)
}

func TestScorerCache(t *testing.T) {
	classifier := &stubClassifier{response: "0.3, 0.7"}
	cache := newMapCache()
	scorer := NewScorer(classifier, logging.Nop(),
		WithRetryConfig(noRetry()), WithCache(cache))

	first := scorer.Score(context.Background(), "cache me if you can")
	second := scorer.Score(context.Background(), "cache me if you can")

	assert.Equal(t, 1, classifier.calls)
	assert.Equal(t, 1, cache.puts)
	assert.Equal(t, first, second)
}

func TestScorerResultsAlwaysClamped(t *testing.T) {
	classifier := &stubClassifier{response: "42, -3"}
	scorer := NewScorer(classifier, logging.Nop(), WithRetryConfig(noRetry()))

	pair := scorer.Score(context.Background(), "wildly out of range response")

	assert.LessOrEqual(t, pair.Extremism, 1.0)
	assert.GreaterOrEqual(t, pair.Sentiment, 0.0)
}
