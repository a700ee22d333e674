package scoring

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/opinionbalance/balancer/internal/logging"
	"github.com/opinionbalance/balancer/internal/retry"
)

// Texts shorter than this are scored as neutral without calling the
// classifier.
const minScorableLength = 5

// Sentiment defaults to neutral on the short-input and fallback paths; the
// rule estimator does not attempt sentiment inference.
const neutralSentiment = 0.5

const scoreRubric = `Rate the following text on two dimensions and answer with exactly two comma-separated numbers, nothing else.

Extremism (how polarized or hostile the text is):
0.0-0.2 neutral, calm discussion
0.2-0.4 mildly opinionated
0.4-0.6 moderately polarized, dismissive tone
0.6-0.8 highly polarized, hostile
0.8-1.0 extremely toxic, aggressive

Sentiment (emotional valence):
0.0-0.2 very negative
0.2-0.4 negative
0.4-0.6 neutral
0.6-0.8 positive
0.8-1.0 very positive

Text:
%s

Answer (extremism, sentiment):`

// Classifier is the external LLM boundary. Calls are best-effort; the scorer
// falls back to the rule estimator on any failure.
type Classifier interface {
	Classify(ctx context.Context, prompt string) (string, error)
}

// FallbackCounter records classifier fallbacks, implemented by the telemetry
// provider.
type FallbackCounter interface {
	ClassifierFallback()
}

// ScorePair is an (extremism, sentiment) measurement, both in [0,1].
type ScorePair struct {
	Extremism float64 `json:"extremism"`
	Sentiment float64 `json:"sentiment"`
}

// Scorer produces (extremism, sentiment) pairs for text snippets. Score never
// returns an error: classifier failures degrade to the rule-based estimate.
type Scorer struct {
	classifier Classifier
	rules      *RuleEstimator
	cache      Cache
	retryCfg   retry.Config
	fallbacks  FallbackCounter
	logger     logging.Logger
}

// ScorerOption configures optional scorer collaborators.
type ScorerOption func(*Scorer)

// WithCache attaches a score cache.
func WithCache(c Cache) ScorerOption {
	return func(s *Scorer) { s.cache = c }
}

// WithFallbackCounter attaches a fallback metric.
func WithFallbackCounter(fc FallbackCounter) ScorerOption {
	return func(s *Scorer) { s.fallbacks = fc }
}

// WithRetryConfig overrides the classifier retry policy.
func WithRetryConfig(cfg retry.Config) ScorerOption {
	return func(s *Scorer) { s.retryCfg = cfg }
}

// NewScorer creates a scorer. classifier may be nil, in which case every call
// uses the rule-based path.
func NewScorer(classifier Classifier, logger logging.Logger, opts ...ScorerOption) *Scorer {
	s := &Scorer{
		classifier: classifier,
		rules:      NewRuleEstimator(),
		retryCfg:   retry.DefaultConfig(),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score measures one text snippet. Both returned values are always in [0,1].
func (s *Scorer) Score(ctx context.Context, text string) ScorePair {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < minScorableLength {
		return ScorePair{Extremism: 0, Sentiment: neutralSentiment}
	}

	if s.cache != nil {
		if pair, ok := s.cache.Get(ctx, trimmed); ok {
			return clampPair(pair)
		}
	}

	pair, err := s.classify(ctx, trimmed)
	if err != nil {
		s.logger.Warn("classifier unavailable, using rule-based estimate",
			logging.Err(err),
			logging.Int("text_len", len(trimmed)))
		if s.fallbacks != nil {
			s.fallbacks.ClassifierFallback()
		}
		pair = ScorePair{
			Extremism: s.rules.Estimate(trimmed),
			Sentiment: neutralSentiment,
		}
	}

	pair = clampPair(pair)
	if s.cache != nil {
		s.cache.Put(ctx, trimmed, pair)
	}
	return pair
}

// classify calls the LLM classifier with retries and parses the response.
func (s *Scorer) classify(ctx context.Context, text string) (ScorePair, error) {
	if s.classifier == nil {
		return ScorePair{}, fmt.Errorf("no classifier configured")
	}

	prompt := fmt.Sprintf(scoreRubric, text)

	var pair ScorePair
	err := retry.Do(ctx, s.retryCfg, func() error {
		response, err := s.classifier.Classify(ctx, prompt)
		if err != nil {
			return err
		}
		parsed, err := ParseScorePair(response)
		if err != nil {
			return err
		}
		pair = parsed
		return nil
	})
	if err != nil {
		return ScorePair{}, err
	}
	return pair, nil
}

// ParseScorePair extracts exactly two comma-separated floats from a
// classifier response. Raw 0-10 scale values are normalized.
func ParseScorePair(response string) (ScorePair, error) {
	cleaned := strings.TrimSpace(response)
	// Tolerate answers wrapped in parentheses or prefixed with a label.
	if idx := strings.LastIndex(cleaned, ":"); idx >= 0 {
		cleaned = cleaned[idx+1:]
	}
	cleaned = strings.Trim(cleaned, " \t\n()[]")

	parts := strings.Split(cleaned, ",")
	if len(parts) != 2 {
		return ScorePair{}, fmt.Errorf("expected two comma-separated values, got %q", response)
	}

	extremism, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return ScorePair{}, fmt.Errorf("parse extremism: %w", err)
	}
	sentiment, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return ScorePair{}, fmt.Errorf("parse sentiment: %w", err)
	}

	return ScorePair{
		Extremism: Normalize(extremism),
		Sentiment: Normalize(sentiment),
	}, nil
}

func clampPair(p ScorePair) ScorePair {
	return ScorePair{
		Extremism: Normalize(p.Extremism),
		Sentiment: Normalize(p.Sentiment),
	}
}
