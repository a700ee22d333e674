package scoring

import (
	"strings"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// Contribution caps for the rule-based extremism estimate. The individual
// signals are capped so no single signal can saturate the score on its own.
const (
	aggressivePerHit  = 0.15
	aggressiveCap     = 0.6
	absolutistPerHit  = 0.05
	absolutistCap     = 0.2
	shoutingCap       = 0.2
	uppercaseWeight   = 0.5
	exclamationWeight = 0.05
)

// aggressiveTerms are hostility markers. Each occurrence contributes
// aggressivePerHit up to aggressiveCap.
var aggressiveTerms = []string{
	"hate", "destroy", "attack", "idiot", "stupid", "disgusting",
	"enemy", "traitor", "liar", "scum", "garbage", "pathetic",
	"shut up", "get lost", "worthless", "evil",
}

// absolutistTerms signal black-and-white framing.
var absolutistTerms = []string{
	"always", "never", "completely", "totally", "everyone", "no one",
	"all of them", "absolutely", "without exception", "undeniable",
}

// RuleEstimator is the deterministic fallback scorer used when the LLM
// classifier is unavailable or returns an unparseable response. It only
// estimates extremism; the fallback path reports neutral sentiment.
type RuleEstimator struct {
	aggressive *ahocorasick.Matcher
	absolutist *ahocorasick.Matcher
}

// NewRuleEstimator builds the keyword automatons once; the estimator is safe
// for concurrent use.
func NewRuleEstimator() *RuleEstimator {
	return &RuleEstimator{
		aggressive: ahocorasick.NewStringMatcher(aggressiveTerms),
		absolutist: ahocorasick.NewStringMatcher(absolutistTerms),
	}
}

// Estimate returns a rule-based extremism score in [0,1].
func (e *RuleEstimator) Estimate(text string) float64 {
	if text == "" {
		return 0
	}
	lower := strings.ToLower(text)

	score := termContribution(lower, e.aggressive, aggressiveTerms, aggressivePerHit, aggressiveCap)
	score += shoutingContribution(text)
	score += termContribution(lower, e.absolutist, absolutistTerms, absolutistPerHit, absolutistCap)

	return Clamp01(score)
}

// termContribution sums per-occurrence contributions for the terms the
// automaton found in the text, capped at limit. The Aho-Corasick pass narrows
// the term list to actual hits before occurrences are counted.
func termContribution(lower string, m *ahocorasick.Matcher, terms []string, perHit, limit float64) float64 {
	hits := m.Match([]byte(lower))
	if len(hits) == 0 {
		return 0
	}

	total := 0.0
	for _, idx := range hits {
		if idx < 0 || idx >= len(terms) {
			continue
		}
		total += float64(strings.Count(lower, terms[idx])) * perHit
	}
	if total > limit {
		total = limit
	}
	return total
}

// shoutingContribution scores uppercase ratio and exclamation marks, capped
// at shoutingCap.
func shoutingContribution(text string) float64 {
	letters := 0
	upper := 0
	exclamations := 0
	for _, r := range text {
		switch {
		case r >= 'A' && r <= 'Z':
			letters++
			upper++
		case r >= 'a' && r <= 'z':
			letters++
		case r == '!':
			exclamations++
		}
	}

	contribution := float64(exclamations) * exclamationWeight
	if letters > 0 {
		contribution += float64(upper) / float64(letters) * uppercaseWeight
	}
	if contribution > shoutingCap {
		contribution = shoutingCap
	}
	return contribution
}
