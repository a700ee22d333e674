// Package scoring measures the extremism and sentiment of post content.
// It combines an external LLM classifier with a deterministic rule-based
// fallback and aggregates per-comment scores into post-level scores.
package scoring

import (
	"math"

	"github.com/opinionbalance/balancer/internal/domain"
)

// The classifier sometimes reports extremism on a 0-10 scale. Every score in
// the service passes through Normalize before it is compared to a threshold
// or combined with another [0,1] quantity; values already in [0,1] pass
// through unchanged, so normalization is idempotent.
const rawScaleDivisor = 10.0

// Clamp01 clamps v to the closed interval [0,1]. NaN maps to 0.
func Clamp01(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Normalize maps a raw score to [0,1]. Values at or below 1.0 are already
// normalized and pass through (after clamping); larger values are treated as
// 0-10 scale and divided by 10.
func Normalize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v > 1.0 {
		v /= rawScaleDivisor
	}
	return Clamp01(v)
}

// NormalizeLevel maps a 0-4 alert level to [0,1]. The divide-by-10 rule does
// not apply to levels; they map linearly (0 -> 0.0, 4 -> 1.0).
func NormalizeLevel(level int) float64 {
	if level < domain.AlertLevelMin {
		level = domain.AlertLevelMin
	}
	if level > domain.AlertLevelMax {
		level = domain.AlertLevelMax
	}
	return float64(level) / float64(domain.AlertLevelMax)
}

// LevelForScore maps a normalized extremism score back to a 0-4 alert level.
func LevelForScore(score float64) int {
	score = Clamp01(score)
	level := int(math.Round(score * float64(domain.AlertLevelMax)))
	if level > domain.AlertLevelMax {
		level = domain.AlertLevelMax
	}
	return level
}

// ExtremismLabel returns the qualitative band for a normalized extremism
// score, matching the rubric bands used in the classifier prompt.
func ExtremismLabel(score float64) string {
	score = Clamp01(score)
	switch {
	case score < 0.2:
		return "neutral"
	case score < 0.4:
		return "mild"
	case score < 0.6:
		return "moderate"
	case score < 0.8:
		return "high"
	default:
		return "extreme"
	}
}

// SentimentLabel returns the qualitative band for a normalized sentiment
// score.
func SentimentLabel(score float64) string {
	score = Clamp01(score)
	switch {
	case score < 0.2:
		return "very_negative"
	case score < 0.4:
		return "negative"
	case score < 0.6:
		return "neutral"
	case score < 0.8:
		return "positive"
	default:
		return "very_positive"
	}
}
