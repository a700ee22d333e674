package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuleEstimatorCalmText(t *testing.T) {
	e := NewRuleEstimator()

	score := e.Estimate("I think the article raises some interesting points worth discussing.")
	assert.Less(t, score, 0.2)
}

func TestRuleEstimatorEmptyText(t *testing.T) {
	e := NewRuleEstimator()
	assert.Zero(t, e.Estimate(""))
}

func TestRuleEstimatorAggressiveTerms(t *testing.T) {
	e := NewRuleEstimator()

	mild := e.Estimate("this argument is stupid")
	hostile := e.Estimate("I hate these people, they are stupid worthless scum and traitors")
	assert.Greater(t, hostile, mild)
	assert.GreaterOrEqual(t, hostile, 0.5)
}

func TestRuleEstimatorAggressiveContributionIsCapped(t *testing.T) {
	e := NewRuleEstimator()

	// Many hostile terms in otherwise lowercase text cannot push the
	// aggressive signal past its cap plus the small absolutist slice.
	text := "hate hate hate destroy destroy attack attack idiot stupid scum garbage evil liar traitor"
	assert.LessOrEqual(t, e.Estimate(text), 0.8)
}

func TestRuleEstimatorShouting(t *testing.T) {
	e := NewRuleEstimator()

	quiet := e.Estimate("this is wrong and should change")
	loud := e.Estimate("THIS IS WRONG AND SHOULD CHANGE!!!")
	assert.Greater(t, loud, quiet)
}

func TestRuleEstimatorAbsolutistTerms(t *testing.T) {
	e := NewRuleEstimator()

	plain := e.Estimate("some people disagree on this")
	absolute := e.Estimate("everyone always says this, no one ever disagrees, absolutely without exception")
	assert.Greater(t, absolute, plain)
}

func TestRuleEstimatorAlwaysInRange(t *testing.T) {
	e := NewRuleEstimator()

	texts := []string{
		"HATE HATE HATE DESTROY EVERYONE ALWAYS!!!!!!",
		"ok",
		"!!!!!!!!!!",
		"Absolutely everyone is a worthless traitor, always and without exception. SCUM!",
	}
	for _, text := range texts {
		score := e.Estimate(text)
		assert.GreaterOrEqual(t, score, 0.0, "text=%q", text)
		assert.LessOrEqual(t, score, 1.0, "text=%q", text)
	}
}
