package intervention

import (
	"context"
	"fmt"
	"strings"

	"github.com/opinionbalance/balancer/internal/domain"
)

// StaticStrategyProvider is the stand-in used when no external strategist
// endpoint is configured. It derives a de-escalation strategy directly from
// the alert so the loop remains runnable end to end.
type StaticStrategyProvider struct{}

// CreateStrategy returns a deterministic de-escalation strategy.
func (StaticStrategyProvider) CreateStrategy(_ context.Context, alert domain.Alert) (domain.StrategyResult, error) {
	name := "gentle_reframe"
	if alert.Level >= 3 {
		name = "evidence_counter"
	}

	return domain.StrategyResult{
		Success: true,
		Strategy: domain.Strategy{
			Name:          name,
			CoreViewpoint: "the discussion benefits from considering more than one side",
			Guidance:      "acknowledge the concern, add missing context, avoid blame",
		},
		AgentInstructions: "stay calm, do not mirror hostile language",
	}, nil
}

// TemplateSynthesizer composes responses from the strategy text alone,
// without an LLM. Used as the default Synthesizer; an LLM-backed
// implementation plugs in behind the same interface.
type TemplateSynthesizer struct{}

// Compose renders a role-appropriate response from the strategy.
func (TemplateSynthesizer) Compose(_ context.Context, role AgentRole, style StyleConfig, strategy domain.Strategy, _ string) (string, error) {
	switch role.Kind {
	case RoleLeader:
		parts := []string{
			fmt.Sprintf("I see where this is coming from, but %s.", strategy.CoreViewpoint),
		}
		if style.CitesEvidence && strategy.Guidance != "" {
			parts = append(parts, fmt.Sprintf("Worth keeping in mind: %s.", strategy.Guidance))
		}
		return strings.Join(parts, " "), nil
	case RoleAmplifier:
		switch style.Tone {
		case "curious":
			return "That's a fair point above - is there more context on this?", nil
		case "supportive":
			return "Agreed with the comment above, this take seems more balanced.", nil
		default:
			return "Yeah, this makes sense to me.", nil
		}
	default:
		return "", fmt.Errorf("unknown agent role %d", role.Kind)
	}
}
