// Package intervention synthesizes and posts the leader/amplifier responses
// that try to shift a post's extremism and sentiment.
package intervention

// RoleKind is the closed set of agent roles.
type RoleKind int

const (
	// RoleLeader posts the anchoring counter-comments.
	RoleLeader RoleKind = iota
	// RoleAmplifier posts short supporting responses and likes.
	RoleAmplifier
)

// AgentRole tags a synthesized response with its role. Amplifiers carry a
// style tag that varies their voice.
type AgentRole struct {
	Kind RoleKind
	Tag  string
}

// Leader returns the leader role.
func Leader() AgentRole { return AgentRole{Kind: RoleLeader} }

// Amplifier returns an amplifier role with the given style tag.
func Amplifier(tag string) AgentRole { return AgentRole{Kind: RoleAmplifier, Tag: tag} }

// StyleConfig controls how a response for a role is phrased.
type StyleConfig struct {
	Tone          string
	MaxSentences  int
	CitesEvidence bool
}

// Amplifier style tags cycle through these voices.
var amplifierTags = []string{"casual", "curious", "supportive"}

// AmplifierTag returns the style tag for the i-th amplifier.
func AmplifierTag(i int) string {
	return amplifierTags[i%len(amplifierTags)]
}

// StyleFor maps a role to its phrasing style. Pure function; the role set is
// closed so the mapping is exhaustive.
func StyleFor(role AgentRole) StyleConfig {
	switch role.Kind {
	case RoleLeader:
		return StyleConfig{Tone: "measured", MaxSentences: 4, CitesEvidence: true}
	case RoleAmplifier:
		tone := role.Tag
		if tone == "" {
			tone = amplifierTags[0]
		}
		return StyleConfig{Tone: tone, MaxSentences: 2}
	default:
		return StyleConfig{Tone: "measured", MaxSentences: 2}
	}
}
