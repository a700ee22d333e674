package intervention

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/opinionbalance/balancer/internal/domain"
	"github.com/opinionbalance/balancer/internal/scoring"
)

// NewAlert constructs a typed alert from an effectiveness report. This is
// the single place where report metrics become a strategy-provider trigger;
// nothing downstream inspects raw maps.
func NewAlert(rep domain.EffectivenessReport) domain.Alert {
	level := scoring.LevelForScore(rep.Current.ExtremismScore)

	return domain.Alert{
		AlertID: uuid.NewString(),
		PostID:  rep.PostID,
		Level:   level,
		Description: fmt.Sprintf("post %s at %s extremism (%.3f), %s sentiment (%.3f)",
			rep.PostID,
			rep.Current.Level,
			rep.Current.ExtremismScore,
			scoring.SentimentLabel(rep.Current.SentimentScore),
			rep.Current.SentimentScore),
		Reasons:   rep.Assessment.InterventionReasons,
		CreatedAt: time.Now().UTC(),
	}
}
