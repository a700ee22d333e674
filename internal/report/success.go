package report

import (
	"github.com/opinionbalance/balancer/internal/domain"
	"github.com/opinionbalance/balancer/internal/logging"
)

// Evaluator applies the success criteria to a report. Success requires all
// three absolute checks to pass; no minimum improvement magnitude is
// required, so a post that started mild and stayed mild counts as success
// rather than being penalized for having nothing to fix.
type Evaluator struct {
	logger logging.Logger
}

// NewEvaluator creates a success evaluator.
func NewEvaluator(logger logging.Logger) *Evaluator {
	return &Evaluator{logger: logger}
}

// IsSuccess reports whether the monitoring lifecycle may terminate
// successfully. Each sub-criterion's outcome is logged so operators can see
// which check held the loop open.
func (e *Evaluator) IsSuccess(rep domain.EffectivenessReport, criteria domain.SuccessThresholds) bool {
	scoreOK := rep.Assessment.OverallScore >= criteria.OverallScore
	extremismOK := rep.Current.ExtremismScore <= criteria.Extremism
	sentimentOK := rep.Current.SentimentScore >= criteria.Sentiment

	e.logger.Info("success criteria evaluated",
		logging.String("post_id", rep.PostID),
		logging.String("report_type", rep.ReportType),
		logging.Bool("overall_score_ok", scoreOK),
		logging.Float64("overall_score", rep.Assessment.OverallScore),
		logging.Float64("overall_score_threshold", criteria.OverallScore),
		logging.Bool("extremism_ok", extremismOK),
		logging.Float64("extremism", rep.Current.ExtremismScore),
		logging.Float64("extremism_threshold", criteria.Extremism),
		logging.Bool("sentiment_ok", sentimentOK),
		logging.Float64("sentiment", rep.Current.SentimentScore),
		logging.Float64("sentiment_threshold", criteria.Sentiment))

	return scoreOK && extremismOK && sentimentOK
}
