package scoring

import (
	"context"

	"github.com/opinionbalance/balancer/internal/domain"
	"github.com/opinionbalance/balancer/internal/logging"
)

// Sampling and weighting constants. A sample is the hottest 2 comments plus
// the newest 2 comments not already selected as hot.
const (
	hotSampleSize    = 2
	recentSampleSize = 2

	hotPositionWeight     = 1.5
	defaultPositionWeight = 1.0
	likeWeightFactor      = 0.1
)

// Zero-comment defaults, applied consistently wherever a post has no
// scorable comments: extremism 3.0 on the raw 0-10 scale (0.3 normalized),
// sentiment neutral.
const (
	defaultExtremism = 0.3
	defaultSentiment = 0.5
)

// CommentSource is the read side of the post/comment store the aggregator
// needs. Hottest orders by (likes desc, recency desc); Newest by recency
// desc.
type CommentSource interface {
	HottestComments(ctx context.Context, postID string, limit int) ([]domain.Comment, error)
	NewestComments(ctx context.Context, postID string, limit int) ([]domain.Comment, error)
}

// Aggregator combines per-comment scores into post-level scores using
// like-count weights and hot/recent sampling.
type Aggregator struct {
	comments CommentSource
	scorer   *Scorer
	logger   logging.Logger
}

// NewAggregator creates an aggregator.
func NewAggregator(comments CommentSource, scorer *Scorer, logger logging.Logger) *Aggregator {
	return &Aggregator{comments: comments, scorer: scorer, logger: logger}
}

type scoredComment struct {
	comment domain.Comment
	hot     bool
	scores  ScorePair
}

// Snapshot measures a post's current state. Store read failures degrade to
// the neutral default snapshot with a warning; Snapshot never fails.
func (a *Aggregator) Snapshot(ctx context.Context, postID string) domain.MetricSet {
	sample := a.scoredSample(ctx, postID)

	extremism := aggregateExtremism(sample)
	sentiment := aggregateSentiment(sample)

	a.logger.Debug("post snapshot measured",
		logging.String("post_id", postID),
		logging.Int("sample_size", len(sample)),
		logging.Float64("extremism", extremism),
		logging.Float64("sentiment", sentiment))

	return domain.MetricSet{
		ExtremismScore: extremism,
		SentimentScore: sentiment,
		Level:          ExtremismLabel(extremism),
	}
}

// PostExtremism returns the like-weighted extremism aggregate for a post.
func (a *Aggregator) PostExtremism(ctx context.Context, postID string) float64 {
	return aggregateExtremism(a.scoredSample(ctx, postID))
}

// PostSentiment returns the like-weighted sentiment aggregate for a post.
func (a *Aggregator) PostSentiment(ctx context.Context, postID string) float64 {
	return aggregateSentiment(a.scoredSample(ctx, postID))
}

// scoredSample fetches the comment sample and scores each comment once.
// Comments shorter than the scorable minimum are dropped before weighting so
// they do not distort the weight denominator.
func (a *Aggregator) scoredSample(ctx context.Context, postID string) []scoredComment {
	hot, err := a.comments.HottestComments(ctx, postID, hotSampleSize)
	if err != nil {
		a.logger.Warn("hot comment fetch failed",
			logging.String("post_id", postID), logging.Err(err))
		hot = nil
	}

	// Over-fetch recents so hot duplicates can be skipped.
	recent, err := a.comments.NewestComments(ctx, postID, hotSampleSize+recentSampleSize)
	if err != nil {
		a.logger.Warn("recent comment fetch failed",
			logging.String("post_id", postID), logging.Err(err))
		recent = nil
	}

	seen := make(map[string]bool, hotSampleSize+recentSampleSize)
	sample := make([]scoredComment, 0, hotSampleSize+recentSampleSize)

	for _, c := range hot {
		if seen[c.ID] || !scorable(c.Content) {
			continue
		}
		seen[c.ID] = true
		sample = append(sample, scoredComment{comment: c, hot: true})
	}

	added := 0
	for _, c := range recent {
		if added >= recentSampleSize {
			break
		}
		if seen[c.ID] || !scorable(c.Content) {
			continue
		}
		seen[c.ID] = true
		sample = append(sample, scoredComment{comment: c})
		added++
	}

	for i := range sample {
		sample[i].scores = a.scorer.Score(ctx, sample[i].comment.Content)
	}
	return sample
}

// aggregateExtremism computes the weight-normalized extremism average with
// weight (1 + 0.1*likes) * positionWeight, positionWeight 1.5 for hot
// comments.
func aggregateExtremism(sample []scoredComment) float64 {
	if len(sample) == 0 {
		return defaultExtremism
	}

	var weighted, total float64
	for _, sc := range sample {
		position := defaultPositionWeight
		if sc.hot {
			position = hotPositionWeight
		}
		w := (1.0 + likeWeightFactor*float64(sc.comment.Likes)) * position
		weighted += Normalize(sc.scores.Extremism) * w
		total += w
	}
	if total == 0 {
		return defaultExtremism
	}
	return Clamp01(weighted / total)
}

// aggregateSentiment computes the likes-share weighted sentiment average:
// weight (likes+1) / sum(likes+1), no position bonus.
func aggregateSentiment(sample []scoredComment) float64 {
	if len(sample) == 0 {
		return defaultSentiment
	}

	var total float64
	for _, sc := range sample {
		total += float64(sc.comment.Likes + 1)
	}
	if total == 0 {
		return defaultSentiment
	}

	var weighted float64
	for _, sc := range sample {
		weighted += Normalize(sc.scores.Sentiment) * float64(sc.comment.Likes+1) / total
	}
	return Clamp01(weighted)
}

func scorable(content string) bool {
	return len(content) >= minScorableLength
}
