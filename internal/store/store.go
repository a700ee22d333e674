// Package store provides the post/comment store and the learning store the
// monitoring loop reads and writes. One sqlx-based implementation covers both
// Postgres (production) and SQLite (local/dev, tests).
package store

import (
	"context"
	"errors"

	"github.com/opinionbalance/balancer/internal/domain"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// PostStore is the post/comment boundary the core consumes. Counter updates
// are atomic increments; multiple amplifier writes against the same post in
// one cycle must not race.
type PostStore interface {
	GetPost(ctx context.Context, postID string) (*domain.Post, error)
	HottestComments(ctx context.Context, postID string, limit int) ([]domain.Comment, error)
	NewestComments(ctx context.Context, postID string, limit int) ([]domain.Comment, error)
	InsertComment(ctx context.Context, postID, authorID, content string) (string, error)
	UpdatePostCounters(ctx context.Context, postID string, deltaLikes, deltaComments int) error
	UpdateCommentLikes(ctx context.Context, commentID string, delta int) error
}

// LearningStore persists the action log written once per monitoring
// lifecycle. PersistActionLog is an upsert keyed by action_id so idempotent
// re-runs are safe.
type LearningStore interface {
	PersistActionLog(ctx context.Context, record *domain.ActionLogRecord) error
}
