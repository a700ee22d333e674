package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	// Database drivers.
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/opinionbalance/balancer/internal/domain"
	"github.com/opinionbalance/balancer/internal/logging"
)

// Config holds database connection settings.
type Config struct {
	// Driver is "postgres" or "sqlite3".
	Driver string `env:"DB_DRIVER" yaml:"driver"`
	// DSN is the driver-specific connection string.
	DSN string `env:"DB_DSN" yaml:"dsn"`

	MaxConnections  int           `yaml:"max_connections"`
	MaxIdleConns    int           `yaml:"max_idle_connections"`
	ConnMaxLifetime time.Duration `yaml:"connection_max_lifetime"`
}

// SQLStore implements PostStore and LearningStore on top of sqlx. Queries
// are written with ? placeholders and rebound for the active driver.
type SQLStore struct {
	db     *sqlx.DB
	logger logging.Logger
}

// Open connects to the database and verifies the connection.
func Open(cfg Config, logger logging.Logger) (*SQLStore, error) {
	if cfg.Driver == "" {
		return nil, fmt.Errorf("database driver is required")
	}

	db, err := sqlx.Connect(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.Driver, err)
	}

	if cfg.MaxConnections > 0 {
		db.SetMaxOpenConns(cfg.MaxConnections)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	return &SQLStore{db: db, logger: logger}, nil
}

// NewSQLStore wraps an existing connection (used by tests).
func NewSQLStore(db *sqlx.DB, logger logging.Logger) *SQLStore {
	return &SQLStore{db: db, logger: logger}
}

// Close closes the underlying connection pool.
func (s *SQLStore) Close() error { return s.db.Close() }

// Ping verifies the connection, used by the readiness probe.
func (s *SQLStore) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// EnsureSchema creates the tables if they do not exist. The SQL is portable
// across Postgres and SQLite: TEXT uuid keys, no serial columns.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS posts (
			id         TEXT PRIMARY KEY,
			author_id  TEXT NOT NULL DEFAULT '',
			content    TEXT NOT NULL,
			likes      INTEGER NOT NULL DEFAULT 0,
			comments   INTEGER NOT NULL DEFAULT 0,
			shares     INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS comments (
			id         TEXT PRIMARY KEY,
			post_id    TEXT NOT NULL,
			author_id  TEXT NOT NULL DEFAULT '',
			content    TEXT NOT NULL,
			likes      INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_comments_post_id ON comments (post_id)`,
		`CREATE TABLE IF NOT EXISTS action_logs (
			action_id           TEXT PRIMARY KEY,
			timestamp           TIMESTAMP NOT NULL,
			execution_time      REAL NOT NULL DEFAULT 0,
			success             BOOLEAN NOT NULL DEFAULT FALSE,
			effectiveness_score REAL NOT NULL DEFAULT 0,
			situation_context   TEXT,
			strategic_decision  TEXT,
			execution_details   TEXT,
			lessons_learned     TEXT
		)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// GetPost fetches a post row. Returns ErrNotFound when absent.
func (s *SQLStore) GetPost(ctx context.Context, postID string) (*domain.Post, error) {
	query := s.db.Rebind(`
		SELECT id, author_id, content, likes, comments, shares, created_at
		FROM posts WHERE id = ?`)

	var post domain.Post
	if err := s.db.GetContext(ctx, &post, query, postID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("post %s: %w", postID, ErrNotFound)
		}
		return nil, fmt.Errorf("get post %s: %w", postID, err)
	}
	return &post, nil
}

// InsertPost stores a post row. Used by seeding and tests.
func (s *SQLStore) InsertPost(ctx context.Context, post *domain.Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}

	query := s.db.Rebind(`
		INSERT INTO posts (id, author_id, content, likes, comments, shares, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if _, err := s.db.ExecContext(ctx, query,
		post.ID, post.AuthorID, post.Content, post.Likes, post.Comments, post.Shares, post.CreatedAt); err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

// HottestComments returns up to limit comments ordered by likes then
// recency.
func (s *SQLStore) HottestComments(ctx context.Context, postID string, limit int) ([]domain.Comment, error) {
	query := s.db.Rebind(`
		SELECT id, post_id, author_id, content, likes, created_at
		FROM comments WHERE post_id = ?
		ORDER BY likes DESC, created_at DESC
		LIMIT ?`)
	return s.queryComments(ctx, query, postID, limit)
}

// NewestComments returns up to limit comments ordered by recency.
func (s *SQLStore) NewestComments(ctx context.Context, postID string, limit int) ([]domain.Comment, error) {
	query := s.db.Rebind(`
		SELECT id, post_id, author_id, content, likes, created_at
		FROM comments WHERE post_id = ?
		ORDER BY created_at DESC
		LIMIT ?`)
	return s.queryComments(ctx, query, postID, limit)
}

func (s *SQLStore) queryComments(ctx context.Context, query, postID string, limit int) ([]domain.Comment, error) {
	var comments []domain.Comment
	if err := s.db.SelectContext(ctx, &comments, query, postID, limit); err != nil {
		return nil, fmt.Errorf("query comments for post %s: %w", postID, err)
	}
	return comments, nil
}

// InsertComment stores a new comment and returns its id.
func (s *SQLStore) InsertComment(ctx context.Context, postID, authorID, content string) (string, error) {
	id := uuid.NewString()
	query := s.db.Rebind(`
		INSERT INTO comments (id, post_id, author_id, content, likes, created_at)
		VALUES (?, ?, ?, ?, 0, ?)`)
	if _, err := s.db.ExecContext(ctx, query, id, postID, authorID, content, time.Now().UTC()); err != nil {
		return "", fmt.Errorf("insert comment on post %s: %w", postID, err)
	}
	return id, nil
}

// UpdatePostCounters applies atomic counter increments on a post row.
func (s *SQLStore) UpdatePostCounters(ctx context.Context, postID string, deltaLikes, deltaComments int) error {
	query := s.db.Rebind(`
		UPDATE posts SET likes = likes + ?, comments = comments + ?
		WHERE id = ?`)
	result, err := s.db.ExecContext(ctx, query, deltaLikes, deltaComments, postID)
	if err != nil {
		return fmt.Errorf("update counters for post %s: %w", postID, err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("post %s: %w", postID, ErrNotFound)
	}
	return nil
}

// UpdateCommentLikes applies an atomic like increment on a comment row.
func (s *SQLStore) UpdateCommentLikes(ctx context.Context, commentID string, delta int) error {
	query := s.db.Rebind(`UPDATE comments SET likes = likes + ? WHERE id = ?`)
	result, err := s.db.ExecContext(ctx, query, delta, commentID)
	if err != nil {
		return fmt.Errorf("update likes for comment %s: %w", commentID, err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return fmt.Errorf("comment %s: %w", commentID, ErrNotFound)
	}
	return nil
}

// PersistActionLog upserts the action log record keyed by action_id.
func (s *SQLStore) PersistActionLog(ctx context.Context, record *domain.ActionLogRecord) error {
	situation, err := marshalJSON(record.SituationContext)
	if err != nil {
		return err
	}
	decision, err := marshalJSON(record.StrategicDecision)
	if err != nil {
		return err
	}
	details, err := marshalJSON(record.ExecutionDetails)
	if err != nil {
		return err
	}
	lessons, err := marshalJSON(record.LessonsLearned)
	if err != nil {
		return err
	}

	query := s.db.Rebind(`
		INSERT INTO action_logs
			(action_id, timestamp, execution_time, success, effectiveness_score,
			 situation_context, strategic_decision, execution_details, lessons_learned)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (action_id) DO UPDATE SET
			timestamp = excluded.timestamp,
			execution_time = excluded.execution_time,
			success = excluded.success,
			effectiveness_score = excluded.effectiveness_score,
			situation_context = excluded.situation_context,
			strategic_decision = excluded.strategic_decision,
			execution_details = excluded.execution_details,
			lessons_learned = excluded.lessons_learned`)

	if _, err := s.db.ExecContext(ctx, query,
		record.ActionID, record.Timestamp, record.ExecutionTime, record.Success,
		record.EffectivenessScore, situation, decision, details, lessons); err != nil {
		return fmt.Errorf("persist action log %s: %w", record.ActionID, err)
	}

	s.logger.Info("action log persisted",
		logging.String("action_id", record.ActionID),
		logging.Bool("success", record.Success),
		logging.Float64("effectiveness_score", record.EffectivenessScore))
	return nil
}

// GetActionLog reads back a persisted record, used by the API and tests.
func (s *SQLStore) GetActionLog(ctx context.Context, actionID string) (*domain.ActionLogRecord, error) {
	query := s.db.Rebind(`
		SELECT action_id, timestamp, execution_time, success, effectiveness_score,
		       situation_context, strategic_decision, execution_details, lessons_learned
		FROM action_logs WHERE action_id = ?`)

	row := s.db.QueryRowxContext(ctx, query, actionID)

	var (
		record                                domain.ActionLogRecord
		situation, decision, details, lessons sql.NullString
	)
	err := row.Scan(&record.ActionID, &record.Timestamp, &record.ExecutionTime,
		&record.Success, &record.EffectivenessScore,
		&situation, &decision, &details, &lessons)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("action log %s: %w", actionID, ErrNotFound)
		}
		return nil, fmt.Errorf("get action log %s: %w", actionID, err)
	}

	if record.SituationContext, err = unmarshalJSON(situation); err != nil {
		return nil, err
	}
	if record.StrategicDecision, err = unmarshalJSON(decision); err != nil {
		return nil, err
	}
	if record.ExecutionDetails, err = unmarshalJSON(details); err != nil {
		return nil, err
	}
	if record.LessonsLearned, err = unmarshalJSON(lessons); err != nil {
		return nil, err
	}
	return &record, nil
}

func marshalJSON(m map[string]any) (sql.NullString, error) {
	if m == nil {
		return sql.NullString{}, nil
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("marshal action log field: %w", err)
	}
	return sql.NullString{String: string(raw), Valid: true}, nil
}

func unmarshalJSON(ns sql.NullString) (map[string]any, error) {
	if !ns.Valid || ns.String == "" {
		return nil, nil
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(ns.String), &m); err != nil {
		return nil, fmt.Errorf("unmarshal action log field: %w", err)
	}
	return m, nil
}
