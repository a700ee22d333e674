// Package api exposes the task-management HTTP surface of the balancer
// service.
package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/opinionbalance/balancer/internal/domain"
	"github.com/opinionbalance/balancer/internal/logging"
	"github.com/opinionbalance/balancer/internal/monitor"
	"github.com/opinionbalance/balancer/internal/scoring"
	"github.com/opinionbalance/balancer/internal/store"
)

// Pinger reports database liveness for the readiness check.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthChecker reports classifier backend liveness. Optional; a nil
// checker means the classifier is not part of readiness.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handler handles HTTP requests for the balancer API.
type Handler struct {
	supervisor *monitor.Supervisor
	posts      store.PostStore
	scorer     *scoring.Scorer
	db         Pinger
	classifier HealthChecker

	defaultInterval time.Duration
	logger          logging.Logger
}

// NewHandler creates an API handler. classifier may be nil.
func NewHandler(
	supervisor *monitor.Supervisor,
	posts store.PostStore,
	scorer *scoring.Scorer,
	db Pinger,
	classifier HealthChecker,
	defaultInterval time.Duration,
	logger logging.Logger,
) *Handler {
	return &Handler{
		supervisor:      supervisor,
		posts:           posts,
		scorer:          scorer,
		db:              db,
		classifier:      classifier,
		defaultInterval: defaultInterval,
		logger:          logger,
	}
}

// CreateTaskRequest starts a monitoring lifecycle for a post.
type CreateTaskRequest struct {
	PostID string `json:"post_id" binding:"required"`

	// ActionID links the lifecycle to an upstream action. Generated when
	// empty.
	ActionID string `json:"action_id"`

	// CoreViewpoint overrides the monitored viewpoint; defaults to the
	// post content.
	CoreViewpoint string `json:"core_viewpoint"`

	// Interval overrides the configured monitoring interval, e.g. "30s".
	Interval string `json:"interval"`
}

// CreateTaskResponse echoes the started task and its baseline.
type CreateTaskResponse struct {
	TaskID   string                  `json:"task_id"`
	ActionID string                  `json:"action_id"`
	PostID   string                  `json:"post_id"`
	Interval string                  `json:"interval"`
	Baseline domain.BaselineSnapshot `json:"baseline"`
}

// CreateTask handles POST /api/v1/tasks. It captures the baseline snapshot
// synchronously, then hands the task to the supervisor.
func (h *Handler) CreateTask(c *gin.Context) {
	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	interval := h.defaultInterval
	if req.Interval != "" {
		parsed, err := time.ParseDuration(req.Interval)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "interval must be a positive duration"})
			return
		}
		interval = parsed
	}

	post, err := h.posts.GetPost(c.Request.Context(), req.PostID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
			return
		}
		h.logger.Error("post lookup failed",
			logging.String("post_id", req.PostID), logging.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "post lookup failed"})
		return
	}

	viewpoint := req.CoreViewpoint
	if viewpoint == "" {
		viewpoint = post.Content
	}
	pair := h.scorer.Score(c.Request.Context(), viewpoint)

	task := &domain.MonitoringTask{
		TaskID:       uuid.NewString(),
		ActionID:     req.ActionID,
		TargetPostID: post.ID,
		Interval:     interval,
		Baseline: domain.BaselineSnapshot{
			CoreViewpoint:      viewpoint,
			ViewpointExtremism: pair.Extremism,
			SentimentScore:     pair.Sentiment,
			Engagement: domain.EngagementData{
				Likes:    post.Likes,
				Comments: post.Comments,
				Shares:   post.Shares,
			},
			Timestamp: time.Now().UTC(),
		},
	}
	if task.ActionID == "" {
		task.ActionID = uuid.NewString()
	}

	if err := h.supervisor.Start(task); err != nil {
		h.logger.Error("task start failed",
			logging.String("post_id", req.PostID), logging.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "task start failed"})
		return
	}

	c.JSON(http.StatusCreated, CreateTaskResponse{
		TaskID:   task.TaskID,
		ActionID: task.ActionID,
		PostID:   task.TargetPostID,
		Interval: interval.String(),
		Baseline: task.Baseline,
	})
}

// GetTask handles GET /api/v1/tasks/:task_id.
func (h *Handler) GetTask(c *gin.Context) {
	status, err := h.supervisor.Status(c.Param("task_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}
	c.JSON(http.StatusOK, status)
}

// ListTasks handles GET /api/v1/tasks.
func (h *Handler) ListTasks(c *gin.Context) {
	tasks := h.supervisor.List()
	c.JSON(http.StatusOK, gin.H{"tasks": tasks, "total": len(tasks)})
}

// StopTask handles DELETE /api/v1/tasks/:task_id. Stopping waits for the
// task goroutine to finish, so the final report is persisted before the
// response is sent.
func (h *Handler) StopTask(c *gin.Context) {
	taskID := c.Param("task_id")
	if err := h.supervisor.Stop(taskID); err != nil {
		if errors.Is(err, monitor.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
			return
		}
		h.logger.Error("task stop failed",
			logging.String("task_id", taskID), logging.Err(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "task stop failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"task_id": taskID, "stopped": true})
}

// HealthCheck handles GET /health. Liveness only.
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// ReadyCheck handles GET /ready. The database is required; the classifier
// is reported but degrades to the rule fallback, so it never fails
// readiness.
func (h *Handler) ReadyCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := gin.H{"database": "ok"}
	ready := true

	if err := h.db.Ping(ctx); err != nil {
		checks["database"] = err.Error()
		ready = false
	}

	if h.classifier != nil {
		checks["classifier"] = "ok"
		if err := h.classifier.Health(ctx); err != nil {
			checks["classifier"] = "degraded: " + err.Error()
		}
	}

	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"ready": ready, "checks": checks})
}
