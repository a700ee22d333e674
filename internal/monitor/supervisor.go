package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/opinionbalance/balancer/internal/domain"
	"github.com/opinionbalance/balancer/internal/logging"
)

// Supervisor errors.
var (
	// ErrTaskExists is returned when a task id is already registered.
	ErrTaskExists = errors.New("task already registered")
	// ErrTaskNotFound is returned for unknown task ids.
	ErrTaskNotFound = errors.New("task not found")
)

// Task states as reported by Status.
const (
	StateRunning   = "running"
	StateCompleted = "completed"
)

// TaskStatus is the externally visible view of a task.
type TaskStatus struct {
	TaskID            string    `json:"task_id"`
	PostID            string    `json:"post_id"`
	State             string    `json:"state"`
	Outcome           string    `json:"outcome,omitempty"`
	Rounds            int       `json:"rounds"`
	InterventionCount int       `json:"intervention_count"`
	LastScore         float64   `json:"last_score"`
	StartedAt         time.Time `json:"started_at"`
}

// ActiveGauge is the telemetry hook for the active-task gauge.
type ActiveGauge interface {
	TaskStarted()
	TaskStopped()
}

type taskHandle struct {
	task      *domain.MonitoringTask
	cancel    context.CancelFunc
	done      chan struct{}
	startedAt time.Time

	mu            sync.Mutex
	outcome       string
	final         *domain.EffectivenessReport
	rounds        int
	interventions int
	lastScore     float64
}

// Supervisor owns the registry of active monitoring tasks. Each task runs
// as one supervised goroutine; the handle is retained until the task is
// stopped or observed completed, so no task is ever fire-and-forget.
type Supervisor struct {
	base   context.Context
	loop   *Loop
	gauge  ActiveGauge
	logger logging.Logger

	mu    sync.Mutex
	tasks map[string]*taskHandle
	wg    sync.WaitGroup
}

// NewSupervisor creates a supervisor. base bounds every task it starts:
// cancelling it (service shutdown) cancels all tasks. A task must outlive
// the request that created it, so tasks never derive from request contexts.
// gauge may be nil.
func NewSupervisor(base context.Context, loop *Loop, gauge ActiveGauge, logger logging.Logger) *Supervisor {
	return &Supervisor{
		base:   base,
		loop:   loop,
		gauge:  gauge,
		logger: logger,
		tasks:  make(map[string]*taskHandle),
	}
}

// Start registers a task and launches its monitoring lifecycle.
func (s *Supervisor) Start(task *domain.MonitoringTask) error {
	if task.TaskID == "" || task.TargetPostID == "" {
		return fmt.Errorf("task id and target post id are required")
	}
	if task.Interval <= 0 {
		return fmt.Errorf("task %s: monitoring interval must be positive", task.TaskID)
	}

	taskCtx, cancel := context.WithCancel(s.base)
	handle := &taskHandle{
		task:      task,
		cancel:    cancel,
		done:      make(chan struct{}),
		startedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	if _, exists := s.tasks[task.TaskID]; exists {
		s.mu.Unlock()
		cancel()
		return fmt.Errorf("task %s: %w", task.TaskID, ErrTaskExists)
	}
	s.tasks[task.TaskID] = handle
	s.mu.Unlock()

	if s.gauge != nil {
		s.gauge.TaskStarted()
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer close(handle.done)
		defer cancel()

		observer := func(rep domain.EffectivenessReport, interventionCount int) {
			handle.mu.Lock()
			handle.rounds++
			handle.interventions = interventionCount
			handle.lastScore = rep.Assessment.OverallScore
			handle.mu.Unlock()
		}

		outcome, final, err := s.loop.Run(taskCtx, task, observer)
		if err != nil {
			s.logger.Error("monitoring task failed to run",
				logging.String("task_id", task.TaskID), logging.Err(err))
		}

		handle.mu.Lock()
		handle.outcome = outcome
		handle.final = final
		handle.mu.Unlock()

		if s.gauge != nil {
			s.gauge.TaskStopped()
		}
	}()

	s.logger.Info("monitoring task started",
		logging.String("task_id", task.TaskID),
		logging.String("post_id", task.TargetPostID))
	return nil
}

// Stop cancels a task and waits for its goroutine to finish, so the
// registry is consistent before the call returns. Side effects of the round
// in progress are not rolled back.
func (s *Supervisor) Stop(taskID string) error {
	s.mu.Lock()
	handle, ok := s.tasks[taskID]
	if ok {
		delete(s.tasks, taskID)
	}
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("task %s: %w", taskID, ErrTaskNotFound)
	}

	handle.cancel()
	<-handle.done

	s.logger.Info("monitoring task stopped", logging.String("task_id", taskID))
	return nil
}

// Status reports the current view of a task. Completed tasks stay visible
// until stopped or until Remove is called.
func (s *Supervisor) Status(taskID string) (TaskStatus, error) {
	s.mu.Lock()
	handle, ok := s.tasks[taskID]
	s.mu.Unlock()

	if !ok {
		return TaskStatus{}, fmt.Errorf("task %s: %w", taskID, ErrTaskNotFound)
	}
	return handle.status(), nil
}

// List returns the status of every registered task.
func (s *Supervisor) List() []TaskStatus {
	s.mu.Lock()
	handles := make([]*taskHandle, 0, len(s.tasks))
	for _, h := range s.tasks {
		handles = append(handles, h)
	}
	s.mu.Unlock()

	statuses := make([]TaskStatus, 0, len(handles))
	for _, h := range handles {
		statuses = append(statuses, h.status())
	}
	return statuses
}

// Remove drops a completed task from the registry without cancelling it.
func (s *Supervisor) Remove(taskID string) {
	s.mu.Lock()
	delete(s.tasks, taskID)
	s.mu.Unlock()
}

// Shutdown cancels all tasks and waits for them to finish or for the
// context to expire.
func (s *Supervisor) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	for _, h := range s.tasks {
		h.cancel()
	}
	s.tasks = make(map[string]*taskHandle)
	s.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("supervisor shutdown: %w", ctx.Err())
	}
}

func (h *taskHandle) status() TaskStatus {
	h.mu.Lock()
	defer h.mu.Unlock()

	status := TaskStatus{
		TaskID:            h.task.TaskID,
		PostID:            h.task.TargetPostID,
		State:             StateRunning,
		Outcome:           h.outcome,
		StartedAt:         h.startedAt,
		Rounds:            h.rounds,
		InterventionCount: h.interventions,
		LastScore:         h.lastScore,
	}
	if h.outcome != "" {
		status.State = StateCompleted
	}
	if h.final != nil {
		status.LastScore = h.final.Assessment.OverallScore
	}
	return status
}
