package tasks

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type TaskType string

const TaskTypeDispatchAlert TaskType = "dispatch_alert"

// DefaultMaxRetries bounds redelivery of a failed alert.
const DefaultMaxRetries = 3

// TaskInterface is anything the scheduler can queue. Meta hands back the
// shared bookkeeping the scheduler logs and retries with.
type TaskInterface interface {
	Execute(ctx context.Context) error
	Meta() *Task
}

// Task carries the bookkeeping shared by every task type. Concrete tasks
// embed it and add Execute.
type Task struct {
	ID         string
	Type       TaskType
	WatcherID  string
	RetryCount int
	MaxRetries int
	CreatedAt  time.Time
	StartedAt  *time.Time
}

func NewTask(taskType TaskType, watcherID string) Task {
	return Task{
		ID:         uuid.NewString(),
		Type:       taskType,
		WatcherID:  watcherID,
		MaxRetries: DefaultMaxRetries,
		CreatedAt:  time.Now(),
	}
}

func (t *Task) Meta() *Task { return t }

// CanRetry is false once RetryCount reaches MaxRetries.
func (t *Task) CanRetry() bool {
	return t.RetryCount < t.MaxRetries
}

func (t *Task) markStarted(now time.Time) {
	t.StartedAt = &now
}

// Duration is how long the current attempt has been running, zero before
// the first attempt.
func (t *Task) Duration() time.Duration {
	if t.StartedAt == nil {
		return 0
	}
	return time.Since(*t.StartedAt)
}
