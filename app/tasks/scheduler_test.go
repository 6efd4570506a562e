package tasks

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/lysyi3m/news-watch/app/notify"
	"github.com/lysyi3m/news-watch/app/watch"
)

type countingTask struct {
	Task
	failures int32
	calls    atomic.Int32
	done     chan struct{}
}

func newCountingTask(failures int32) *countingTask {
	return &countingTask{
		Task:     NewTask(TaskTypeDispatchAlert, "w1"),
		failures: failures,
		done:     make(chan struct{}),
	}
}

func (t *countingTask) Execute(ctx context.Context) error {
	call := t.calls.Add(1)
	if call <= t.failures {
		return errors.New("temporary failure")
	}
	close(t.done)
	return nil
}

func TestSchedulerRunsTask(t *testing.T) {
	s := NewScheduler(2)
	s.Start()
	defer s.Stop()

	task := newCountingTask(0)
	if err := s.EnqueueTask(task); err != nil {
		t.Fatal(err)
	}

	select {
	case <-task.done:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected task to complete")
	}

	if task.calls.Load() != 1 {
		t.Errorf("Expected 1 call, got %d", task.calls.Load())
	}
}

func TestSchedulerRetriesFailedTask(t *testing.T) {
	s := NewScheduler(1)
	s.retryBase = time.Millisecond
	s.Start()
	defer s.Stop()

	task := newCountingTask(2)
	if err := s.EnqueueTask(task); err != nil {
		t.Fatal(err)
	}

	select {
	case <-task.done:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected task to succeed after retries")
	}

	if task.calls.Load() != 3 {
		t.Errorf("Expected 3 calls, got %d", task.calls.Load())
	}
	if task.RetryCount != 2 {
		t.Errorf("Expected retry count 2, got %d", task.RetryCount)
	}
}

func TestSchedulerGivesUpAfterMaxRetries(t *testing.T) {
	s := NewScheduler(1)
	s.retryBase = time.Millisecond
	s.Start()
	defer s.Stop()

	task := newCountingTask(100)
	if err := s.EnqueueTask(task); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for task.calls.Load() < DefaultMaxRetries+1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(50 * time.Millisecond)

	if task.calls.Load() != DefaultMaxRetries+1 {
		t.Errorf("Expected %d calls, got %d", DefaultMaxRetries+1, task.calls.Load())
	}
}

func TestSchedulerStopWaitsForPendingRetry(t *testing.T) {
	s := NewScheduler(1)
	s.retryBase = time.Hour
	s.Start()

	task := newCountingTask(1)
	if err := s.EnqueueTask(task); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for task.calls.Load() < 1 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected Stop to return once the pending retry is cancelled")
	}

	if task.calls.Load() != 1 {
		t.Errorf("Expected 1 call, got %d", task.calls.Load())
	}
	if len(s.taskQueue) != 0 {
		t.Errorf("Expected no re-enqueued task after Stop, got %d", len(s.taskQueue))
	}
}

func TestNewTaskBookkeeping(t *testing.T) {
	task := NewTask(TaskTypeDispatchAlert, "w1")

	if _, err := uuid.Parse(task.ID); err != nil {
		t.Errorf("Expected a UUID task id, got %q", task.ID)
	}
	if task.Duration() != 0 {
		t.Errorf("Expected zero duration before start, got %v", task.Duration())
	}

	for i := 0; i < DefaultMaxRetries; i++ {
		if !task.CanRetry() {
			t.Fatalf("Expected retry %d to be allowed", i+1)
		}
		task.RetryCount++
	}
	if task.CanRetry() {
		t.Errorf("Expected no retry after %d attempts", DefaultMaxRetries)
	}
}

func TestSchedulerRetryDelay(t *testing.T) {
	s := NewScheduler(1)

	expected := map[int]time.Duration{
		1: time.Second,
		2: 2 * time.Second,
		3: 4 * time.Second,
		6: 30 * time.Second,
	}
	for retry, want := range expected {
		if got := s.retryDelay(retry); got != want {
			t.Errorf("Expected delay %v for retry %d, got %v", want, retry, got)
		}
	}
}

func TestSchedulerQueueFull(t *testing.T) {
	s := NewScheduler(1)

	for i := 0; i < queueSize; i++ {
		if err := s.EnqueueTask(newCountingTask(0)); err != nil {
			t.Fatalf("Unexpected error at %d: %v", i, err)
		}
	}

	if err := s.EnqueueTask(newCountingTask(0)); err == nil {
		t.Error("Expected error when queue is full")
	}
}

type stubDispatcher struct {
	outcome notify.Outcome
	err     error
	alerts  []notify.Alert
}

func (d *stubDispatcher) Dispatch(_ context.Context, alert notify.Alert) (notify.Outcome, error) {
	d.alerts = append(d.alerts, alert)
	return d.outcome, d.err
}

func TestDispatchAlertTaskNarrowsChannelsOnFailure(t *testing.T) {
	dispatcher := &stubDispatcher{
		outcome: notify.Outcome{Delivered: []string{notify.ChannelPush}},
		err:     errors.New("slack: HTTP error: 502 Bad Gateway"),
	}
	alert := notify.Alert{
		Notification: watch.Notification{WatcherID: "w1", ArticleID: "a1"},
		Channels:     watch.Channels{Push: true, Slack: true},
	}

	task := NewDispatchAlertTask(dispatcher, alert)
	if task.Meta().WatcherID != "w1" {
		t.Errorf("Expected watcher id 'w1', got '%s'", task.Meta().WatcherID)
	}

	if err := task.Execute(context.Background()); err == nil {
		t.Fatal("Expected error from failed dispatch")
	}

	if task.Alert.Channels != (watch.Channels{Slack: true}) {
		t.Errorf("Expected only slack left to retry, got %+v", task.Alert.Channels)
	}
}

func TestDispatchAlertTaskSuppressed(t *testing.T) {
	dispatcher := &stubDispatcher{outcome: notify.Outcome{Suppressed: notify.ReasonQuietHours}}

	task := NewDispatchAlertTask(dispatcher, notify.Alert{Channels: watch.Channels{Push: true}})

	if err := task.Execute(context.Background()); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if len(dispatcher.alerts) != 1 {
		t.Errorf("Expected 1 dispatch, got %d", len(dispatcher.alerts))
	}
}

func TestDispatchAlertTaskCancelled(t *testing.T) {
	dispatcher := &stubDispatcher{}
	task := NewDispatchAlertTask(dispatcher, notify.Alert{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := task.Execute(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if len(dispatcher.alerts) != 0 {
		t.Errorf("Expected no dispatch, got %d", len(dispatcher.alerts))
	}
}
