package poller

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/lysyi3m/news-watch/app/metrics"
)

var ErrPollInProgress = errors.New("poll already in progress")

// Status tells apart "polling", "last poll succeeded at T" and "last poll
// failed with message M".
type Status struct {
	Polling  bool       `json:"polling"`
	LastPoll *time.Time `json:"lastPoll"`
	Error    string     `json:"error,omitempty"`
}

// runner serializes poll cycles of one kind. A cycle started while another
// is running is rejected, never queued.
type runner struct {
	kind     string
	cycle    func(ctx context.Context) error
	interval func() time.Duration
	now      func() time.Time

	mu       sync.Mutex
	polling  bool
	lastPoll *time.Time
	lastErr  string

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newRunner(kind string, cycle func(ctx context.Context) error, interval func() time.Duration, now func() time.Time) *runner {
	return &runner{
		kind:     kind,
		cycle:    cycle,
		interval: interval,
		now:      now,
	}
}

func (r *runner) status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Status{Polling: r.polling, Error: r.lastErr}
	if r.lastPoll != nil {
		t := *r.lastPoll
		s.LastPoll = &t
	}
	return s
}

func (r *runner) begin() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.polling {
		return ErrPollInProgress
	}
	r.polling = true
	return nil
}

func (r *runner) execute(ctx context.Context) error {
	start := time.Now()
	err := r.cycle(ctx)
	finished := r.now().UTC()

	r.mu.Lock()
	r.polling = false
	r.lastPoll = &finished
	r.lastErr = ""
	if err != nil {
		r.lastErr = err.Error()
	}
	r.mu.Unlock()

	metrics.PollDuration.WithLabelValues(r.kind).Observe(time.Since(start).Seconds())
	metrics.PollsTotal.WithLabelValues(r.kind, metrics.StatusLabel(err)).Inc()

	if err != nil {
		slog.Error("Poll failed", "kind", r.kind, "duration", time.Since(start).String(), "error", err)
	}
	return err
}

// pollNow runs one cycle and waits for it.
func (r *runner) pollNow(ctx context.Context) error {
	if err := r.begin(); err != nil {
		return err
	}
	return r.execute(ctx)
}

// trigger starts one cycle in the background.
func (r *runner) trigger(ctx context.Context) error {
	if err := r.begin(); err != nil {
		return err
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.execute(context.WithoutCancel(ctx))
	}()
	return nil
}

// start polls immediately and then every interval. The interval is re-read
// after each cycle so settings changes apply to the next wait.
func (r *runner) start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		timer := time.NewTimer(0)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-timer.C:
				if err := r.pollNow(ctx); errors.Is(err, ErrPollInProgress) {
					slog.Debug("Poll skipped, previous poll still running", "kind", r.kind)
				}
				timer.Reset(r.interval())
			}
		}
	}()
}

func (r *runner) stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}
