package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"auricle/internal/logging"
)

// Job is one scheduled unit of pipeline work.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Status is a point-in-time snapshot of a registered job.
type Status struct {
	Name     string    `json:"name"`
	Interval string    `json:"interval"`
	Runs     int64     `json:"runs"`
	LastRun  time.Time `json:"last_run,omitzero"`
	LastErr  string    `json:"last_error,omitempty"`
}

type jobState struct {
	job     Job
	mu      sync.Mutex
	runs    int64
	lastRun time.Time
	lastErr string
}

// Runner drives registered jobs, one goroutine per job. A job's body runs
// synchronously inside its loop, so a tick firing mid-run is coalesced into
// at most one pending execution; a job never overlaps itself.
type Runner struct {
	logger *slog.Logger

	mu      sync.Mutex
	jobs    []*jobState
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// NewRunner constructs an empty runner.
func NewRunner(logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{logger: logging.NewComponentLogger(logger, "schedule")}
}

// Register adds a job. Must be called before Start.
func (r *Runner) Register(job Job) error {
	if job.Name == "" {
		return errors.New("schedule: job name required")
	}
	if job.Interval <= 0 {
		return fmt.Errorf("schedule: job %s: interval must be positive", job.Name)
	}
	if job.Run == nil {
		return fmt.Errorf("schedule: job %s: run function required", job.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return errors.New("schedule: runner already started")
	}
	r.jobs = append(r.jobs, &jobState{job: job})
	return nil
}

// Start launches every registered job loop. The loops stop when ctx is
// canceled or Stop is called.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return errors.New("schedule: runner already started")
	}
	if len(r.jobs) == 0 {
		return errors.New("schedule: no jobs registered")
	}
	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.started = true
	for _, state := range r.jobs {
		r.wg.Add(1)
		go r.loop(runCtx, state)
	}
	r.logger.Info("scheduler started", logging.Int("jobs", len(r.jobs)))
	return nil
}

// Stop cancels the run context and waits for in-progress runs to finish.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	r.wg.Wait()
	r.logger.Info("scheduler stopped")
}

// Snapshot reports the current state of every registered job.
func (r *Runner) Snapshot() []Status {
	r.mu.Lock()
	jobs := make([]*jobState, len(r.jobs))
	copy(jobs, r.jobs)
	r.mu.Unlock()

	out := make([]Status, 0, len(jobs))
	for _, state := range jobs {
		state.mu.Lock()
		out = append(out, Status{
			Name:     state.job.Name,
			Interval: state.job.Interval.String(),
			Runs:     state.runs,
			LastRun:  state.lastRun,
			LastErr:  state.lastErr,
		})
		state.mu.Unlock()
	}
	return out
}

func (r *Runner) loop(ctx context.Context, state *jobState) {
	defer r.wg.Done()
	ticker := time.NewTicker(state.job.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.runOnce(ctx, state)
		}
	}
}

// runOnce executes the job body, recovering panics at the runner boundary so
// a faulty job stays registered.
func (r *Runner) runOnce(ctx context.Context, state *jobState) {
	started := time.Now()
	var runErr error
	func() {
		defer func() {
			if rec := recover(); rec != nil {
				runErr = fmt.Errorf("panic: %v", rec)
			}
		}()
		runErr = state.job.Run(ctx)
	}()

	state.mu.Lock()
	state.runs++
	state.lastRun = started
	if runErr != nil {
		state.lastErr = runErr.Error()
	} else {
		state.lastErr = ""
	}
	state.mu.Unlock()

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		r.logger.Warn("job run failed",
			logging.String("job", state.job.Name),
			logging.Duration("elapsed", time.Since(started)),
			logging.Error(runErr))
	}
}
