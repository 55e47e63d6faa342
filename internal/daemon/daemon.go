package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"auricle/internal/api"
	"auricle/internal/config"
	"auricle/internal/corpus"
	"auricle/internal/logging"
	"auricle/internal/schedule"
)

// Daemon owns the scheduler and the HTTP API and enforces single-instance
// execution through a file lock.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *corpus.Store
	stages *Stages
	runner *schedule.Runner
	server *apiServer

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	cancel  context.CancelFunc
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *corpus.Store, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil {
		return nil, errors.New("daemon requires config and store")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	stages := NewStages(store, cfg, logger)
	runner := schedule.NewRunner(logger)
	jobs := []schedule.Job{
		{Name: "resolve", Interval: time.Duration(cfg.Pipeline.ResolveInterval) * time.Second, Run: func(ctx context.Context) error {
			_, err := stages.Resolver.ResolveDue(ctx)
			return err
		}},
		{Name: "fetch", Interval: time.Duration(cfg.Pipeline.FetchInterval) * time.Second, Run: func(ctx context.Context) error {
			_, err := stages.Fetcher.Run(ctx, cfg.Pipeline.FetchBatch)
			return err
		}},
		{Name: "enrich", Interval: time.Duration(cfg.Pipeline.EnrichInterval) * time.Second, Run: func(ctx context.Context) error {
			_, err := stages.Enricher.Run(ctx, cfg.Pipeline.EnrichBatch)
			return err
		}},
		{Name: "aggregate", Interval: time.Duration(cfg.Pipeline.AggregateInterval) * time.Second, Run: func(ctx context.Context) error {
			_, err := stages.Aggregator.Run(ctx)
			return err
		}},
		{Name: "narrate", Interval: time.Duration(cfg.Pipeline.NarrateInterval) * time.Second, Run: func(ctx context.Context) error {
			_, err := stages.Narrator.Run(ctx, cfg.Pipeline.NarrateBatch)
			return err
		}},
	}
	for _, job := range jobs {
		if err := runner.Register(job); err != nil {
			return nil, err
		}
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "auricled.lock")
	d := &Daemon{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "daemon"),
		store:    store,
		stages:   stages,
		runner:   runner,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}
	d.server = newAPIServer(cfg, d, logger)
	return d, nil
}

// Start acquires the daemon lock, then launches the scheduler and API.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another auricle daemon instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	d.cancel = cancel
	if err := d.runner.Start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start scheduler: %w", err)
	}
	if err := d.server.start(runCtx); err != nil {
		d.runner.Stop()
		cancel()
		_ = d.lock.Unlock()
		return fmt.Errorf("start api: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("daemon started", logging.String("lock", d.lockPath))
	return nil
}

// Stop shuts down the API and scheduler and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}
	d.server.stop()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.runner.Stop()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("daemon stopped")
}

// Close stops the daemon and closes the store.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// APIAddr returns the bound API address, or "" before Start.
func (d *Daemon) APIAddr() string {
	return d.server.addr()
}

// Status reports daemon runtime information and corpus counters.
func (d *Daemon) Status(ctx context.Context) (api.DaemonStatus, error) {
	stats, err := d.store.CorpusStats(ctx)
	if err != nil {
		return api.DaemonStatus{}, err
	}
	byStage := make(api.StageCounts, len(stats.ByStage))
	for stage, count := range stats.ByStage {
		name := string(stage)
		if name == "" {
			name = "pending"
		}
		byStage[name] = count
	}
	return api.DaemonStatus{
		Running:      d.running.Load(),
		CorpusDBPath: d.store.Path(),
		LockFilePath: d.lockPath,
		Feeds:        stats.Feeds,
		Items:        stats.Items,
		ByStage:      byStage,
		Jobs:         d.runner.Snapshot(),
	}, nil
}
