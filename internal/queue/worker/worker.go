package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sportnest/sportnest/internal/domain/job"
	"github.com/sportnest/sportnest/internal/notifications"
	"github.com/sportnest/sportnest/internal/observability"
)

type JobsRepository interface {
	ClaimNext(ctx context.Context, workerID string) (job.Job, error)
	MarkDone(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, errMsg string) error
	Reschedule(ctx context.Context, id string, runAt time.Time, errMsg string) error
	RequeueStaleProcessing(ctx context.Context, lockTTL time.Duration) (int64, error)
}

type Config struct {
	PollInterval  time.Duration
	WorkerID      string
	Concurrency   int
	LockTTL       time.Duration
	ShutdownGrace time.Duration
}

type Worker struct {
	cfg      Config
	repo     JobsRepository
	notifier notifications.Notifier
	logger   *slog.Logger
	prom     *observability.Prom

	readyMu sync.RWMutex
	ready   bool
}

func New(cfg Config, repo JobsRepository, notifier notifications.Notifier, logger *slog.Logger, prom *observability.Prom) *Worker {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 200 * time.Millisecond
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 60 * time.Second
	}

	return &Worker{
		cfg:      cfg,
		repo:     repo,
		notifier: notifier,
		logger:   logger,
		prom:     prom,
	}
}

// Run polls for runnable jobs until the context is cancelled. Each goroutine
// claims with SKIP LOCKED so concurrency within and across processes is safe.
func (w *Worker) Run(ctx context.Context) error {
	w.setReady(true)
	defer w.setReady(false)

	var wg sync.WaitGroup

	for i := 0; i < w.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.pollLoop(ctx)
		}()
	}

	// one background sweep for jobs whose worker died holding the lock
	wg.Add(1)
	go func() {
		defer wg.Done()
		w.staleSweepLoop(ctx)
	}()

	wg.Wait()
	w.logger.Info("worker shutdown complete", "workerId", w.cfg.WorkerID)
	return nil
}

func (w *Worker) pollLoop(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// drain everything runnable before sleeping again
			for {
				processed, err := w.ProcessOne(ctx)
				if err != nil {
					w.logger.Error("job processing error", "error", err)
					break
				}
				if !processed {
					break
				}
			}
		}
	}
}

func (w *Worker) staleSweepLoop(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.LockTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := w.repo.RequeueStaleProcessing(ctx, w.cfg.LockTTL)
			if err != nil {
				w.logger.Error("stale requeue failed", "error", err)
				continue
			}
			if n > 0 {
				w.logger.Warn("requeued stale jobs", "count", n)
			}
		}
	}
}

func (w *Worker) setReady(v bool) {
	w.readyMu.Lock()
	w.ready = v
	w.readyMu.Unlock()
}
