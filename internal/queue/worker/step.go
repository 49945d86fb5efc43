package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sportnest/sportnest/internal/domain/job"
	"github.com/sportnest/sportnest/internal/notifications"
)

// ProcessOne claims and executes a single job. It reports whether a job was
// available so callers can drain the queue before sleeping.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	claimCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	j, err := w.repo.ClaimNext(claimCtx, w.cfg.WorkerID)
	cancel()

	if err != nil {
		if errors.Is(err, job.ErrJobNotFound) {
			return false, nil
		}
		return false, err
	}

	if w.prom != nil {
		w.prom.JobsInFlight.Inc()
		defer w.prom.JobsInFlight.Dec()
	}

	start := time.Now()
	execErr := w.execute(ctx, j)
	secs := time.Since(start).Seconds()

	if execErr != nil {
		result := w.handleFailure(ctx, j, execErr)
		w.observeJob(j.Type, result, secs)
		return true, nil
	}

	if err := w.repo.MarkDone(ctx, j.ID); err != nil {
		_ = w.repo.MarkFailed(ctx, j.ID, "mark_done_failed: "+err.Error())
		w.observeJob(j.Type, "failed", secs)
		return true, err
	}

	w.observeJob(j.Type, "done", secs)
	w.logger.Info("job done", "jobId", j.ID, "type", j.Type, "attempts", j.Attempts)
	return true, nil
}

func (w *Worker) execute(ctx context.Context, j job.Job) error {
	switch j.Type {
	case job.TypeRegistrationConfirmation:
		p, err := job.DecodeRegistrationConfirmation(j.Payload)
		if err != nil {
			return fmt.Errorf("decode payload: %w", err)
		}
		return w.notifier.SendRegistrationConfirmation(ctx, notifications.SendRegistrationConfirmationInput{
			Email:          p.Email,
			Name:           p.Name,
			EventID:        p.EventID,
			EventName:      p.EventName,
			RegistrationID: p.RegistrationID,
		})
	default:
		return fmt.Errorf("unknown job type %q", j.Type)
	}
}

// handleFailure retries with backoff until attempts run out, then parks the
// job as failed. Returns the metric result label.
func (w *Worker) handleFailure(ctx context.Context, j job.Job, execErr error) string {
	nextAttempt := j.Attempts + 1

	if nextAttempt >= j.MaxAttempts {
		if err := w.repo.MarkFailed(ctx, j.ID, execErr.Error()); err != nil {
			w.logger.Error("mark failed error", "jobId", j.ID, "error", err)
		}
		w.logger.Error("job failed permanently", "jobId", j.ID, "type", j.Type, "attempts", nextAttempt, "error", execErr)
		return "failed"
	}

	runAt := time.Now().UTC().Add(ExponentialBackoff(j.Attempts))
	if err := w.repo.Reschedule(ctx, j.ID, runAt, execErr.Error()); err != nil {
		w.logger.Error("reschedule error", "jobId", j.ID, "error", err)
	}
	w.logger.Warn("job retry scheduled", "jobId", j.ID, "type", j.Type, "attempt", nextAttempt, "runAt", runAt, "error", execErr)
	return "retry"
}

func (w *Worker) observeJob(jobType, result string, secs float64) {
	if w.prom == nil {
		return
	}
	w.prom.JobResults.WithLabelValues(jobType, result).Inc()
	w.prom.JobDuration.WithLabelValues(jobType, result).Observe(secs)
}
