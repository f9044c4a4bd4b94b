package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Worker drains the job queue, running each generation with retry around
// transient service failures. The iteration loop inside the Controller never
// retries; this is the only place a failed model call is reattempted.
type Worker struct {
	ctrl  *Controller
	genMu *sync.Mutex
	log   *slog.Logger
}

func NewWorker(ctrl *Controller, genMu *sync.Mutex, log *slog.Logger) *Worker {
	return &Worker{ctrl: ctrl, genMu: genMu, log: log}
}

// Process runs one job to completion, retrying retryable failures with
// exponential backoff.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID)
	job.SetStatus(StatusRunning)

	var (
		res     *Result
		lastErr error
	)
	for attempt := range MaxRetries {
		res, lastErr = w.generate(ctx, job.Request)
		if lastErr == nil || !IsRetryable(lastErr) {
			break
		}
		log.Warn("retryable generation error", "attempt", attempt, "error", lastErr)
		select {
		case <-time.After(Backoff(attempt)):
		case <-ctx.Done():
			job.Fail(ctx.Err())
			return
		}
	}

	if lastErr != nil {
		log.Error("generation failed", "error", lastErr)
		job.Fail(lastErr)
		return
	}

	log.Info("generation complete",
		"outcome", res.Outcome,
		"quality", res.Metrics.QualityScore,
		"from_cache", res.FromCache,
	)
	job.Complete(res)
}

// generate serializes access to the controller; its cache store is a plain
// map with no internal locking.
func (w *Worker) generate(ctx context.Context, req Request) (*Result, error) {
	w.genMu.Lock()
	defer w.genMu.Unlock()
	return w.ctrl.Generate(ctx, req)
}
