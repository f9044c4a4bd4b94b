package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

const (
	defaultQueueSize = 64
	defaultJobTTL    = time.Hour
)

// Orchestrator queues generation jobs and runs them on a fixed worker pool.
// One Controller is shared across workers; its collaborators are safe for
// concurrent use except the cache, so the generation call itself is
// serialized.
type Orchestrator struct {
	jobs    *JobStore
	queue   chan *Job
	ctrl    *Controller
	log     *slog.Logger
	workers int

	genMu  sync.Mutex
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewOrchestrator creates the pipeline around a configured Controller.
func NewOrchestrator(ctrl *Controller, workers int, log *slog.Logger) *Orchestrator {
	if workers <= 0 {
		workers = 1
	}
	return &Orchestrator{
		jobs:    NewJobStore(defaultJobTTL),
		queue:   make(chan *Job, defaultQueueSize),
		ctrl:    ctrl,
		log:     log,
		workers: workers,
	}
}

// Start launches worker goroutines.
func (o *Orchestrator) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	o.cancel = cancel

	for range o.workers {
		o.wg.Add(1)
		go func() {
			defer o.wg.Done()
			w := NewWorker(o.ctrl, &o.genMu, o.log)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-o.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Job store cleanup.
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				o.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the pipeline.
func (o *Orchestrator) Stop() {
	if o.cancel != nil {
		o.cancel()
	}
	close(o.queue)
	o.wg.Wait()
}

// Submit queues a new job for processing.
func (o *Orchestrator) Submit(job *Job) error {
	o.jobs.Put(job)
	select {
	case o.queue <- job:
		return nil
	default:
		job.Fail(fmt.Errorf("job queue is full (%d)", cap(o.queue)))
		return fmt.Errorf("job queue is full (%d)", cap(o.queue))
	}
}

// GetJob returns a job by ID.
func (o *Orchestrator) GetJob(id string) *Job {
	return o.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (o *Orchestrator) QueueDepth() int {
	return len(o.queue)
}

// Controller exposes the shared controller for synchronous use by API
// handlers, paired with the same lock the workers hold while generating.
func (o *Orchestrator) Controller() *Controller {
	return o.ctrl
}
