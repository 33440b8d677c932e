package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/recaudoseguro/recaudo-api/pkg/logger"
)

// Job represents a background task
type Job func(ctx context.Context) error

type namedJob struct {
	name string
	run  Job
}

// Worker manages background jobs and scheduled tasks
type Worker struct {
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	queue    chan namedJob
	asyncSem chan struct{}
	closing  sync.Once
	stopped  bool
	stopMu   sync.RWMutex

	maxConcurrent int
	stats         WorkerStats
	statsMu       sync.RWMutex
}

// WorkerStats holds statistics about the worker.
// CompletedJobs counts every finished job; FailedJobs is the subset that errored.
type WorkerStats struct {
	ActiveJobs    int              `json:"active_jobs"`
	CompletedJobs int64            `json:"completed_jobs"`
	FailedJobs    int64            `json:"failed_jobs"`
	QueueLength   int              `json:"queue_length"`
	MaxConcurrent int              `json:"max_concurrent"`
	LastRun       map[string]int64 `json:"last_run"`
}

// NewWorker creates a worker with N concurrent processors
func NewWorker(numWorkers int) *Worker {
	if numWorkers < 1 {
		numWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	asyncLimit := max(numWorkers*2, 10)

	w := &Worker{
		ctx:           ctx,
		cancel:        cancel,
		queue:         make(chan namedJob, 100),
		asyncSem:      make(chan struct{}, asyncLimit),
		maxConcurrent: asyncLimit,
		stats:         WorkerStats{LastRun: map[string]int64{}},
	}

	for i := 0; i < numWorkers; i++ {
		w.wg.Add(1)
		go w.process(i)
	}

	return w
}

// Enqueue adds a job to be processed by the worker pool. When the queue is
// full the job runs on the caller's goroutine.
func (w *Worker) Enqueue(name string, job Job) {
	w.stopMu.RLock()
	defer w.stopMu.RUnlock()
	if w.stopped {
		logger.Warn("[Worker] Dropping job after shutdown", slog.String("job", name))
		return
	}
	select {
	case w.queue <- namedJob{name: name, run: job}:
	default:
		logger.Warn("[Worker] Queue full, running job synchronously", slog.String("job", name))
		w.run(namedJob{name: name, run: job}, "sync")
	}
}

// EnqueueAsync runs a job in a new goroutine, bounded by a semaphore
func (w *Worker) EnqueueAsync(name string, job Job) {
	w.stopMu.RLock()
	defer w.stopMu.RUnlock()
	if w.stopped {
		logger.Warn("[Worker] Dropping async job after shutdown", slog.String("job", name))
		return
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		select {
		case w.asyncSem <- struct{}{}:
		case <-w.ctx.Done():
			return
		}
		defer func() { <-w.asyncSem }()

		w.run(namedJob{name: name, run: job}, "async")
	}()
}

func (w *Worker) process(workerID int) {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case job, ok := <-w.queue:
			if !ok {
				return
			}
			w.run(job, fmt.Sprintf("worker-%d", workerID))
		}
	}
}

// run executes one job with panic recovery and bookkeeping
func (w *Worker) run(job namedJob, runner string) {
	w.trackJobStart()
	start := time.Now()
	failed := false

	defer func() {
		if r := recover(); r != nil {
			logger.Error("[Worker] Job panic",
				slog.String("job", job.name), slog.String("runner", runner), slog.Any("panic", r))
			failed = true
		}
		w.trackJobEnd(job.name, failed)
	}()

	if err := job.run(w.ctx); err != nil {
		failed = true
		logger.Error("[Worker] Job error",
			slog.String("job", job.name), slog.String("runner", runner), slog.String("error", err.Error()))
		return
	}
	logger.Info("[Worker] Job completed",
		slog.String("job", job.name), slog.String("runner", runner), slog.Duration("elapsed", time.Since(start)))
}

// ScheduleEvery runs a job at fixed intervals. The first run happens after the interval.
func (w *Worker) ScheduleEvery(name string, interval time.Duration, job Job) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				w.run(namedJob{name: name, run: job}, "scheduler")
			}
		}
	}()
}

// ScheduleDaily runs a job every day at hour:00 in loc
func (w *Worker) ScheduleDaily(name string, hour int, loc *time.Location, job Job) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			timer := time.NewTimer(time.Until(NextDailyRun(time.Now(), hour, loc)))
			select {
			case <-w.ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				w.run(namedJob{name: name, run: job}, "scheduler")
			}
		}
	}()
}

// NextDailyRun returns the first hour:00 in loc strictly after now
func NextDailyRun(now time.Time, hour int, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	next := time.Date(local.Year(), local.Month(), local.Day(), hour, 0, 0, 0, loc)
	if !next.After(local) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// Shutdown stops accepting jobs and waits for running ones to finish
func (w *Worker) Shutdown() {
	w.closing.Do(func() {
		w.stopMu.Lock()
		w.stopped = true
		w.stopMu.Unlock()

		w.cancel()
		close(w.queue)
		w.wg.Wait()
	})
}

// Context returns the worker's context for checking cancellation
func (w *Worker) Context() context.Context {
	return w.ctx
}

// GetStats returns the current worker statistics
func (w *Worker) GetStats() WorkerStats {
	w.statsMu.RLock()
	defer w.statsMu.RUnlock()
	stats := w.stats
	stats.QueueLength = len(w.queue)
	stats.MaxConcurrent = w.maxConcurrent
	stats.LastRun = make(map[string]int64, len(w.stats.LastRun))
	for k, v := range w.stats.LastRun {
		stats.LastRun[k] = v
	}
	return stats
}

func (w *Worker) trackJobStart() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs++
}

func (w *Worker) trackJobEnd(name string, failed bool) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs--
	w.stats.CompletedJobs++
	if failed {
		w.stats.FailedJobs++
	}
	w.stats.LastRun[name] = time.Now().Unix()
}
