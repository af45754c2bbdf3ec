package jobs

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/counselflow/counselflow-api/pkg/logger"
)

// Job represents a background task
type Job func(ctx context.Context) error

// Worker manages background jobs and scheduled tasks
type Worker struct {
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	queue         chan namedJob
	asyncSem      chan struct{}
	maxConcurrent int
	closed        atomic.Bool
	stats         WorkerStats
	scheduled     map[string]*ScheduleStatus
	statsMu       sync.RWMutex
}

type namedJob struct {
	name string
	run  Job
}

// WorkerStats holds statistics about the worker
type WorkerStats struct {
	ActiveJobs    int              `json:"activeJobs"`
	CompletedJobs int64            `json:"completedJobs"`
	FailedJobs    int64            `json:"failedJobs"`
	QueueLength   int              `json:"queueLength"`
	MaxConcurrent int              `json:"maxConcurrent"`
	Scheduled     []ScheduleStatus `json:"scheduled"`
}

// ScheduleStatus describes one recurring job
type ScheduleStatus struct {
	Name      string     `json:"name"`
	Every     string     `json:"every"`
	LastRun   *time.Time `json:"lastRun"`
	LastError string     `json:"lastError,omitempty"`
	NextRun   *time.Time `json:"nextRun"`
}

// NewWorker creates a worker with N concurrent processors
func NewWorker(numWorkers int) *Worker {
	if numWorkers < 1 {
		numWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	// Allow 2x workers for async jobs
	asyncLimit := numWorkers * 2
	if asyncLimit < 10 {
		asyncLimit = 10
	}

	w := &Worker{
		ctx:           ctx,
		cancel:        cancel,
		queue:         make(chan namedJob, 100),
		asyncSem:      make(chan struct{}, asyncLimit),
		maxConcurrent: asyncLimit,
		scheduled:     make(map[string]*ScheduleStatus),
	}

	// Start worker goroutines
	for i := 0; i < numWorkers; i++ {
		w.wg.Add(1)
		go w.process(i)
	}

	return w
}

// Enqueue adds a job to be processed by the worker pool.
// When the queue is full the job runs on the caller's goroutine.
func (w *Worker) Enqueue(name string, job Job) {
	if w.closed.Load() {
		logger.Warn("worker stopped, dropping job", "job", name)
		return
	}
	select {
	case w.queue <- namedJob{name: name, run: job}:
	default:
		logger.Warn("worker queue full, running job synchronously", "job", name)
		w.run("sync", name, job)
	}
}

// EnqueueAsync runs a job in a new goroutine (fire-and-forget), bounded by semaphore
func (w *Worker) EnqueueAsync(name string, job Job) {
	if w.closed.Load() {
		logger.Warn("worker stopped, dropping job", "job", name)
		return
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		// Acquire semaphore to limit concurrency
		w.asyncSem <- struct{}{}
		defer func() { <-w.asyncSem }()

		w.run("async", name, job)
	}()
}

// process handles jobs from the queue
func (w *Worker) process(workerID int) {
	defer w.wg.Done()
	source := fmt.Sprintf("worker-%d", workerID)
	for {
		select {
		case <-w.ctx.Done():
			return
		case job, ok := <-w.queue:
			if !ok {
				return
			}
			w.run(source, job.name, job.run)
		}
	}
}

// run executes job with stats tracking and panic recovery, returning its error
func (w *Worker) run(source, name string, job Job) (err error) {
	w.trackJobStart()
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
		if err != nil {
			logger.Error("job failed", "job", name, "source", source, "error", err)
			w.trackJobFailure()
		} else {
			logger.Debug("job completed", "job", name, "source", source, "duration", time.Since(start))
		}
		w.trackJobEnd()
	}()
	return job(w.ctx)
}

// ScheduleEvery runs a job at fixed intervals. The first run happens after the interval (not at startup).
func (w *Worker) ScheduleEvery(name string, interval time.Duration, job Job) {
	w.schedule(name, interval, false, job)
}

// ScheduleEveryImmediate runs a job once at startup, then at fixed intervals. Use this when the process
// may restart often so jobs run soon after start instead of waiting for the first interval.
func (w *Worker) ScheduleEveryImmediate(name string, interval time.Duration, job Job) {
	w.schedule(name, interval, true, job)
}

func (w *Worker) schedule(name string, interval time.Duration, immediate bool, job Job) {
	w.register(name, interval.String(), time.Now().Add(interval))
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if immediate {
			w.runScheduled(name, interval, job)
		}
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-w.ctx.Done():
				return
			case <-ticker.C:
				w.runScheduled(name, interval, job)
			}
		}
	}()
}

// ScheduleDaily runs a job every day at hour:minute UTC
func (w *Worker) ScheduleDaily(name string, hour, minute int, job Job) {
	next := NextDailyRun(time.Now(), hour, minute)
	w.register(name, fmt.Sprintf("daily at %02d:%02d UTC", hour, minute), next)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for {
			timer := time.NewTimer(time.Until(next))
			select {
			case <-w.ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				w.runScheduled(name, 0, job)
				next = NextDailyRun(time.Now(), hour, minute)
				w.setNextRun(name, next)
			}
		}
	}()
}

// NextDailyRun returns the first hour:minute UTC strictly after now
func NextDailyRun(now time.Time, hour, minute int) time.Time {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, time.UTC)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

func (w *Worker) runScheduled(name string, interval time.Duration, job Job) {
	started := time.Now().UTC()
	err := w.run("scheduler", name, job)

	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	if s, ok := w.scheduled[name]; ok {
		s.LastRun = &started
		s.LastError = ""
		if err != nil {
			s.LastError = err.Error()
		}
		if interval > 0 {
			next := started.Add(interval)
			s.NextRun = &next
		}
	}
}

func (w *Worker) register(name, every string, next time.Time) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	next = next.UTC()
	w.scheduled[name] = &ScheduleStatus{Name: name, Every: every, NextRun: &next}
}

func (w *Worker) setNextRun(name string, next time.Time) {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	if s, ok := w.scheduled[name]; ok {
		next = next.UTC()
		s.NextRun = &next
	}
}

// Shutdown gracefully stops all workers and waits for running jobs
func (w *Worker) Shutdown() {
	if !w.closed.CompareAndSwap(false, true) {
		return
	}
	w.cancel()
	w.wg.Wait()
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
	stats.Scheduled = make([]ScheduleStatus, 0, len(w.scheduled))
	for _, s := range w.scheduled {
		stats.Scheduled = append(stats.Scheduled, *s)
	}
	sort.Slice(stats.Scheduled, func(i, j int) bool {
		return stats.Scheduled[i].Name < stats.Scheduled[j].Name
	})
	return stats
}

func (w *Worker) trackJobStart() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs++
}

// trackJobEnd counts every finished job; FailedJobs is the failing subset
func (w *Worker) trackJobEnd() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.ActiveJobs--
	w.stats.CompletedJobs++
}

func (w *Worker) trackJobFailure() {
	w.statsMu.Lock()
	defer w.statsMu.Unlock()
	w.stats.FailedJobs++
}
