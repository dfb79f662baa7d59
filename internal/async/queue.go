package async

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/saferoad-advisor/constants"
	"github.com/joseph-ayodele/saferoad-advisor/internal/common"
	"github.com/joseph-ayodele/saferoad-advisor/internal/report"
)

var (
	ErrQueueFull   = errors.New("analysis queue full")
	ErrQueueClosed = errors.New("analysis queue shutting down")
)

type AnalysisQueue struct {
	analyzer Analyzer
	store    *Store
	logger   *slog.Logger
	workers  int
	timeout  time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*AnalysisQueue)

func WithWorkers(n int) Option {
	return func(q *AnalysisQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}
func WithQueueSize(n int) Option {
	return func(q *AnalysisQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}
func WithProcessTimeout(d time.Duration) Option {
	return func(q *AnalysisQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}
func WithStore(s *Store) Option {
	return func(q *AnalysisQueue) {
		if s != nil {
			q.store = s
		}
	}
}

func NewAnalysisQueue(a Analyzer, logger *slog.Logger, opts ...Option) *AnalysisQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &AnalysisQueue{
		analyzer: a,
		logger:   logger,
		workers:  4,
		timeout:  2 * time.Minute,
		ch:       make(chan Job, 64),
	}
	for _, o := range opts {
		o(q)
	}
	if q.store == nil {
		q.store, _ = NewStore(0)
	}
	q.start()
	return q
}

func (q *AnalysisQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Debug("async.worker.started", "worker_id", workerID)
				for job := range q.ch {
					q.run(workerID, job)
				}
				q.logger.Debug("async.worker.stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *AnalysisQueue) run(workerID int, job Job) {
	started := time.Now().UTC()
	q.store.Update(job.ID, func(r *Record) {
		r.Status = constants.JobStatusRunning
		r.StartedAt = &started
	})

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()
	ctx = common.WithJobID(ctx, job.ID)
	if job.RequestID != "" {
		ctx = common.WithRequestID(ctx, job.RequestID)
	}

	defer func() {
		if job.RemoveFile && job.Path != "" {
			if err := os.Remove(job.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
				q.logger.Warn("async.job.cleanup_failed", "job_id", job.ID, "path", job.Path, "error", err)
			}
		}
		if rec := recover(); rec != nil {
			q.logger.Error("async.job.panic", "worker_id", workerID, "job_id", job.ID, "panic", rec)
			q.finish(job.ID, constants.JobStatusFailed, nil, "internal error")
		}
	}()

	// the analyzer degrades on timeout instead of failing, so a report always exists
	rep := q.analyze(ctx, job)
	q.finish(job.ID, constants.JobStatusDone, &rep, "")
	q.logger.Info("async.job.done",
		"worker_id", workerID,
		"job_id", job.ID,
		"report_id", rep.ID,
		"matches", len(rep.Matches),
		"elapsed_ms", time.Since(started).Milliseconds(),
	)
}

func (q *AnalysisQueue) analyze(ctx context.Context, job Job) report.Report {
	if job.Path != "" {
		return q.analyzer.AnalyzePDF(ctx, job.Path)
	}
	return q.analyzer.AnalyzeText(ctx, job.Text)
}

func (q *AnalysisQueue) finish(id string, status constants.JobStatus, rep *report.Report, errMsg string) {
	done := time.Now().UTC()
	q.store.Update(id, func(r *Record) {
		r.Status = status
		r.Report = rep
		r.Error = errMsg
		r.FinishedAt = &done
	})
}

// Enqueue registers the job as queued and hands it to a worker. It never blocks:
// a full queue returns ErrQueueFull.
func (q *AnalysisQueue) Enqueue(_ context.Context, job Job) (Record, error) {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.SubmittedAt.IsZero() {
		job.SubmittedAt = time.Now().UTC()
	}
	rec := Record{ID: job.ID, Status: constants.JobStatusQueued, SubmittedAt: job.SubmittedAt}

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("async.enqueue.closed", "job_id", job.ID)
		return Record{}, ErrQueueClosed
	}
	q.store.Put(rec)
	select {
	case q.ch <- job:
		q.logger.Info("async.enqueue.ok", "job_id", job.ID, "pdf", job.Path != "")
		return rec, nil
	default:
		q.store.Update(job.ID, func(r *Record) {
			r.Status = constants.JobStatusFailed
			r.Error = ErrQueueFull.Error()
		})
		q.logger.Warn("async.enqueue.full", "job_id", job.ID)
		return Record{}, ErrQueueFull
	}
}

func (q *AnalysisQueue) Get(id string) (Record, bool) { return q.store.Get(id) }

// Shutdown stops accepting jobs and waits for workers to drain or ctx to end.
func (q *AnalysisQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("async.shutdown.interrupted")
	case <-done:
		q.logger.Info("async.shutdown.ok")
	}
}
