// Package syncer schedules the background jobs that keep the local cache in
// step with the backend, and coordinates them against the auth session.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/hmmelton/bytechef/internal/common"
	"github.com/hmmelton/bytechef/internal/logging"
)

// Outcome is what a job run reports back to the scheduler.
type Outcome int

const (
	// OutcomeSuccess ends the run; the job waits for its next period.
	OutcomeSuccess Outcome = iota
	// OutcomeRetry asks for the run to be repeated with backoff.
	OutcomeRetry
	// OutcomeFailure ends the run without retrying. The job stays
	// scheduled and runs again next period.
	OutcomeFailure
)

// Input carries the parameters a job run needs.
type Input map[string]string

// InputKeyUID names the account a sync job works on. A job enqueued without
// it fails permanently on its first run.
const InputKeyUID = "uid"

// WorkFunc is one run of a job. Implementations classify their own errors:
// transient trouble returns OutcomeRetry, anything unrecoverable returns
// OutcomeFailure.
type WorkFunc func(ctx context.Context, in Input) Outcome

// Policy decides what happens when a job name is already enqueued.
type Policy int

const (
	// KeepExisting leaves the running job untouched; the enqueue is a no-op.
	KeepExisting Policy = iota
	// Replace cancels the running job and starts over with the new spec.
	Replace
)

// Constraints gate a run before it starts.
type Constraints struct {
	RequiresConnectivity bool
}

// Job is a periodic unit of work. Each period the job fires somewhere inside
// the flex window at the end of the interval, so parallel clients do not all
// hit the backend at the same instant.
type Job struct {
	Name        string
	Interval    time.Duration
	Flex        time.Duration
	Constraints Constraints
	Input       Input
	Run         WorkFunc
}

// retryBase is the first backoff step between retried runs.
var retryBase = time.Second

// ConnectivityChecker reports whether the device can reach the network.
type ConnectivityChecker interface {
	Online(ctx context.Context) bool
}

type jobHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Scheduler owns the periodic jobs. It is safe for concurrent use.
type Scheduler struct {
	log  logging.Logger
	conn ConnectivityChecker

	mu     sync.Mutex
	jobs   map[string]*jobHandle
	closed bool
}

func NewScheduler(conn ConnectivityChecker, log logging.Logger) *Scheduler {
	return &Scheduler{
		log:  log,
		conn: conn,
		jobs: make(map[string]*jobHandle),
	}
}

// EnqueuePeriodic registers job under its name. With KeepExisting a second
// enqueue of a live name does nothing, which makes start-sync idempotent
// across the auth coordinator and repository observers.
func (s *Scheduler) EnqueuePeriodic(job Job, policy Policy) error {
	if job.Name == "" || job.Run == nil || job.Interval <= 0 {
		return fmt.Errorf("%w: invalid job spec %q", common.ErrorInternal, job.Name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("scheduler is shut down")
	}

	if existing, ok := s.jobs[job.Name]; ok {
		if policy == KeepExisting {
			return nil
		}
		existing.cancel()
		s.mu.Unlock()
		<-existing.done
		s.mu.Lock()
		if s.closed {
			return errors.New("scheduler is shut down")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	handle := &jobHandle{cancel: cancel, done: make(chan struct{})}
	s.jobs[job.Name] = handle
	go s.loop(ctx, job, handle)
	s.log.Info(context.Background(), "job enqueued", "name", job.Name, "interval", job.Interval)
	return nil
}

// Cancel stops the named job. Unknown names are ignored.
func (s *Scheduler) Cancel(name string) {
	s.mu.Lock()
	handle, ok := s.jobs[name]
	if ok {
		delete(s.jobs, name)
	}
	s.mu.Unlock()
	if ok {
		handle.cancel()
		<-handle.done
		s.log.Info(context.Background(), "job cancelled", "name", name)
	}
}

// Scheduled reports whether a job with this name is live.
func (s *Scheduler) Scheduled(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.jobs[name]
	return ok
}

// Shutdown cancels every job and waits for the loops to drain, or for ctx.
func (s *Scheduler) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	handles := make([]*jobHandle, 0, len(s.jobs))
	for name, h := range s.jobs {
		delete(s.jobs, name)
		handles = append(handles, h)
	}
	s.mu.Unlock()

	for _, h := range handles {
		h.cancel()
		select {
		case <-h.done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (s *Scheduler) loop(ctx context.Context, job Job, handle *jobHandle) {
	defer close(handle.done)

	for {
		if !sleep(ctx, nextDelay(job.Interval, job.Flex)) {
			return
		}
		if job.Constraints.RequiresConnectivity && s.conn != nil && !s.conn.Online(ctx) {
			s.log.Info(ctx, "job skipped, offline", "name", job.Name)
			continue
		}
		s.runOnce(ctx, job)
	}
}

// runOnce executes the job, retrying with exponential backoff while the job
// keeps answering OutcomeRetry. Retries are capped so a wedged backend cannot
// pin the loop past the next period.
func (s *Scheduler) runOnce(ctx context.Context, job Job) {
	backoff := retry.WithMaxRetries(3, retry.NewExponential(retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		switch job.Run(ctx, job.Input) {
		case OutcomeSuccess:
			return nil
		case OutcomeRetry:
			return retry.RetryableError(errors.New("retryable run"))
		default:
			return errors.New("permanent failure")
		}
	})
	if err != nil && ctx.Err() == nil {
		s.log.Warn(ctx, "job run failed", "name", job.Name, "error", err)
	}
}

// nextDelay places the run inside the flex window at the end of the period.
func nextDelay(interval, flex time.Duration) time.Duration {
	if flex <= 0 || flex >= interval {
		return interval
	}
	return interval - flex + time.Duration(rand.Int63n(int64(flex)))
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
