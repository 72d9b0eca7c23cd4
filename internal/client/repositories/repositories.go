// Package repositories exposes the app-facing data API. Every repository is
// backed by two stores: the backend is canonical and takes writes first, the
// local SQLite cache serves all reads and is kept in step by background sync.
package repositories

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hmmelton/bytechef/internal/client/auth"
	"github.com/hmmelton/bytechef/internal/client/syncer"
	"github.com/hmmelton/bytechef/internal/common"
	"github.com/hmmelton/bytechef/internal/logging"
)

// SessionReader is the slice of auth.Manager the repositories need: just the
// identity of whoever is signed in right now.
type SessionReader interface {
	Current() *auth.Session
}

// Jobs is the slice of the scheduler the repositories drive.
type Jobs interface {
	EnqueuePeriodic(job syncer.Job, policy syncer.Policy) error
	Cancel(name string)
}

// syncLifecycle counts observers and keeps the repository's periodic job
// alive while at least one exists. The first observer of a signed-in session
// starts the job and kicks an immediate refresh; the last one leaving cancels
// the job.
type syncLifecycle struct {
	name     string
	interval time.Duration
	jobs     Jobs
	sessions SessionReader
	log      logging.Logger
	refresh  func(ctx context.Context, uid string) error

	mu        sync.Mutex
	observers int
}

func (l *syncLifecycle) observerArrived() {
	l.mu.Lock()
	first := l.observers == 0
	l.observers++
	l.mu.Unlock()
	if !first {
		return
	}

	// Signed out: nothing to enqueue yet. The coordinator starts the job on
	// the next login with the real account id.
	s := l.sessions.Current()
	if s == nil || s.UID == "" {
		return
	}
	l.start(s.UID)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := l.refresh(ctx, s.UID); err != nil {
			l.log.Warn(ctx, "initial refresh failed", "job", l.name, "error", err)
		}
	}()
}

func (l *syncLifecycle) observerLeft() {
	l.mu.Lock()
	l.observers--
	last := l.observers == 0
	l.mu.Unlock()
	if last {
		l.jobs.Cancel(l.name)
	}
}

// start enqueues the periodic job. KeepExisting makes it a no-op when the
// coordinator and an observer both ask for it.
func (l *syncLifecycle) start(uid string) {
	job := syncer.Job{
		Name:        l.name,
		Interval:    l.interval,
		Flex:        l.interval / 10,
		Constraints: syncer.Constraints{RequiresConnectivity: true},
		Input:       syncer.Input{syncer.InputKeyUID: uid},
		Run:         l.run,
	}
	if err := l.jobs.EnqueuePeriodic(job, syncer.KeepExisting); err != nil {
		l.log.Error(context.Background(), "enqueue failed", "job", l.name, "error", err)
	}
}

func (l *syncLifecycle) stop() {
	l.jobs.Cancel(l.name)
}

// run is one scheduled refresh. A job without an account id can never
// succeed, so it fails permanently rather than burn retries.
func (l *syncLifecycle) run(ctx context.Context, in syncer.Input) syncer.Outcome {
	uid := in[syncer.InputKeyUID]
	if uid == "" {
		l.log.Error(ctx, "sync run rejected", "job", l.name, "error", common.ErrMissingUID)
		return syncer.OutcomeFailure
	}
	if err := l.refresh(ctx, uid); err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			l.log.Warn(ctx, "sync unauthorized", "job", l.name)
			return syncer.OutcomeFailure
		}
		l.log.Warn(ctx, "sync run failed", "job", l.name, "error", err)
		return syncer.OutcomeRetry
	}
	return syncer.OutcomeSuccess
}
