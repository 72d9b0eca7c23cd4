package syncer

import (
	"context"
	"sync"

	"github.com/hmmelton/bytechef/internal/client/auth"
	"github.com/hmmelton/bytechef/internal/logging"
)

// Synchronizable is anything whose background sync the coordinator can turn
// on and off, in practice the synchronized repositories.
type Synchronizable interface {
	StartSync(uid string)
	StopSync()
}

// SessionSource is the slice of auth.Manager the coordinator needs.
type SessionSource interface {
	Observe(ctx context.Context) <-chan *auth.Session
}

// Coordinator holds exactly one live subscription to the auth session feed
// and fans session transitions out as StartSync/StopSync calls. Starting it
// again tears down the previous subscription before opening the new one, so
// there is never a window with two listeners.
type Coordinator struct {
	sessions SessionSource
	targets  []Synchronizable
	log      logging.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewCoordinator(sessions SessionSource, log logging.Logger, targets ...Synchronizable) *Coordinator {
	return &Coordinator{sessions: sessions, targets: targets, log: log}
}

// Start subscribes to the session feed. Any previous subscription is stopped
// first and fully drained before the new one begins.
func (c *Coordinator) Start(ctx context.Context) {
	c.Stop()

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	c.mu.Lock()
	c.cancel = cancel
	c.done = done
	c.mu.Unlock()

	go c.watch(ctx, done)
}

// Stop cancels the live subscription, if any, and waits for it to wind down.
// Sync for a signed-in account is stopped as part of the teardown.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (c *Coordinator) watch(ctx context.Context, done chan struct{}) {
	defer close(done)

	ch := c.sessions.Observe(ctx)
	active := false
	defer func() {
		if active {
			c.stopAll()
		}
	}()

	for session := range ch {
		if session != nil {
			c.log.Info(ctx, "session active, starting sync", "uid", session.UID)
			for _, t := range c.targets {
				t.StartSync(session.UID)
			}
			active = true
		} else if active {
			c.log.Info(ctx, "session ended, stopping sync")
			c.stopAll()
			active = false
		}
	}
}

func (c *Coordinator) stopAll() {
	for _, t := range c.targets {
		t.StopSync()
	}
}
