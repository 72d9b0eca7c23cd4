// Package auth tracks the signed-in account and broadcasts session changes
// to whoever needs to react to them, most importantly the sync coordinator.
package auth

import (
	"context"

	"github.com/hmmelton/bytechef/internal/client/remote"
	"github.com/hmmelton/bytechef/internal/logging"
	"github.com/hmmelton/bytechef/internal/watchx"
)

// Session identifies the signed-in account. A nil *Session on the observe
// channel means nobody is signed in.
type Session struct {
	UID   string
	Email string
}

// Manager owns the client-side auth state. All transitions go through
// Register, Login and Logout so observers always see a consistent stream.
type Manager struct {
	remote remote.Client
	log    logging.Logger
	feed   *watchx.Source[*Session]
}

func NewManager(rc remote.Client, log logging.Logger) *Manager {
	m := &Manager{
		remote: rc,
		log:    log,
		feed:   watchx.NewSource[*Session](),
	}
	m.feed.Publish(nil)
	return m
}

// Observe delivers the current session immediately and every transition after
// that. The channel conflates: a slow reader sees the latest state, not the
// full history.
func (m *Manager) Observe(ctx context.Context) <-chan *Session {
	return m.feed.Subscribe(ctx)
}

// Current returns the session as of the last transition, or nil.
func (m *Manager) Current() *Session {
	s, _ := m.feed.Last()
	return s
}

func (m *Manager) Register(ctx context.Context, email, password string) (*Session, error) {
	rs, err := m.remote.Register(ctx, email, password)
	if err != nil {
		return nil, err
	}
	session := &Session{UID: rs.UID, Email: email}
	m.feed.Publish(session)
	m.log.Info(ctx, "registered", "uid", session.UID)
	return session, nil
}

func (m *Manager) Login(ctx context.Context, email, password string) (*Session, error) {
	rs, err := m.remote.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	session := &Session{UID: rs.UID, Email: email}
	m.feed.Publish(session)
	m.log.Info(ctx, "logged in", "uid", session.UID)
	return session, nil
}

func (m *Manager) Logout(ctx context.Context) {
	m.remote.Logout()
	m.feed.Publish(nil)
	m.log.Info(ctx, "logged out")
}

// Close tears down the feed; pending observers get their channels closed.
func (m *Manager) Close() {
	m.feed.Close()
}
