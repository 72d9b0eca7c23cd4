package auth

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/hmmelton/bytechef/internal/client/remote"
	"github.com/hmmelton/bytechef/internal/logging"
	"github.com/stretchr/testify/require"
)

// fakeRemote implements remote.Client with canned responses.
type fakeRemote struct {
	remote.Client

	session   *remote.Session
	err       error
	loggedOut bool
}

func (f *fakeRemote) Register(ctx context.Context, email, password string) (*remote.Session, error) {
	return f.session, f.err
}

func (f *fakeRemote) Login(ctx context.Context, email, password string) (*remote.Session, error) {
	return f.session, f.err
}

func (f *fakeRemote) Logout() { f.loggedOut = true }

var _ remote.Client = (*fakeRemote)(nil)

func newTestManager(fr *fakeRemote) *Manager {
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	return NewManager(fr, log)
}

func recvSession(t *testing.T, ch <-chan *Session) *Session {
	t.Helper()
	select {
	case s := <-ch:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("no session update")
		return nil
	}
}

func TestManager_LoginPublishesSession(t *testing.T) {
	fr := &fakeRemote{session: &remote.Session{UID: "u-1"}}
	m := newTestManager(fr)
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := m.Observe(ctx)

	require.Nil(t, recvSession(t, ch), "initial state is signed out")

	s, err := m.Login(context.Background(), "a@b.c", "secret")
	require.NoError(t, err)
	require.Equal(t, "u-1", s.UID)

	got := recvSession(t, ch)
	require.NotNil(t, got)
	require.Equal(t, "u-1", got.UID)
	require.Equal(t, "a@b.c", got.Email)
	require.Equal(t, s, m.Current())
}

func TestManager_FailedLoginPublishesNothing(t *testing.T) {
	fr := &fakeRemote{err: errors.New("wrong password")}
	m := newTestManager(fr)
	defer m.Close()

	_, err := m.Login(context.Background(), "a@b.c", "wrong")
	require.Error(t, err)
	require.Nil(t, m.Current())
}

func TestManager_LogoutClearsSession(t *testing.T) {
	fr := &fakeRemote{session: &remote.Session{UID: "u-1"}}
	m := newTestManager(fr)
	defer m.Close()

	_, err := m.Login(context.Background(), "a@b.c", "secret")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch := m.Observe(ctx)
	require.NotNil(t, recvSession(t, ch), "late subscriber sees current session")

	m.Logout(context.Background())
	require.Nil(t, recvSession(t, ch))
	require.Nil(t, m.Current())
	require.True(t, fr.loggedOut)
}

func TestManager_RegisterPublishesSession(t *testing.T) {
	fr := &fakeRemote{session: &remote.Session{UID: "u-new"}}
	m := newTestManager(fr)
	defer m.Close()

	s, err := m.Register(context.Background(), "new@b.c", "secret")
	require.NoError(t, err)
	require.Equal(t, "u-new", s.UID)
	require.Equal(t, s, m.Current())
}
