package syncer

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hmmelton/bytechef/internal/client/auth"
	"github.com/hmmelton/bytechef/internal/watchx"
	"github.com/stretchr/testify/require"
)

type fakeSessions struct {
	feed *watchx.Source[*auth.Session]
}

func newFakeSessions() *fakeSessions {
	f := &fakeSessions{feed: watchx.NewSource[*auth.Session]()}
	f.feed.Publish(nil)
	return f
}

func (f *fakeSessions) Observe(ctx context.Context) <-chan *auth.Session {
	return f.feed.Subscribe(ctx)
}

type fakeTarget struct {
	starts atomic.Int32
	stops  atomic.Int32
	uid    atomic.Value
}

func (f *fakeTarget) StartSync(uid string) {
	f.uid.Store(uid)
	f.starts.Add(1)
}

func (f *fakeTarget) StopSync() { f.stops.Add(1) }

func TestCoordinator_SessionLifecycle(t *testing.T) {
	sessions := newFakeSessions()
	target := &fakeTarget{}
	c := NewCoordinator(sessions, testLogger(), target)

	c.Start(context.Background())
	defer c.Stop()

	sessions.feed.Publish(&auth.Session{UID: "u-1"})
	waitFor(t, func() bool { return target.starts.Load() == 1 })
	require.Equal(t, "u-1", target.uid.Load())
	require.Zero(t, target.stops.Load())

	sessions.feed.Publish(nil)
	waitFor(t, func() bool { return target.stops.Load() == 1 })
}

func TestCoordinator_SignedOutFeedStartsNothing(t *testing.T) {
	sessions := newFakeSessions()
	target := &fakeTarget{}
	c := NewCoordinator(sessions, testLogger(), target)

	c.Start(context.Background())
	time.Sleep(30 * time.Millisecond)
	c.Stop()

	require.Zero(t, target.starts.Load())
	require.Zero(t, target.stops.Load())
}

func TestCoordinator_RestartReplacesSubscription(t *testing.T) {
	sessions := newFakeSessions()
	target := &fakeTarget{}
	c := NewCoordinator(sessions, testLogger(), target)

	c.Start(context.Background())
	c.Start(context.Background())
	defer c.Stop()

	waitFor(t, func() bool { return sessions.feed.Len() == 1 })

	sessions.feed.Publish(&auth.Session{UID: "u-1"})
	waitFor(t, func() bool { return target.starts.Load() >= 1 })
	time.Sleep(30 * time.Millisecond)
	require.Equal(t, int32(1), target.starts.Load(), "only one live listener may fan out")
}

func TestCoordinator_StopWhileActiveStopsSync(t *testing.T) {
	sessions := newFakeSessions()
	target := &fakeTarget{}
	c := NewCoordinator(sessions, testLogger(), target)

	c.Start(context.Background())
	sessions.feed.Publish(&auth.Session{UID: "u-1"})
	waitFor(t, func() bool { return target.starts.Load() == 1 })

	c.Stop()
	require.Equal(t, int32(1), target.stops.Load())
}
