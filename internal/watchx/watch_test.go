package watchx

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed unexpectedly")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for value")
	}
	var zero T
	return zero
}

func TestSubscribe_SeededWithLastValue(t *testing.T) {
	s := NewSource[int]()
	s.Publish(7)

	ch := s.Subscribe(context.Background())
	require.Equal(t, 7, recv(t, ch))
}

func TestSubscribe_NoSeedBeforeFirstPublish(t *testing.T) {
	s := NewSource[int]()
	ch := s.Subscribe(context.Background())

	select {
	case v := <-ch:
		t.Fatalf("expected no value before first publish, got %d", v)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPublish_ConflatesToLatest(t *testing.T) {
	s := NewSource[int]()
	ch := s.Subscribe(context.Background())

	// Subscriber is not reading; only the last value must survive.
	s.Publish(1)
	s.Publish(2)
	s.Publish(3)

	require.Equal(t, 3, recv(t, ch))
}

func TestSubscribe_CancelClosesChannel(t *testing.T) {
	s := NewSource[string]()
	ctx, cancel := context.WithCancel(context.Background())
	ch := s.Subscribe(ctx)

	cancel()

	select {
	case _, ok := <-ch:
		require.False(t, ok, "channel must be closed after cancel")
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}

	require.Eventually(t, func() bool { return s.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestClose_TerminatesAllSubscribers(t *testing.T) {
	s := NewSource[int]()
	ch1 := s.Subscribe(context.Background())
	ch2 := s.Subscribe(context.Background())

	s.Close()

	for _, ch := range []<-chan int{ch1, ch2} {
		select {
		case _, ok := <-ch:
			require.False(t, ok)
		case <-time.After(2 * time.Second):
			t.Fatal("channel not closed")
		}
	}
	require.Equal(t, 0, s.Len())
}

func TestPublish_MultipleSubscribersEachGetValue(t *testing.T) {
	s := NewSource[int]()
	ch1 := s.Subscribe(context.Background())
	ch2 := s.Subscribe(context.Background())

	s.Publish(42)

	require.Equal(t, 42, recv(t, ch1))
	require.Equal(t, 42, recv(t, ch2))
}
