package syncer

import (
	"context"
	"log/slog"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hmmelton/bytechef/internal/logging"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	online atomic.Bool
}

func (f *fakeConn) Online(ctx context.Context) bool { return f.online.Load() }

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition never met")
}

func TestScheduler_PeriodicJobRuns(t *testing.T) {
	s := NewScheduler(nil, testLogger())
	defer s.Shutdown(context.Background())

	var runs atomic.Int32
	err := s.EnqueuePeriodic(Job{
		Name:     "tick",
		Interval: 10 * time.Millisecond,
		Input:    Input{InputKeyUID: "u-1"},
		Run: func(ctx context.Context, in Input) Outcome {
			require.Equal(t, "u-1", in[InputKeyUID])
			runs.Add(1)
			return OutcomeSuccess
		},
	}, KeepExisting)
	require.NoError(t, err)
	require.True(t, s.Scheduled("tick"))

	waitFor(t, func() bool { return runs.Load() >= 3 })
}

func TestScheduler_KeepExistingIsNoOp(t *testing.T) {
	s := NewScheduler(nil, testLogger())
	defer s.Shutdown(context.Background())

	var first, second atomic.Int32
	job := Job{
		Name:     "sync",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context, in Input) Outcome {
			first.Add(1)
			return OutcomeSuccess
		},
	}
	require.NoError(t, s.EnqueuePeriodic(job, KeepExisting))

	job.Run = func(ctx context.Context, in Input) Outcome {
		second.Add(1)
		return OutcomeSuccess
	}
	require.NoError(t, s.EnqueuePeriodic(job, KeepExisting))

	waitFor(t, func() bool { return first.Load() >= 2 })
	require.Zero(t, second.Load(), "second enqueue must not replace the live job")
}

func TestScheduler_ReplaceSwapsTheJob(t *testing.T) {
	s := NewScheduler(nil, testLogger())
	defer s.Shutdown(context.Background())

	var first, second atomic.Int32
	job := Job{
		Name:     "sync",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context, in Input) Outcome {
			first.Add(1)
			return OutcomeSuccess
		},
	}
	require.NoError(t, s.EnqueuePeriodic(job, KeepExisting))

	job.Run = func(ctx context.Context, in Input) Outcome {
		second.Add(1)
		return OutcomeSuccess
	}
	require.NoError(t, s.EnqueuePeriodic(job, Replace))

	waitFor(t, func() bool { return second.Load() >= 2 })
	n := first.Load()
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, n, first.Load(), "replaced job must not keep running")
}

func TestScheduler_CancelStopsJob(t *testing.T) {
	s := NewScheduler(nil, testLogger())
	defer s.Shutdown(context.Background())

	var runs atomic.Int32
	require.NoError(t, s.EnqueuePeriodic(Job{
		Name:     "sync",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context, in Input) Outcome {
			runs.Add(1)
			return OutcomeSuccess
		},
	}, KeepExisting))

	waitFor(t, func() bool { return runs.Load() >= 1 })
	s.Cancel("sync")
	require.False(t, s.Scheduled("sync"))

	n := runs.Load()
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, n, runs.Load())
}

func TestScheduler_ConnectivityConstraintSkipsOfflineRuns(t *testing.T) {
	conn := &fakeConn{}
	s := NewScheduler(conn, testLogger())
	defer s.Shutdown(context.Background())

	var runs atomic.Int32
	require.NoError(t, s.EnqueuePeriodic(Job{
		Name:        "sync",
		Interval:    10 * time.Millisecond,
		Constraints: Constraints{RequiresConnectivity: true},
		Run: func(ctx context.Context, in Input) Outcome {
			runs.Add(1)
			return OutcomeSuccess
		},
	}, KeepExisting))

	time.Sleep(60 * time.Millisecond)
	require.Zero(t, runs.Load(), "offline ticks must be skipped")

	conn.online.Store(true)
	waitFor(t, func() bool { return runs.Load() >= 1 })
}

func TestScheduler_RetryOutcomeRepeatsTheRun(t *testing.T) {
	old := retryBase
	retryBase = time.Millisecond
	defer func() { retryBase = old }()

	s := NewScheduler(nil, testLogger())
	defer s.Shutdown(context.Background())

	var runs atomic.Int32
	require.NoError(t, s.EnqueuePeriodic(Job{
		Name:     "sync",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context, in Input) Outcome {
			if runs.Add(1) < 3 {
				return OutcomeRetry
			}
			return OutcomeSuccess
		},
	}, KeepExisting))

	waitFor(t, func() bool { return runs.Load() >= 3 })
}

func TestScheduler_ShutdownRejectsNewJobs(t *testing.T) {
	s := NewScheduler(nil, testLogger())
	require.NoError(t, s.Shutdown(context.Background()))

	err := s.EnqueuePeriodic(Job{
		Name:     "late",
		Interval: 10 * time.Millisecond,
		Run:      func(ctx context.Context, in Input) Outcome { return OutcomeSuccess },
	}, KeepExisting)
	require.Error(t, err)
}

func TestScheduler_InvalidSpecRejected(t *testing.T) {
	s := NewScheduler(nil, testLogger())
	defer s.Shutdown(context.Background())

	require.Error(t, s.EnqueuePeriodic(Job{}, KeepExisting))
	require.Error(t, s.EnqueuePeriodic(Job{Name: "x", Interval: time.Second}, KeepExisting))
}
