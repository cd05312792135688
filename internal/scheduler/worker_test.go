package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type stubEngine struct {
	overdueCalls int
	failFirst    int // fail this many calls before succeeding
	err          error

	reminderCalls int
	syncCalls     int
}

func (e *stubEngine) CheckOverdue(ctx context.Context) (int, error) {
	e.overdueCalls++
	if e.overdueCalls <= e.failFirst {
		return 0, e.err
	}
	return 2, nil
}

func (e *stubEngine) TrialReminders(ctx context.Context) (int, error) {
	e.reminderCalls++
	return 3, nil
}

func (e *stubEngine) SyncAuthority(ctx context.Context) (int, int, error) {
	e.syncCalls++
	return 4, 1, nil
}

func newTestWorker(engine Engine) *Worker {
	return &Worker{
		engine:      engine,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
		maxAttempts: 3,
		backoffBase: time.Millisecond,
	}
}

func TestDispatchByName(t *testing.T) {
	engine := &stubEngine{}
	w := newTestWorker(engine)

	res, err := w.dispatch(context.Background(), JobCheckOverdue)
	require.NoError(t, err)
	require.Equal(t, 2, res.TenantsSuspended)

	res, err = w.dispatch(context.Background(), JobTrialReminders)
	require.NoError(t, err)
	require.Equal(t, 3, res.RemindersSent)

	for _, name := range []string{JobSyncFikenMorning, JobSyncFikenAfternoon, JobSyncFikenEvening} {
		res, err = w.dispatch(context.Background(), name)
		require.NoError(t, err)
		require.Equal(t, 4, res.InvoicesUpdated)
		require.Equal(t, 1, res.TenantsReactivated)
	}
	require.Equal(t, 3, engine.syncCalls)
}

func TestDispatchUnknownJob(t *testing.T) {
	w := newTestWorker(&stubEngine{})
	_, err := w.dispatch(context.Background(), "mystery")
	require.Error(t, err)
}

func TestExecuteRetriesThenSucceeds(t *testing.T) {
	engine := &stubEngine{failFirst: 2, err: errors.New("authority unreachable")}
	w := newTestWorker(engine)

	res, err := w.execute(context.Background(), JobMessage{Name: JobCheckOverdue})
	require.NoError(t, err)
	require.Equal(t, 2, res.TenantsSuspended)
	require.Equal(t, 3, engine.overdueCalls)
}

func TestExecuteExhaustsRetries(t *testing.T) {
	engine := &stubEngine{failFirst: 10, err: errors.New("authority unreachable")}
	w := newTestWorker(engine)

	_, err := w.execute(context.Background(), JobMessage{Name: JobCheckOverdue})
	require.Error(t, err)
	require.Equal(t, 3, engine.overdueCalls)
}

func TestBackoffDoublesBetweenAttempts(t *testing.T) {
	engine := &stubEngine{failFirst: 10, err: errors.New("authority unreachable")}
	w := newTestWorker(engine)
	w.backoffBase = 20 * time.Millisecond

	start := time.Now()
	_, err := w.execute(context.Background(), JobMessage{Name: JobCheckOverdue})
	require.Error(t, err)

	// Two sleeps: base then doubled (20ms + 40ms).
	require.GreaterOrEqual(t, time.Since(start), 60*time.Millisecond)
}

func TestExecuteStopsDuringBackoff(t *testing.T) {
	engine := &stubEngine{failFirst: 10, err: errors.New("authority unreachable")}
	w := newTestWorker(engine)
	w.backoffBase = time.Hour

	done := make(chan struct{})
	go func() {
		_, err := w.execute(context.Background(), JobMessage{Name: JobCheckOverdue})
		require.Error(t, err)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	close(w.stopCh)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("execute did not return after stop signal")
	}
	require.Equal(t, 1, engine.overdueCalls)
}
