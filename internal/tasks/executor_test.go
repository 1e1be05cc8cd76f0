package tasks

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waitForTerminal(t *testing.T, e *Executor, id uuid.UUID) State {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if s := e.State(id); s.Terminal() {
			return s
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("task %s never reached a terminal state", id)
	return ""
}

func TestExecutorSuccess(t *testing.T) {
	e := NewExecutor(1, 10)
	e.Start()
	defer e.Shutdown()

	id := e.Submit(func() error { return nil })
	assert.Equal(t, StateSuccess, waitForTerminal(t, e, id))
}

func TestExecutorFailure(t *testing.T) {
	e := NewExecutor(1, 10)
	e.Start()
	defer e.Shutdown()

	id := e.Submit(func() error { return errors.New("boom") })
	assert.Equal(t, StateFailure, waitForTerminal(t, e, id))
}

func TestExecutorUnknownIDReportsPending(t *testing.T) {
	e := NewExecutor(1, 10)
	assert.Equal(t, StatePending, e.State(uuid.New()))
}

func TestExecutorRevokeBeforeStart(t *testing.T) {
	e := NewExecutor(1, 10)

	var ran atomic.Bool
	// workers have not started yet, so the task is still queued
	id := e.Submit(func() error {
		ran.Store(true)
		return nil
	})
	e.Revoke(id)

	e.Start()
	e.Shutdown()

	assert.False(t, ran.Load(), "revoked task must never start")
	assert.Equal(t, StateRevoked, e.State(id))
}

func TestExecutorRevokeRunningTaskHasNoEffect(t *testing.T) {
	e := NewExecutor(1, 10)
	e.Start()
	defer e.Shutdown()

	started := make(chan struct{})
	release := make(chan struct{})
	id := e.Submit(func() error {
		close(started)
		<-release
		return nil
	})

	<-started
	e.Revoke(id)
	require.Equal(t, StateRunning, e.State(id))

	close(release)
	assert.Equal(t, StateSuccess, waitForTerminal(t, e, id))
}

func TestExecutorSubmitIsNonBlocking(t *testing.T) {
	e := NewExecutor(1, 10)
	e.Start()
	defer e.Shutdown()

	release := make(chan struct{})
	defer close(release)

	done := make(chan struct{})
	go func() {
		e.Submit(func() error { <-release; return nil })
		e.Submit(func() error { return nil })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Submit blocked on a busy worker")
	}
}
