package tasks

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// State is the live execution state of a submitted task.
type State string

const (
	StatePending State = "PENDING"
	StateRunning State = "RUNNING"
	StateSuccess State = "SUCCESS"
	StateFailure State = "FAILURE"
	StateRevoked State = "REVOKED"
)

// Terminal reports whether a task in this state will never run again.
func (s State) Terminal() bool {
	return s == StateSuccess || s == StateFailure || s == StateRevoked
}

type task struct {
	id  uuid.UUID
	run func() error
}

// Executor runs submitted tasks on a fixed pool of workers and tracks each
// task's state by id. State is never persisted anywhere else: callers that
// need the status of a job query the executor with the job's task id.
// An id the executor has never seen reports PENDING, so status queries
// cannot distinguish "unknown" from "not yet started".
type Executor struct {
	mu     sync.RWMutex
	states map[uuid.UUID]State

	queue   chan task
	workers int
	wg      sync.WaitGroup
}

func NewExecutor(workers, queueSize int) *Executor {
	if workers < 1 {
		workers = 1
	}
	return &Executor{
		states:  make(map[uuid.UUID]State),
		queue:   make(chan task, queueSize),
		workers: workers,
	}
}

// Start launches the worker goroutines.
func (e *Executor) Start() {
	for i := 0; i < e.workers; i++ {
		e.wg.Add(1)
		go e.worker(i)
	}
}

// Submit queues run for asynchronous execution and returns its task id.
// Submission never blocks on the computation itself; the returned id is
// immediately queryable and reports PENDING until a worker picks it up.
func (e *Executor) Submit(run func() error) uuid.UUID {
	id := uuid.New()

	e.mu.Lock()
	e.states[id] = StatePending
	e.mu.Unlock()

	e.queue <- task{id: id, run: run}
	return id
}

// State returns the live state for id.
func (e *Executor) State(id uuid.UUID) State {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if s, ok := e.states[id]; ok {
		return s
	}
	return StatePending
}

// Revoke requests cancellation of a task. Best-effort only: a task that has
// not started will never start, but a running task cannot be interrupted and
// runs to completion.
func (e *Executor) Revoke(id uuid.UUID) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.states[id] == StatePending {
		e.states[id] = StateRevoked
	}
}

func (e *Executor) setState(id uuid.UUID, s State) {
	e.mu.Lock()
	e.states[id] = s
	e.mu.Unlock()
}

func (e *Executor) worker(workerID int) {
	defer e.wg.Done()

	for t := range e.queue {
		if e.State(t.id) == StateRevoked {
			logrus.Infof("worker %d: skipping revoked task %s", workerID, t.id)
			continue
		}

		e.setState(t.id, StateRunning)

		if err := t.run(); err != nil {
			logrus.WithError(err).Errorf("worker %d: task %s failed", workerID, t.id)
			e.setState(t.id, StateFailure)
			continue
		}
		e.setState(t.id, StateSuccess)
	}
}

// Shutdown stops accepting tasks and waits for in-flight work to finish.
func (e *Executor) Shutdown() {
	close(e.queue)
	e.wg.Wait()
}
