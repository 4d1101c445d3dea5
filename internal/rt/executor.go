package rt

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nfclab/nfcrx/internal/logging"
)

// Task is a long-running unit hosted by the Executor. Run blocks until
// the task finishes or ctx is cancelled.
type Task interface {
	Name() string
	Run(ctx context.Context) error
}

// Executor runs submitted tasks on their own goroutines under a shared
// context. Shutdown cancels the context and waits (bounded) for every
// task to return.
type Executor struct {
	log    *logging.Logger
	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group
	once   sync.Once
}

const shutdownWait = 5 * time.Second

// NewExecutor creates an executor with its own root context.
func NewExecutor(log *logging.Logger) *Executor {
	ctx, cancel := context.WithCancel(context.Background())
	group, ctx := errgroup.WithContext(ctx)
	return &Executor{
		log:    log,
		ctx:    ctx,
		cancel: cancel,
		group:  group,
	}
}

// Submit starts a task. A task error (other than context cancellation)
// cancels the shared context, stopping its peers.
func (e *Executor) Submit(task Task) {
	e.group.Go(func() error {
		e.log.Debugf("rt", "task %s started", task.Name())
		err := task.Run(e.ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			e.log.Errorf("rt", "task %s failed: %v", task.Name(), err)
			return err
		}
		e.log.Debugf("rt", "task %s stopped", task.Name())
		return nil
	})
}

// Stop cancels the shared context without waiting for tasks to return.
// Trivial and idempotent, so it is safe on shutdown-request paths that
// must not block.
func (e *Executor) Stop() {
	e.cancel()
}

// Shutdown cancels all tasks and waits up to a bound for them to return.
// Idempotent and safe from any goroutine.
func (e *Executor) Shutdown() {
	e.once.Do(func() {
		e.cancel()

		done := make(chan struct{})
		go func() {
			_ = e.group.Wait()
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(shutdownWait):
			e.log.Warnf("rt", "shutdown timeout after %s, tasks may still be running", shutdownWait)
		}
	})
}
