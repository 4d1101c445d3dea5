package supervisor

import "sync"

// Lifecycle turns shutdown requests from any source (poll loop, capture
// time limit, termination signals) into exactly one cooperative stop:
// ask the task runtime to stop, then cancel the control loop's context,
// which both sets the termination flag and wakes the loop early.
//
// RequestShutdown does only that — no allocation-heavy work — so it is
// safe to call from the signal-forwarding goroutine.
type Lifecycle struct {
	once      sync.Once
	stopTasks func()
	cancel    func()
}

// NewLifecycle creates a controller. stopTasks must be non-blocking (the
// executor's Stop, not its waiting Shutdown); cancel is the control
// loop's context cancel.
func NewLifecycle(stopTasks, cancel func()) *Lifecycle {
	return &Lifecycle{stopTasks: stopTasks, cancel: cancel}
}

// RequestShutdown applies the shutdown effects at most once. Safe to call
// concurrently and repeatedly.
func (l *Lifecycle) RequestShutdown() {
	l.once.Do(func() {
		if l.stopTasks != nil {
			l.stopTasks()
		}
		if l.cancel != nil {
			l.cancel()
		}
	})
}
