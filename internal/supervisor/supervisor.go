// Package supervisor implements the reconciliation control loop that
// drives the receiver and decoder tasks from unconfigured to running and
// streams decoded frames to the capture output.
package supervisor

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/nfclab/nfcrx/internal/config"
	"github.com/nfclab/nfcrx/internal/frame"
	"github.com/nfclab/nfcrx/internal/logging"
	"github.com/nfclab/nfcrx/internal/rt"
	"github.com/nfclab/nfcrx/internal/task"
)

const (
	logTag      = "supervisor"
	defaultPoll = 500 * time.Millisecond
)

// Config carries the desired configuration and loop settings.
type Config struct {
	// Profiles maps device types to desired receiver configurations.
	// Nil selects the built-in defaults.
	Profiles map[string]config.Tree
	// Decoder is the desired decoder configuration (the sample rate is
	// amended in once the receiver reports it). Nil selects defaults.
	Decoder config.Tree
	// Limit bounds the capture wall-clock time; zero means unlimited.
	Limit time.Duration
	// Poll overrides the tick interval, for tests.
	Poll time.Duration
	// Out receives formatted frames and termination notices (stdout in
	// the binary).
	Out io.Writer
}

// Supervisor owns the desired configuration, the last observed status of
// both tasks, and the frame sink. Only its control goroutine (Run)
// reconciles and publishes commands; bus delivery goroutines just write
// snapshots and frames into the synchronized state.
type Supervisor struct {
	log       *logging.Logger
	bus       *rt.Bus
	lifecycle *Lifecycle

	profiles map[string]config.Tree
	limit    time.Duration
	poll     time.Duration
	out      *bufio.Writer
	sink     *frame.Queue

	mu             sync.Mutex
	receiver       taskState
	decoder        taskState
	decoderDesired config.Tree
}

// New creates a supervisor publishing on bus and shutting down through
// lc.
func New(bus *rt.Bus, lc *Lifecycle, log *logging.Logger, cfg Config) *Supervisor {
	profiles := cfg.Profiles
	if profiles == nil {
		profiles = config.ReceiverDefaults()
	}
	decoder := cfg.Decoder
	if decoder == nil {
		decoder = config.DecoderDefaults()
	}
	poll := cfg.Poll
	if poll <= 0 {
		poll = defaultPoll
	}
	out := cfg.Out
	if out == nil {
		out = os.Stdout
	}

	return &Supervisor{
		log:            log,
		bus:            bus,
		lifecycle:      lc,
		profiles:       profiles,
		decoderDesired: decoder.Clone(),
		limit:          cfg.Limit,
		poll:           poll,
		out:            bufio.NewWriter(out),
		sink:           frame.NewQueue(),
	}
}

// Run subscribes to the status and frame topics, queries the receiver,
// and drives the poll loop until ctx is cancelled (by the Lifecycle
// controller or the caller). Always returns nil after a clean exit.
func (s *Supervisor) Run(ctx context.Context) error {
	cancels := []func(){
		s.bus.Subscribe(task.TopicReceiverStatus, s.watchStatus(&s.receiver)),
		s.bus.Subscribe(task.TopicDecoderStatus, s.watchStatus(&s.decoder)),
		s.bus.Subscribe(task.TopicDecoderFrame, s.watchFrames),
	}
	defer func() {
		for _, cancel := range cancels {
			cancel()
		}
	}()

	s.bus.Publish(task.TopicReceiverCommand, task.Command{Name: task.Query})

	start := time.Now()
	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
		case <-ticker.C:
		}
		if ctx.Err() != nil {
			return nil
		}
		s.tick(start)
	}
}

// tick runs one poll iteration: reconcile both tasks, enforce the time
// limit, then drain and emit queued frames. Both reconciliations run even
// if the first one fails; the termination flag is re-tested at the top of
// the next iteration.
func (s *Supervisor) tick(start time.Time) {
	s.mu.Lock()
	errReceiver := s.reconcileReceiver()
	errDecoder := s.reconcileDecoder()
	s.mu.Unlock()

	if errReceiver != nil {
		s.log.Infof(logTag, "%v", errReceiver)
		s.finish("Finish capture, invalid receiver!")
	}
	if errDecoder != nil {
		s.log.Infof(logTag, "%v", errDecoder)
		s.finish("Finish capture, invalid decoder!")
	}
	if s.limit > 0 && time.Since(start) > s.limit {
		s.finish("Finish capture, time limit reached!")
	}

	for _, f := range s.sink.Drain() {
		fmt.Fprintln(s.out, frame.Format(f))
	}
	s.out.Flush()
}

// finish writes a termination notice and requests shutdown. Shutdown is
// idempotent; the notice is written once per trigger, matching one line
// per reason.
func (s *Supervisor) finish(notice string) {
	fmt.Fprintln(s.out, notice)
	s.lifecycle.RequestShutdown()
}

// watchStatus returns the bus handler storing snapshots for one task.
// Snapshots replace each other wholesale (last write wins) and clear the
// optimistic configured flag so the next tick re-verifies convergence.
func (s *Supervisor) watchStatus(st *taskState) rt.Handler {
	return func(msg any) {
		snap, ok := msg.(task.Status)
		if !ok {
			return
		}
		s.mu.Lock()
		st.status = snap
		st.configured = false
		s.mu.Unlock()
	}
}

// watchFrames buffers decoded frames until the next drain.
func (s *Supervisor) watchFrames(msg any) {
	if f, ok := msg.(frame.Frame); ok {
		s.sink.Push(f)
	}
}
