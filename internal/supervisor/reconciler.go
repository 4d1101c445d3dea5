package supervisor

import (
	"errors"
	"strings"

	"github.com/nfclab/nfcrx/internal/config"
	"github.com/nfclab/nfcrx/internal/task"
)

// Terminal task failures. Each aborts the capture; none is retried.
var (
	errReceiverAbsent  = errors.New("no receiver found")
	errReceiverUnnamed = errors.New("no receiver name found")
	errDecoderInvalid  = errors.New("invalid decoder status")
)

// taskState is the supervisor-local reconciliation state for one task.
// status holds the last snapshot wholesale; configured is the optimistic
// flag set after a Configure is accepted and cleared whenever a fresh
// snapshot arrives, so convergence is always re-verified against real
// status.
type taskState struct {
	status     task.Status
	configured bool
}

// reconcileReceiver runs one reconciliation step for the receiver. A
// returned error is a terminal failure; nil means converged, waiting, or
// commands issued. Caller holds s.mu.
func (s *Supervisor) reconcileReceiver() error {
	st := &s.receiver

	// No snapshot yet: the initial Query is still in flight.
	if st.status.Empty() {
		return nil
	}

	state, ok := st.status.State()
	if !ok || state == task.StateAbsent {
		return errReceiverAbsent
	}

	name, ok := st.status.Name()
	if !ok {
		return errReceiverUnnamed
	}

	// Unblock decoder reconciliation once the receiver reports its rate.
	if rate, ok := st.status.SampleRate(); ok {
		s.decoderDesired["sampleRate"] = config.Num(rate)
	}

	// The identity prefix before the first ':' selects the profile.
	devType := name
	if i := strings.IndexByte(name, ':'); i >= 0 {
		devType = name[:i]
	}
	profile, ok := s.profiles[devType]
	if !ok {
		// Known inconsistency with the rest of the failure model: an
		// unsupported device keeps the loop polling instead of aborting.
		s.log.Errorf(logTag, "unknown receiver: %s", name)
		return nil
	}

	s.reconcileTask(st, profile, task.TopicReceiverCommand, "receiver")
	return nil
}

// reconcileDecoder runs one reconciliation step for the decoder. Caller
// holds s.mu.
func (s *Supervisor) reconcileDecoder() error {
	st := &s.decoder

	if st.status.Empty() {
		return nil
	}

	if _, ok := st.status.State(); !ok {
		return errDecoderInvalid
	}

	// Hold off until the receiver's sample rate has been adopted.
	if _, ok := s.decoderDesired["sampleRate"]; !ok {
		return nil
	}

	s.reconcileTask(st, s.decoderDesired, task.TopicDecoderCommand, "decoder")
	return nil
}

// reconcileTask closes the configuration delta for one task and starts it
// once converged and idle. Transitions are applied optimistically by this
// goroutine right after a command is accepted by the bus; a fresh status
// snapshot clears them and forces re-verification.
func (s *Supervisor) reconcileTask(st *taskState, desired config.Tree, cmdTopic, label string) {
	patch := config.Diff(st.status.Params(), desired)

	switch {
	case len(patch) == 0:
		st.configured = true
	case !st.configured:
		s.log.Infof(logTag, "set %s configuration: %s", label, patch)
		s.bus.Publish(cmdTopic, task.Command{Name: task.Configure, Payload: patch})
		// Optimistically configured, but stay in config-pending until a
		// fresh snapshot confirms convergence with an empty diff.
		st.configured = true
		return
	default:
		// Configure already in flight; wait for a fresh snapshot.
		return
	}

	if state, _ := st.status.State(); st.configured && state == task.StateIdle {
		s.log.Infof(logTag, "start %s", label)
		s.bus.Publish(cmdTopic, task.Command{Name: task.Start})
		st.status["status"] = config.Str(task.StateWaiting)
	}
}
