// Package task defines the contract between the supervisor and the
// capture tasks: topic names, command messages, and status snapshots.
package task

import "github.com/nfclab/nfcrx/internal/config"

// Bus topics. Each task owns one status topic and one command topic; the
// decoder additionally publishes decoded frames.
const (
	TopicReceiverStatus  = "radio.status"
	TopicReceiverCommand = "radio.command"
	TopicDecoderStatus   = "decoder.status"
	TopicDecoderCommand  = "decoder.command"
	TopicDecoderFrame    = "decoder.frame"
)

// CommandName identifies a task instruction.
type CommandName string

const (
	Query     CommandName = "query"
	Configure CommandName = "configure"
	Start     CommandName = "start"
	Stop      CommandName = "stop"
)

// Command is one instruction published on a task's command topic. Payload
// carries configuration for Configure and is nil otherwise. Done, when
// set, is invoked exactly once by the task after the command's effect is
// applied.
type Command struct {
	Name    CommandName
	Payload config.Tree
	Done    func()
}

// Ack invokes the completion callback, if any.
func (c Command) Ack() {
	if c.Done != nil {
		c.Done()
	}
}

// Task lifecycle states reported in the "status" field of a snapshot.
const (
	StateAbsent  = "absent"
	StateIdle    = "idle"
	StateWaiting = "waiting"
	StateRunning = "running"
	StateError   = "error"
	StateUnknown = "unknown"
)

// Status is a full configuration snapshot reported by a task, including
// its lifecycle state under "status" and, for the receiver, its device
// identity under "name". Snapshots replace each other wholesale.
type Status config.Tree

// Empty reports whether any snapshot has been received at all.
func (s Status) Empty() bool { return len(s) == 0 }

// Params exposes the snapshot as a configuration tree for diffing.
func (s Status) Params() config.Tree { return config.Tree(s) }

// State returns the lifecycle state field, if present as a string.
func (s Status) State() (string, bool) {
	v, ok := s["status"]
	if !ok || v.Kind() != config.KindString {
		return "", false
	}
	return v.Str(), true
}

// Name returns the device identity, if present as a string.
func (s Status) Name() (string, bool) {
	v, ok := s["name"]
	if !ok || v.Kind() != config.KindString {
		return "", false
	}
	return v.Str(), true
}

// SampleRate returns the reported sample rate, if present as a number.
func (s Status) SampleRate() (float64, bool) {
	v, ok := s["sampleRate"]
	if !ok || v.Kind() != config.KindNumber {
		return 0, false
	}
	return v.Num(), true
}
