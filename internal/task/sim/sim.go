// Package sim provides software-simulated receiver and decoder tasks.
// They honor the same topics and commands as hardware-backed tasks:
// status snapshots on their status topic (on a heartbeat and after every
// command), Configure payloads merged into their state, and a scripted
// frame sequence once the decoder runs. The binary ships with this pair
// as its capture backend; tests use it to exercise the full loop,
// including absent and unnamed device failure modes.
package sim

import (
	"context"
	"sync"
	"time"

	"github.com/nfclab/nfcrx/internal/config"
	"github.com/nfclab/nfcrx/internal/frame"
	"github.com/nfclab/nfcrx/internal/logging"
	"github.com/nfclab/nfcrx/internal/rt"
	"github.com/nfclab/nfcrx/internal/task"
)

const defaultHeartbeat = 250 * time.Millisecond

// ReceiverConfig controls the simulated receiver.
type ReceiverConfig struct {
	// Identity is the reported device name, e.g. "radio.airspy://0".
	// Empty simulates no device attached (status absent).
	Identity string
	// Unnamed reports snapshots without an identity field.
	Unnamed bool
	// Params is the initial hardware state; nil uses stock power-on
	// values that differ from every default profile, forcing a
	// Configure.
	Params config.Tree
	// Heartbeat overrides the status publishing interval, for tests.
	Heartbeat time.Duration
}

// Receiver is the simulated radio device task.
type Receiver struct {
	bus       *rt.Bus
	log       *logging.Logger
	identity  string
	unnamed   bool
	heartbeat time.Duration

	mu     sync.Mutex
	state  string
	params config.Tree
}

// NewReceiver creates a simulated receiver publishing on bus.
func NewReceiver(bus *rt.Bus, log *logging.Logger, cfg ReceiverConfig) *Receiver {
	params := cfg.Params
	if params == nil {
		params = config.Tree{
			"centerFreq": config.Num(13560000),
			"sampleRate": config.Num(10000000),
			"gainMode":   config.Num(0),
			"gainValue":  config.Num(0),
			"mixerAgc":   config.Num(0),
			"tunerAgc":   config.Num(0),
		}
	}
	heartbeat := cfg.Heartbeat
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	return &Receiver{
		bus:       bus,
		log:       log,
		identity:  cfg.Identity,
		unnamed:   cfg.Unnamed,
		heartbeat: heartbeat,
		state:     task.StateIdle,
		params:    params,
	}
}

func (r *Receiver) Name() string { return "radio.device" }

// Run serves commands and publishes status heartbeats until ctx ends.
func (r *Receiver) Run(ctx context.Context) error {
	cancel := r.bus.Subscribe(task.TopicReceiverCommand, r.handle)
	defer cancel()

	ticker := time.NewTicker(r.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.publishStatus()
		}
	}
}

func (r *Receiver) handle(msg any) {
	cmd, ok := msg.(task.Command)
	if !ok {
		return
	}

	r.mu.Lock()
	switch cmd.Name {
	case task.Query:
	case task.Configure:
		config.Merge(r.params, cmd.Payload)
		r.log.Debugf("sim.receiver", "configured: %s", cmd.Payload)
	case task.Start:
		if r.state == task.StateIdle {
			r.state = task.StateRunning
		}
	case task.Stop:
		r.state = task.StateIdle
	}
	r.mu.Unlock()

	cmd.Ack()
	r.publishStatus()
}

// publishStatus publishes a snapshot of the current state. The publish
// happens under the state mutex (the bus never blocks) so snapshots on
// the topic are ordered consistently with state changes.
func (r *Receiver) publishStatus() {
	r.mu.Lock()
	defer r.mu.Unlock()

	var snap config.Tree
	if r.identity == "" {
		snap = config.Tree{"status": config.Str(task.StateAbsent)}
	} else {
		snap = r.params.Clone()
		snap["status"] = config.Str(r.state)
		if !r.unnamed {
			snap["name"] = config.Str(r.identity)
		}
	}
	r.bus.Publish(task.TopicReceiverStatus, task.Status(snap))
}

// DecoderConfig controls the simulated decoder.
type DecoderConfig struct {
	// Script is the frame sequence emitted once the decoder starts.
	Script []frame.Frame
	// Emit is the delay between scripted frames.
	Emit time.Duration
	// Heartbeat overrides the status publishing interval, for tests.
	Heartbeat time.Duration
	// OmitStatus reports snapshots without a status field (the invalid
	// decoder failure mode).
	OmitStatus bool
}

// Decoder is the simulated protocol decoder task.
type Decoder struct {
	bus        *rt.Bus
	log        *logging.Logger
	script     []frame.Frame
	emit       time.Duration
	heartbeat  time.Duration
	omitStatus bool
	started    chan struct{}

	mu     sync.Mutex
	state  string
	params config.Tree
}

// NewDecoder creates a simulated decoder publishing on bus.
func NewDecoder(bus *rt.Bus, log *logging.Logger, cfg DecoderConfig) *Decoder {
	emit := cfg.Emit
	if emit <= 0 {
		emit = 20 * time.Millisecond
	}
	heartbeat := cfg.Heartbeat
	if heartbeat <= 0 {
		heartbeat = defaultHeartbeat
	}
	return &Decoder{
		bus:        bus,
		log:        log,
		script:     cfg.Script,
		emit:       emit,
		heartbeat:  heartbeat,
		omitStatus: cfg.OmitStatus,
		started:    make(chan struct{}, 1),
		state:      task.StateIdle,
		params:     config.DecoderDefaults(),
	}
}

func (d *Decoder) Name() string { return "radio.decoder" }

// Run serves commands, publishes status heartbeats, and plays the frame
// script once started.
func (d *Decoder) Run(ctx context.Context) error {
	cancel := d.bus.Subscribe(task.TopicDecoderCommand, d.handle)
	defer cancel()

	ticker := time.NewTicker(d.heartbeat)
	defer ticker.Stop()

	d.publishStatus()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			d.publishStatus()
		case <-d.started:
			d.play(ctx)
		}
	}
}

func (d *Decoder) handle(msg any) {
	cmd, ok := msg.(task.Command)
	if !ok {
		return
	}

	d.mu.Lock()
	switch cmd.Name {
	case task.Query:
	case task.Configure:
		config.Merge(d.params, cmd.Payload)
		d.log.Debugf("sim.decoder", "configured: %s", cmd.Payload)
	case task.Start:
		if d.state == task.StateIdle {
			d.state = task.StateRunning
			select {
			case d.started <- struct{}{}:
			default:
			}
		}
	case task.Stop:
		d.state = task.StateIdle
	}
	d.mu.Unlock()

	cmd.Ack()
	d.publishStatus()
}

func (d *Decoder) publishStatus() {
	d.mu.Lock()
	defer d.mu.Unlock()

	snap := d.params.Clone()
	if !d.omitStatus {
		snap["status"] = config.Str(d.state)
	}
	d.bus.Publish(task.TopicDecoderStatus, task.Status(snap))
}

// play emits the scripted frames in order, pacing them with the emit
// delay and stopping early on cancellation.
func (d *Decoder) play(ctx context.Context) {
	for _, f := range d.script {
		select {
		case <-ctx.Done():
			return
		case <-time.After(d.emit):
		}
		d.bus.Publish(task.TopicDecoderFrame, f)
	}
}

// DemoScript is a short NFC-A select exchange used by the binary's
// simulated backend.
func DemoScript() []frame.Frame {
	return []frame.Frame{
		{Time: 0.000, Kind: frame.CarrierOn},
		{Time: 0.104, Kind: frame.Poll, Tech: frame.TechA, Rate: 106000, Data: []byte{0x26}},
		{Time: 0.105, Kind: frame.Listen, Tech: frame.TechA, Rate: 106000, Data: []byte{0x44, 0x00}},
		{Time: 0.109, Kind: frame.Poll, Tech: frame.TechA, Rate: 106000, Data: []byte{0x93, 0x20}},
		{Time: 0.110, Kind: frame.Listen, Tech: frame.TechA, Rate: 106000, Data: []byte{0x88, 0x04, 0xC1, 0x5A, 0x17}},
		{Time: 0.115, Kind: frame.Poll, Tech: frame.TechA, Rate: 106000, Data: []byte{0x93, 0x70, 0x88, 0x04, 0xC1, 0x5A, 0x17, 0x6B, 0x30}},
		{Time: 0.116, Kind: frame.Listen, Tech: frame.TechA, Rate: 106000, Data: []byte{0x04, 0xDA, 0x17}},
		{Time: 0.250, Kind: frame.CarrierOff},
	}
}
