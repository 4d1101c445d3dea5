package sim

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nfclab/nfcrx/internal/config"
	"github.com/nfclab/nfcrx/internal/frame"
	"github.com/nfclab/nfcrx/internal/logging"
	"github.com/nfclab/nfcrx/internal/rt"
	"github.com/nfclab/nfcrx/internal/task"
)

func testLogger() *logging.Logger {
	return logging.New(io.Discard, logging.LevelNone)
}

func startTask(t *testing.T, tk rt.Task) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = tk.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

func collectStatus(bus *rt.Bus, topic string) (chan task.Status, func()) {
	ch := make(chan task.Status, 16)
	cancel := bus.Subscribe(topic, func(msg any) {
		if snap, ok := msg.(task.Status); ok {
			ch <- snap
		}
	})
	return ch, cancel
}

func nextStatus(t *testing.T, ch chan task.Status) task.Status {
	t.Helper()
	select {
	case snap := <-ch:
		return snap
	case <-time.After(time.Second):
		t.Fatal("no status snapshot")
		return nil
	}
}

func TestReceiver_AnswersQueryWithIdentity(t *testing.T) {
	bus := rt.NewBus(16)
	defer bus.Close()

	startTask(t, NewReceiver(bus, testLogger(), ReceiverConfig{
		Identity:  "radio.airspy://0",
		Heartbeat: time.Hour,
	}))

	ch, cancel := collectStatus(bus, task.TopicReceiverStatus)
	defer cancel()

	bus.Publish(task.TopicReceiverCommand, task.Command{Name: task.Query})

	snap := nextStatus(t, ch)
	name, ok := snap.Name()
	require.True(t, ok)
	assert.Equal(t, "radio.airspy://0", name)
	state, _ := snap.State()
	assert.Equal(t, task.StateIdle, state)
	_, ok = snap.SampleRate()
	assert.True(t, ok)
}

func TestReceiver_AbsentDeviceReportsAbsent(t *testing.T) {
	bus := rt.NewBus(16)
	defer bus.Close()

	startTask(t, NewReceiver(bus, testLogger(), ReceiverConfig{Heartbeat: time.Hour}))

	ch, cancel := collectStatus(bus, task.TopicReceiverStatus)
	defer cancel()

	bus.Publish(task.TopicReceiverCommand, task.Command{Name: task.Query})

	snap := nextStatus(t, ch)
	state, _ := snap.State()
	assert.Equal(t, task.StateAbsent, state)
	_, ok := snap.Name()
	assert.False(t, ok)
}

func TestReceiver_ConfigureMergesAndAcks(t *testing.T) {
	bus := rt.NewBus(16)
	defer bus.Close()

	startTask(t, NewReceiver(bus, testLogger(), ReceiverConfig{
		Identity:  "radio.rtlsdr://0",
		Heartbeat: time.Hour,
	}))

	ch, cancel := collectStatus(bus, task.TopicReceiverStatus)
	defer cancel()

	acked := make(chan struct{})
	bus.Publish(task.TopicReceiverCommand, task.Command{
		Name:    task.Configure,
		Payload: config.Tree{"centerFreq": config.Num(27120000), "gainValue": config.Num(40)},
		Done:    func() { close(acked) },
	})

	select {
	case <-acked:
	case <-time.After(time.Second):
		t.Fatal("configure not acknowledged")
	}

	snap := nextStatus(t, ch)
	assert.True(t, snap["centerFreq"].Equal(config.Num(27120000)))
	assert.True(t, snap["gainValue"].Equal(config.Num(40)))
}

func TestReceiver_StartTransitionsToRunning(t *testing.T) {
	bus := rt.NewBus(16)
	defer bus.Close()

	startTask(t, NewReceiver(bus, testLogger(), ReceiverConfig{
		Identity:  "radio.airspy://0",
		Heartbeat: time.Hour,
	}))

	ch, cancel := collectStatus(bus, task.TopicReceiverStatus)
	defer cancel()

	bus.Publish(task.TopicReceiverCommand, task.Command{Name: task.Start})

	snap := nextStatus(t, ch)
	state, _ := snap.State()
	assert.Equal(t, task.StateRunning, state)
}

func TestDecoder_PlaysScriptAfterStart(t *testing.T) {
	bus := rt.NewBus(16)
	defer bus.Close()

	script := []frame.Frame{
		{Time: 0.1, Kind: frame.CarrierOn},
		{Time: 0.2, Kind: frame.Poll, Tech: frame.TechA, Rate: 106000, Data: []byte{0x26}},
		{Time: 0.3, Kind: frame.CarrierOff},
	}
	startTask(t, NewDecoder(bus, testLogger(), DecoderConfig{
		Script:    script,
		Emit:      time.Millisecond,
		Heartbeat: time.Hour,
	}))

	frames := make(chan frame.Frame, 8)
	cancel := bus.Subscribe(task.TopicDecoderFrame, func(msg any) {
		if f, ok := msg.(frame.Frame); ok {
			frames <- f
		}
	})
	defer cancel()

	bus.Publish(task.TopicDecoderCommand, task.Command{Name: task.Start})

	var got []frame.Frame
	for len(got) < len(script) {
		select {
		case f := <-frames:
			got = append(got, f)
		case <-time.After(time.Second):
			t.Fatalf("script stalled after %d frames", len(got))
		}
	}
	assert.Equal(t, script, got)
}

func TestDecoder_StartIsIgnoredWhenNotIdle(t *testing.T) {
	bus := rt.NewBus(16)
	defer bus.Close()

	startTask(t, NewDecoder(bus, testLogger(), DecoderConfig{
		Script:    []frame.Frame{{Kind: frame.CarrierOn}},
		Emit:      time.Millisecond,
		Heartbeat: time.Hour,
	}))

	frames := make(chan frame.Frame, 8)
	cancel := bus.Subscribe(task.TopicDecoderFrame, func(msg any) {
		if f, ok := msg.(frame.Frame); ok {
			frames <- f
		}
	})
	defer cancel()

	bus.Publish(task.TopicDecoderCommand, task.Command{Name: task.Start})
	bus.Publish(task.TopicDecoderCommand, task.Command{Name: task.Start})

	// Only one playback of the single-frame script.
	<-frames
	select {
	case f := <-frames:
		t.Fatalf("script replayed: %v", f)
	case <-time.After(100 * time.Millisecond):
	}
}
