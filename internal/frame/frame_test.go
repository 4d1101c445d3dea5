package frame

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue_DrainPreservesOrderAndEmpties(t *testing.T) {
	q := NewQueue()
	f1 := Frame{Time: 1.0, Kind: Poll, Tech: TechA, Rate: 106000, Data: []byte{0x26}}
	f2 := Frame{Time: 1.1, Kind: Listen, Tech: TechA, Rate: 106000, Data: []byte{0x04, 0x00}}
	f3 := Frame{Time: 1.2, Kind: CarrierOff}

	q.Push(f1)
	q.Push(f2)
	q.Push(f3)

	batch := q.Drain()
	require.Len(t, batch, 3)
	assert.Equal(t, []Frame{f1, f2, f3}, batch)
	assert.Zero(t, q.Len())
	assert.Empty(t, q.Drain())
}

func TestQueue_ConcurrentPush(t *testing.T) {
	q := NewQueue()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				q.Push(Frame{Kind: CarrierOn})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 800, len(q.Drain()))
}

func TestFormat_DataFrame(t *testing.T) {
	f := Frame{
		Time: 12.482,
		Kind: Poll,
		Tech: TechA,
		Rate: 106000,
		Data: []byte{0x26},
	}
	assert.Equal(t, "000012.482 (PCD->PICC) [NfcA@106]: 26 ", Format(f))
}

func TestFormat_ListenFrame(t *testing.T) {
	f := Frame{
		Time: 0.734,
		Kind: Listen,
		Tech: TechB,
		Rate: 423750,
		Data: []byte{0x50, 0x0A, 0xFF},
	}
	assert.Equal(t, "000000.734 (PICC->PCD) [NfcB@424]: 50 0A FF ", Format(f))
}

func TestFormat_CarrierEventsOmitPayload(t *testing.T) {
	on := Format(Frame{Time: 3.001, Kind: CarrierOn, Data: []byte{0xAA}})
	off := Format(Frame{Time: 4.250, Kind: CarrierOff})

	assert.Equal(t, "000003.001 (CarrierOn) ", on)
	assert.Equal(t, "000004.250 (CarrierOff) ", off)
}

func TestFormat_TruncatesVeryLongPayload(t *testing.T) {
	f := Frame{
		Time: 1.0,
		Kind: Listen,
		Tech: TechV,
		Rate: 26480,
		Data: make([]byte, 8192),
	}

	line := Format(f)
	assert.LessOrEqual(t, len(line), maxLine)
	assert.True(t, strings.HasPrefix(line, "000001.000 (PICC->PCD) [NfcV@26]: "))
	// Truncation never splits a hex pair.
	assert.True(t, strings.HasSuffix(line, "00 "))
}

func TestTechLabels(t *testing.T) {
	assert.Equal(t, "NfcF", TechF.Label())
	assert.Equal(t, "None", TechNone.Label())
	assert.Equal(t, "Unknown", Kind(99).Label())
}
