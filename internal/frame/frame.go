// Package frame defines decoded NFC frames, the sink queue buffering them
// between the decoder task and the control loop, and the console
// formatter.
package frame

// Kind classifies a decoded frame.
type Kind int

const (
	CarrierOff Kind = iota
	CarrierOn
	Poll
	Listen
)

// Label returns the console tag for the frame kind. Poll frames travel
// reader to card (PCD->PICC), listen frames the other way.
func (k Kind) Label() string {
	switch k {
	case CarrierOff:
		return "CarrierOff"
	case CarrierOn:
		return "CarrierOn"
	case Poll:
		return "PCD->PICC"
	case Listen:
		return "PICC->PCD"
	default:
		return "Unknown"
	}
}

// Tech identifies the protocol family a frame belongs to.
type Tech int

const (
	TechNone Tech = iota
	TechA
	TechB
	TechF
	TechV
)

func (t Tech) Label() string {
	switch t {
	case TechA:
		return "NfcA"
	case TechB:
		return "NfcB"
	case TechF:
		return "NfcF"
	case TechV:
		return "NfcV"
	default:
		return "None"
	}
}

// Frame is one decoded unit of protocol data or a carrier on/off event.
// Immutable once produced by the decoder.
type Frame struct {
	// Time is the frame start timestamp in seconds from capture start.
	Time float64
	Kind Kind
	Tech Tech
	// Rate is the bit rate in bits per second.
	Rate int
	Data []byte
}

// HasData reports whether the frame carries a payload worth printing.
func (f Frame) HasData() bool {
	return f.Kind == Poll || f.Kind == Listen
}
