package config

// Default receiver profiles, keyed by device type (the identity prefix
// before the first ':'). Values mirror the tuning each device needs for
// the 13.56 MHz NFC band: airspy captures the third harmonic, rtlsdr the
// second.
func ReceiverDefaults() map[string]Tree {
	return map[string]Tree{
		"radio.airspy": {
			"centerFreq": Num(40680000),
			"sampleRate": Num(10000000),
			"gainMode":   Num(1),
			"gainValue":  Num(3),
			"mixerAgc":   Num(0),
			"tunerAgc":   Num(0),
		},
		"radio.rtlsdr": {
			"centerFreq": Num(27120000),
			"sampleRate": Num(3200000),
			"gainMode":   Num(1),
			"gainValue":  Num(77),
			"mixerAgc":   Num(0),
			"tunerAgc":   Num(0),
		},
	}
}

// DecoderDefaults returns the protocol-agnostic decoder profile: all four
// protocol families enabled, raw-signal debug capture disabled. The
// sampleRate key is populated later from the receiver's reported rate.
func DecoderDefaults() Tree {
	return Tree{
		"debugEnabled": Bool(false),
		"nfca":         Sub(Tree{"enabled": Bool(true)}),
		"nfcb":         Sub(Tree{"enabled": Bool(true)}),
		"nfcf":         Sub(Tree{"enabled": Bool(true)}),
		"nfcv":         Sub(Tree{"enabled": Bool(true)}),
	}
}
