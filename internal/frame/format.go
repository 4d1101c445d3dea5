package frame

import (
	"fmt"
	"math"
	"strings"
)

// maxLine bounds one rendered frame line. Payloads long enough to hit it
// are truncated; the line itself stays well formed.
const maxLine = 16384

// Format renders a frame as one console line (without trailing newline):
// zero-padded seconds with millisecond precision, the kind label, and for
// data frames the technology, bit rate rounded to the nearest kHz, and
// the payload as uppercase space-separated hex bytes.
//
//	000012.482 (PCD->PICC) [NfcA@106]: 26
func Format(f Frame) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%010.3f (%s) ", f.Time, f.Kind.Label())

	if f.HasData() {
		fmt.Fprintf(&b, "[%s@%.0f]: ", f.Tech.Label(), math.Round(float64(f.Rate)/1000))
		for _, octet := range f.Data {
			if b.Len()+3 > maxLine {
				break
			}
			fmt.Fprintf(&b, "%02X ", octet)
		}
	}

	return b.String()
}
