// Package isotime converts between wire-format ISO-8601 UTC timestamps
// (millisecond precision, "YYYY-MM-DDTHH:MM:SS.sssZ") and the epoch-seconds
// float64 representation used internally throughout the nucleation core.
//
// All conversions go through time.UTC explicitly. The teacher's
// internal/units package keeps a curated IANA timezone list for display
// purposes; this package deliberately does not reach for it; the spec
// flags process-wide TZ environment mutation as a portability hazard
// (§9), so conversions here never touch os.Setenv("TZ", ...) or the
// local zone at all.
package isotime

import (
	"math"
	"time"
)

// Layout is the wire format: millisecond-precision UTC, e.g.
// "2026-07-30T12:34:56.789Z".
const Layout = "2006-01-02T15:04:05.000Z"

// Encode converts epoch seconds to the wire ISO-8601 string, rounded to
// the nearest millisecond.
func Encode(epochSeconds float64) string {
	ms := int64(math.Round(epochSeconds * 1000))
	return time.UnixMilli(ms).UTC().Format(Layout)
}

// Decode parses a wire ISO-8601 string into epoch seconds. Accepts both the
// canonical millisecond layout and the bare-seconds variant (no fractional
// part) for leniency against upstream producers that omit it.
func Decode(s string) (float64, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		// Fall back to RFC3339, which covers "Z" with no/variable fractional digits.
		t, err = time.Parse(time.RFC3339Nano, s)
		if err != nil {
			return 0, err
		}
	}
	return float64(t.UnixNano()) / 1e9, nil
}

// RoundTrip reports whether Decode(Encode(t)) reproduces t to millisecond
// precision (within half a millisecond).
func RoundTrip(epochSeconds float64) bool {
	back, err := Decode(Encode(epochSeconds))
	if err != nil {
		return false
	}
	const msec = 1.0 / 1000.0
	diff := back - epochSeconds
	if diff < 0 {
		diff = -diff
	}
	return diff < msec/2+1e-9
}
