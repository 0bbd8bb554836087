// Package inter defines small value types shared between Umbra's chain rules
// and the genesis core.
package inter

import (
	"time"
)

// Timestamp is a point in time in nanoseconds since the Unix epoch.
type Timestamp uint64

// FromTime converts a time.Time to a Timestamp.
func FromTime(t time.Time) Timestamp {
	return Timestamp(t.UnixNano())
}

// Time converts the Timestamp back to a time.Time.
func (t Timestamp) Time() time.Time {
	return time.Unix(0, int64(t))
}

// MaxTimestamp returns the later of two timestamps.
func MaxTimestamp(x, y Timestamp) Timestamp {
	if x > y {
		return x
	}
	return y
}
