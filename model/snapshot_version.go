package model

import (
	"time"

	"github.com/pkg/errors"
)

const (
	// seconds of 0001-01-01T00:00:00Z and 9999-12-31T23:59:59Z, the range
	// the backend's timestamp type can represent
	minTimestampSeconds = -62135596800
	maxTimestampSeconds = 253402300799
)

// TimestampFromSecondsNanos builds a UTC time from the wire representation,
// rejecting values the backend could never have produced.
func TimestampFromSecondsNanos(seconds int64, nanos int32) (time.Time, error) {
	if nanos < 0 || nanos >= 1e9 {
		return time.Time{}, errors.Errorf(
			"TimestampFromSecondsNanos error: nanos %d out of range", nanos)
	}
	if seconds < minTimestampSeconds || seconds > maxTimestampSeconds {
		return time.Time{}, errors.Errorf(
			"TimestampFromSecondsNanos error: seconds %d out of range", seconds)
	}
	return time.Unix(seconds, int64(nanos)).UTC(), nil
}

// SnapshotVersion is a server-assigned logical timestamp marking the
// consistency point of read data.
type SnapshotVersion struct {
	Time time.Time
}

func NewSnapshotVersion(t time.Time) SnapshotVersion {
	return SnapshotVersion{Time: t.UTC()}
}

func (r SnapshotVersion) Compare(other SnapshotVersion) int {
	switch {
	case r.Time.Before(other.Time):
		return -1
	case r.Time.After(other.Time):
		return 1
	default:
		return 0
	}
}
