package ht12e

import (
	"errors"
	"time"
)

// Level is the logical level of the input line.
type Level bool

const (
	// Low level.
	Low Level = false
	// High level.
	High Level = true
)

// String implements fmt.Stringer.
func (l Level) String() string {
	if l == High {
		return "high"
	}
	return "low"
}

// ErrTimedOut is returned by a Source when the expected edge doesn't happen
// within the timeout.
var ErrTimedOut = errors.New("timed out")

// Source measures pulses on a single input line.
type Source interface {
	// WaitForLevel returns as soon as the line is at level, or ErrTimedOut.
	WaitForLevel(level Level, timeout time.Duration) error
	// MeasurePulse measures the duration of the next pulse at level.
	// If the line is already at level, it waits for the line to leave the
	// level first. The timeout covers both waiting and measuring.
	MeasurePulse(level Level, timeout time.Duration) (time.Duration, error)
}

// Clock provides the time used to account elapsed time.
// A Source may implement Clock if it runs on its own time base.
type Clock interface {
	Now() time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

// ClockOf returns src if it implements Clock, or the wall clock.
func ClockOf(src Source) Clock {
	if c, ok := src.(Clock); ok {
		return c
	}
	return wallClock{}
}
