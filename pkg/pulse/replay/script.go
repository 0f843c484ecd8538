package replay

import (
	"time"

	"github.com/robotalks/ht12d/pkg/ht12e"
)

// Sync-to-period ratio of the encoder.
const syncRatio = 36

// Script is an ordered pulse train.
type Script struct {
	Segments []Segment
	// Idle is the level after the last segment. Ignored when Loop is set.
	Idle ht12e.Level
	// Loop replays the segments cyclically.
	Loop bool
	// Ends stops the replay after the last segment: waits reaching it
	// fail with ErrEnded instead of idling. Ignored when Loop is set.
	Ends bool
}

// NewScript creates an empty script idling high.
func NewScript() *Script {
	return &Script{Idle: ht12e.High}
}

// Add appends a segment.
func (s *Script) Add(level ht12e.Level, d time.Duration) *Script {
	s.Segments = append(s.Segments, Segment{Level: level, Duration: d})
	return s
}

// High appends a high segment.
func (s *Script) High(d time.Duration) *Script {
	return s.Add(ht12e.High, d)
}

// Low appends a low segment.
func (s *Script) Low(d time.Duration) *Script {
	return s.Add(ht12e.Low, d)
}

// Sync appends a high pilot and the sync pulse, then the line goes high for
// one period before data starts.
func (s *Script) Sync(period time.Duration) *Script {
	return s.High(period).Low(syncRatio * period).High(period)
}

// Bits appends data pulses: each one is a low gap of one period followed by
// a high pulse of the given duration, and a closing low gap.
func (s *Script) Bits(period time.Duration, highs ...time.Duration) *Script {
	for _, d := range highs {
		s.Low(period).High(d)
	}
	return s.Low(period)
}

// Frame appends a complete frame encoding w.
func (s *Script) Frame(period time.Duration, w ht12e.Word) *Script {
	return s.Sync(period).Bits(period, FrameBits(period, w)...)
}

// Repeat sets the script to loop.
func (s *Script) Repeat() *Script {
	s.Loop = true
	return s
}

// End sets the script to stop after the last segment.
func (s *Script) End() *Script {
	s.Ends = true
	return s
}

// Source creates a Source replaying the script.
func (s *Script) Source() *Source {
	return NewSource(s)
}

// FrameBits returns the data pulse widths encoding w, MSB first: one period
// for 1 and two periods for 0.
func FrameBits(period time.Duration, w ht12e.Word) []time.Duration {
	highs := make([]time.Duration, 0, ht12e.WordBits)
	for _, bit := range w.Bits() {
		if bit {
			highs = append(highs, period)
		} else {
			highs = append(highs, 2*period)
		}
	}
	return highs
}
