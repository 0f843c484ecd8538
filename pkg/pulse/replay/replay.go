// Package replay provides a Source replaying a scripted pulse train on a
// virtual clock.
package replay

import (
	"errors"
	"time"

	"github.com/robotalks/ht12d/pkg/ht12e"
)

// Segment is a period of time the line stays at a level.
type Segment struct {
	Level    ht12e.Level
	Duration time.Duration
}

// ErrEnded indicates a script with Ends set has been replayed to the end.
var ErrEnded = errors.New("replay ended")

// Epoch is the virtual time when a replay starts.
var Epoch = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// Source implements ht12e.Source and ht12e.Clock over a Script.
// Waits never sleep: the virtual clock jumps to the edge, or by the whole
// timeout when the edge doesn't come in time.
type Source struct {
	segments []Segment
	starts   []time.Duration
	total    time.Duration
	idle     ht12e.Level
	loop     bool
	ends     bool

	now   time.Duration
	calls int
}

// NewSource creates a Source from a script.
func NewSource(s *Script) *Source {
	src := &Source{
		segments: append([]Segment(nil), s.Segments...),
		idle:     s.Idle,
		loop:     s.Loop,
		ends:     s.Ends && !s.Loop,
	}
	src.starts = make([]time.Duration, len(src.segments))
	for n, seg := range src.segments {
		src.starts[n] = src.total
		src.total += seg.Duration
	}
	return src
}

// Now implements ht12e.Clock.
func (s *Source) Now() time.Time {
	return Epoch.Add(s.now)
}

// Elapsed returns the virtual time since the replay started.
func (s *Source) Elapsed() time.Duration {
	return s.now
}

// Calls returns the number of WaitForLevel and MeasurePulse calls.
func (s *Source) Calls() int {
	return s.calls
}

// Rewind restarts the replay from the beginning.
func (s *Source) Rewind() {
	s.now, s.calls = 0, 0
}

// Ended tells if the replay is over. It's never true unless the script
// has Ends set.
func (s *Source) Ended() bool {
	return s.ends && s.now >= s.total
}

// WaitForLevel implements ht12e.Source.
func (s *Source) WaitForLevel(level ht12e.Level, timeout time.Duration) error {
	s.calls++
	if s.Ended() {
		return ErrEnded
	}
	deadline := s.now + timeout
	if s.levelAt(s.now) == level {
		return nil
	}
	return s.advanceToChange(deadline)
}

// MeasurePulse implements ht12e.Source.
func (s *Source) MeasurePulse(level ht12e.Level, timeout time.Duration) (time.Duration, error) {
	s.calls++
	if s.Ended() {
		return 0, ErrEnded
	}
	deadline := s.now + timeout
	if s.levelAt(s.now) == level {
		if err := s.advanceToChange(deadline); err != nil {
			return 0, err
		}
	}
	if err := s.advanceToChange(deadline); err != nil {
		return 0, err
	}
	start := s.now
	if err := s.advanceToChange(deadline); err != nil {
		return 0, err
	}
	return s.now - start, nil
}

func (s *Source) advanceToChange(deadline time.Duration) error {
	at, ok := s.nextChange(s.now)
	if s.ends && (!ok || at >= s.total) {
		if deadline < s.total {
			s.now = deadline
			return ht12e.ErrTimedOut
		}
		s.now = s.total
		return ErrEnded
	}
	if !ok || at > deadline {
		s.now = deadline
		return ht12e.ErrTimedOut
	}
	s.now = at
	return nil
}

// segmentAt returns the level at t and when it ends. end is negative if the
// level holds forever.
func (s *Source) segmentAt(t time.Duration) (level ht12e.Level, end time.Duration) {
	if s.total <= 0 || (!s.loop && t >= s.total) {
		return s.idle, -1
	}
	var base time.Duration
	if s.loop {
		base = t / s.total * s.total
	}
	off := t - base
	for n, seg := range s.segments {
		if off >= s.starts[n] && off < s.starts[n]+seg.Duration {
			return seg.Level, base + s.starts[n] + seg.Duration
		}
	}
	return s.idle, -1
}

func (s *Source) levelAt(t time.Duration) ht12e.Level {
	level, _ := s.segmentAt(t)
	return level
}

// nextChange finds the first time after t the level differs from the level
// at t.
func (s *Source) nextChange(t time.Duration) (time.Duration, bool) {
	level, end := s.segmentAt(t)
	for n := 0; n <= len(s.segments); n++ {
		if end < 0 {
			return 0, false
		}
		next, nextEnd := s.segmentAt(end)
		if next != level {
			return end, true
		}
		end = nextEnd
	}
	return 0, false
}
