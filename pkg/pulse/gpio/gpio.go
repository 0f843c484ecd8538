// Package gpio implements ht12e.Source on a GPIO pin using periph.io.
package gpio

import (
	"fmt"
	"time"

	"github.com/golang/glog"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/robotalks/ht12d/pkg/ht12e"
)

// LevelReader reads the level of an input pin. gpio.PinIn implements it.
type LevelReader interface {
	Read() gpio.Level
}

// Source samples a pin by polling. Pulse widths of the encoder are in the
// hundreds of microseconds, below what edge notification reliably delivers.
type Source struct {
	Pin LevelReader
	// Poll is the delay between samples. 0 busy-waits.
	Poll time.Duration
	// Invert swaps high and low, for receivers with an inverting output.
	Invert bool
}

// New creates a Source reading from pin.
func New(pin LevelReader) *Source {
	return &Source{Pin: pin}
}

// Open initializes the host drivers and opens the pin by name
// (e.g. "GPIO17") as an input.
func Open(name string, pull gpio.Pull) (*Source, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("init host: %w", err)
	}
	p := gpioreg.ByName(name)
	if p == nil {
		return nil, fmt.Errorf("pin %q not found", name)
	}
	if err := p.In(pull, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("configure pin %s: %w", p, err)
	}
	glog.Infof("pin %s opened (pull %s)", p, pull)
	return New(p), nil
}

// ParsePull parses a pull resistor setting: "up", "down", "float" or "".
func ParsePull(s string) (gpio.Pull, error) {
	switch s {
	case "", "none", "nochange":
		return gpio.PullNoChange, nil
	case "float":
		return gpio.Float, nil
	case "up":
		return gpio.PullUp, nil
	case "down":
		return gpio.PullDown, nil
	}
	return gpio.PullNoChange, fmt.Errorf("invalid pull %q", s)
}

func (s *Source) level() ht12e.Level {
	return ht12e.Level(bool(s.Pin.Read()) != s.Invert)
}

// waitFor polls until the pin is at level and returns the time it was
// first seen there.
func (s *Source) waitFor(level ht12e.Level, deadline time.Time) (time.Time, error) {
	for {
		now := time.Now()
		if s.level() == level {
			return now, nil
		}
		if !now.Before(deadline) {
			return now, ht12e.ErrTimedOut
		}
		if s.Poll > 0 {
			time.Sleep(s.Poll)
		}
	}
}

// WaitForLevel implements ht12e.Source.
func (s *Source) WaitForLevel(level ht12e.Level, timeout time.Duration) error {
	_, err := s.waitFor(level, time.Now().Add(timeout))
	return err
}

// MeasurePulse implements ht12e.Source.
func (s *Source) MeasurePulse(level ht12e.Level, timeout time.Duration) (time.Duration, error) {
	deadline := time.Now().Add(timeout)
	if _, err := s.waitFor(!level, deadline); err != nil {
		return 0, err
	}
	start, err := s.waitFor(level, deadline)
	if err != nil {
		return 0, err
	}
	end, err := s.waitFor(!level, deadline)
	if err != nil {
		return 0, err
	}
	return end.Sub(start), nil
}
