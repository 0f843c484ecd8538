package replay

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/robotalks/ht12d/pkg/ht12e"
)

// ScriptFile is the YAML form of a Script. Unless loop or hold is set, the
// replay ends after the last step:
//
//	period_us: 500
//	idle: high
//	loop: true
//	hold: false
//	steps:
//	  - high: 500
//	  - low: 18000
//	  - bits: [500, 1000, 500]
//	  - frame: 0xd36
type ScriptFile struct {
	PeriodMicros int64      `yaml:"period_us"`
	Idle         string     `yaml:"idle"`
	Loop         bool       `yaml:"loop"`
	Hold         bool       `yaml:"hold"`
	Steps        []StepFile `yaml:"steps"`
}

// StepFile is a single step. Exactly one field is set.
type StepFile struct {
	High  *int64  `yaml:"high,omitempty"`
	Low   *int64  `yaml:"low,omitempty"`
	Bits  []int64 `yaml:"bits,omitempty"`
	Frame *uint16 `yaml:"frame,omitempty"`
}

func micros(us int64) time.Duration {
	return time.Duration(us) * time.Microsecond
}

func parseLevel(s string) (ht12e.Level, error) {
	switch strings.ToLower(s) {
	case "", "high", "1":
		return ht12e.High, nil
	case "low", "0":
		return ht12e.Low, nil
	}
	return ht12e.Low, fmt.Errorf("invalid level %q", s)
}

// Script converts the file into a Script.
func (f *ScriptFile) Script() (*Script, error) {
	idle, err := parseLevel(f.Idle)
	if err != nil {
		return nil, err
	}
	period := micros(f.PeriodMicros)
	s := &Script{Idle: idle, Loop: f.Loop, Ends: !f.Loop && !f.Hold}
	for n, step := range f.Steps {
		switch {
		case step.High != nil:
			if *step.High < 0 {
				return nil, fmt.Errorf("step %d: negative high %d", n, *step.High)
			}
			s.High(micros(*step.High))
		case step.Low != nil:
			if *step.Low < 0 {
				return nil, fmt.Errorf("step %d: negative low %d", n, *step.Low)
			}
			s.Low(micros(*step.Low))
		case step.Bits != nil || step.Frame != nil:
			if period <= 0 {
				return nil, fmt.Errorf("step %d: period_us required", n)
			}
			if step.Frame != nil {
				if *step.Frame >= 1<<ht12e.WordBits {
					return nil, fmt.Errorf("step %d: frame 0x%x exceeds %d bits", n, *step.Frame, ht12e.WordBits)
				}
				s.Frame(period, ht12e.Word(*step.Frame))
				continue
			}
			highs := make([]time.Duration, len(step.Bits))
			for i, us := range step.Bits {
				if us < 0 {
					return nil, fmt.Errorf("step %d: negative bit %d", n, us)
				}
				highs[i] = micros(us)
			}
			s.Bits(period, highs...)
		default:
			return nil, fmt.Errorf("step %d: empty", n)
		}
	}
	return s, nil
}

// Parse parses a YAML script.
func Parse(data []byte) (*Script, error) {
	var f ScriptFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	return f.Script()
}

// Load reads a YAML script from a file.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
