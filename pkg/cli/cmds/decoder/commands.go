package decoder

import (
	"fmt"
	"strconv"
	"time"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/ht12d/pkg/cli/sh"
	"github.com/robotalks/ht12d/pkg/ht12e"
)

// WordResult is the printable form of a decoded word.
type WordResult struct {
	Word    string `json:"word"`
	Address uint8  `json:"address"`
	Data    uint8  `json:"data"`
}

// NewWordResult creates a WordResult.
func NewWordResult(w ht12e.Word) WordResult {
	return WordResult{Word: w.String(), Address: w.Address(), Data: w.Data()}
}

func (r WordResult) String() string {
	return fmt.Sprintf("%s addr=0x%02x data=0x%x", r.Word, r.Address, r.Data)
}

// PeriodResult is the printable form of the clock period.
type PeriodResult struct {
	PeriodUs  int64   `json:"period_us"`
	Frequency float64 `json:"frequency"`
	Samples   int     `json:"samples,omitempty"`
	Degraded  bool    `json:"degraded,omitempty"`
}

// NewPeriodResult creates a PeriodResult.
func NewPeriodResult(cal ht12e.Calibration) PeriodResult {
	r := PeriodResult{
		PeriodUs: int64(cal.Period / time.Microsecond),
		Samples:  cal.Samples,
		Degraded: cal.Degraded,
	}
	if cal.Period > 0 {
		r.Frequency = float64(time.Second) / float64(cal.Period)
	}
	return r
}

func (r PeriodResult) String() string {
	s := fmt.Sprintf("%dus (%.0fHz)", r.PeriodUs, r.Frequency)
	if r.Samples > 0 {
		s += fmt.Sprintf(" from %d bursts", r.Samples)
	}
	if r.Degraded {
		s += " default"
	}
	return s
}

// FormatBits prints bits as 0/1, pin 0 first.
func FormatBits(bits ht12e.Bits) string {
	b := make([]byte, 0, len(bits))
	for pin := 0; pin < ht12e.WordBits; pin++ {
		if bits[ht12e.WordBits-1-pin] {
			b = append(b, '1')
		} else {
			b = append(b, '0')
		}
	}
	return string(b)
}

func parseDuration(args []string, def time.Duration) (time.Duration, error) {
	if len(args) == 0 {
		return def, nil
	}
	return time.ParseDuration(args[0])
}

var (
	// CalibrateCmd detects the clock period from the line.
	CalibrateCmd = ishell.Cmd{
		Name:    "calibrate",
		Aliases: []string{"cal"},
		Help:    "[ATTEMPTS]",
		Func: sh.MustBeOpen(func(c *ishell.Context, s *sh.Shell) {
			calibrator := s.Config.Decoder.NewCalibrator()
			if len(c.Args) > 0 {
				n, err := strconv.Atoi(c.Args[0])
				if err != nil {
					c.Err(err)
					return
				}
				calibrator.Attempts = n
			}
			cal, err := s.Decoder.AutoCalibrate(calibrator)
			if err != nil {
				c.Err(err)
				return
			}
			s.Calibration = cal
			res := NewPeriodResult(cal)
			s.Output(c, res, res.String())
		}),
	}

	// PeriodCmd shows or sets the clock period.
	PeriodCmd = ishell.Cmd{
		Name:    "period",
		Aliases: []string{"freq"},
		Help:    "[FREQUENCY_HZ]",
		Func: sh.MustBeOpen(func(c *ishell.Context, s *sh.Shell) {
			if len(c.Args) > 0 {
				hz, err := strconv.ParseFloat(c.Args[0], 64)
				if err != nil {
					c.Err(err)
					return
				}
				period, err := ht12e.PeriodFromFrequency(hz)
				if err == nil {
					err = s.Decoder.SetClockPeriod(period)
				}
				if err != nil {
					c.Err(err)
					return
				}
				s.Calibration = ht12e.Calibration{Period: period}
			}
			res := NewPeriodResult(ht12e.Calibration{Period: s.Decoder.ClockPeriod()})
			s.Output(c, res, res.String())
		}),
	}

	// ReadCmd reads one frame.
	ReadCmd = ishell.Cmd{
		Name:    "read",
		Aliases: []string{"r"},
		Help:    "[TIMEOUT]",
		Func: sh.MustBeOpen(func(c *ishell.Context, s *sh.Shell) {
			timeout, err := parseDuration(c.Args, s.Config.Decoder.Timeout)
			if err != nil {
				c.Err(err)
				return
			}
			w, err := s.Decoder.Read(timeout)
			if err != nil {
				c.Err(err)
				return
			}
			res := NewWordResult(w)
			s.Output(c, res, res.String())
		}),
	}

	// PinCmd reads one frame and prints a pin.
	PinCmd = ishell.Cmd{
		Name:    "pin",
		Aliases: []string{"p"},
		Help:    "PIN",
		Func: sh.MustBeOpen(func(c *ishell.Context, s *sh.Shell) {
			if len(c.Args) != 1 {
				c.Err(fmt.Errorf("pin index expected"))
				return
			}
			pin, err := strconv.Atoi(c.Args[0])
			if err != nil {
				c.Err(err)
				return
			}
			val, err := s.Decoder.ReadPin(pin)
			if err != nil {
				c.Err(err)
				return
			}
			s.Output(c, val, strconv.FormatBool(val))
		}),
	}

	// ArrayCmd reads one frame as an array of pins.
	ArrayCmd = ishell.Cmd{
		Name:    "array",
		Aliases: []string{"a"},
		Help:    "",
		Func: sh.MustBeOpen(func(c *ishell.Context, s *sh.Shell) {
			bits, ok := s.Decoder.ReadArray()
			if !ok {
				c.Err(fmt.Errorf("no data"))
				return
			}
			s.Output(c, bits, FormatBits(bits))
		}),
	}

	// WatchCmd reads frames continuously.
	WatchCmd = ishell.Cmd{
		Name:    "watch",
		Aliases: []string{"w"},
		Help:    "[COUNT]",
		Func: sh.MustBeOpen(func(c *ishell.Context, s *sh.Shell) {
			count := 10
			if len(c.Args) > 0 {
				n, err := strconv.Atoi(c.Args[0])
				if err != nil {
					c.Err(err)
					return
				}
				count = n
			}
			for n := 0; n < count; n++ {
				w, err := s.Decoder.Read(s.Config.Decoder.Timeout)
				if err != nil {
					c.Println(err)
					continue
				}
				res := NewWordResult(w)
				s.Output(c, res, res.String())
			}
		}),
	}
)

func init() {
	sh.AddCmds(
		&CalibrateCmd,
		&PeriodCmd,
		&ReadCmd,
		&PinCmd,
		&ArrayCmd,
		&WatchCmd,
	)
}
