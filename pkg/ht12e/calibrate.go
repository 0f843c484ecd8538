package ht12e

import (
	"errors"
	"time"

	"github.com/golang/glog"
)

const (
	calibrationPulses = 13
	halfSyncRatio     = 18
	ratioTolerance    = 0.1

	// DefaultFrequency is the encoder oscillator frequency assumed when
	// calibration can't determine the clock.
	DefaultFrequency = 3000
	// DefaultAttempts is the number of bursts sampled by a Calibrator.
	DefaultAttempts = 5
)

// DetectClock samples a burst of 13 low pulses and infers the clock period
// from the ratio of the longest to the shortest pulse.
// It returns ErrNotConnected if the line never goes active within timeout,
// and ErrCalibrationIndeterminate if the ratio matches neither 36 nor 18.
func DetectClock(src Source, timeout time.Duration) (time.Duration, error) {
	clock := ClockOf(src)
	deadline := clock.Now().Add(timeout)
	var shortest, longest time.Duration
	for n := 0; n < calibrationPulses; n++ {
		remaining := deadline.Sub(clock.Now())
		if remaining <= 0 {
			return 0, ErrNotConnected
		}
		if err := src.WaitForLevel(High, remaining); err != nil {
			return 0, sourceError(err, ErrNotConnected)
		}
		if remaining = deadline.Sub(clock.Now()); remaining <= 0 {
			return 0, ErrCalibrationIndeterminate
		}
		dur, err := src.MeasurePulse(Low, remaining)
		if err != nil {
			return 0, sourceError(err, ErrCalibrationIndeterminate)
		}
		glog.V(4).Infof("calibration pulse[%d]: %v", n, dur)
		if n == 0 || dur < shortest {
			shortest = dur
		}
		if dur > longest {
			longest = dur
		}
	}
	if shortest <= 0 {
		return 0, ErrCalibrationIndeterminate
	}
	ratio := float64(longest) / float64(shortest)
	switch {
	case ratioMatches(ratio, syncRatio):
		return shortest, nil
	case ratioMatches(ratio, halfSyncRatio):
		return shortest / 2, nil
	}
	glog.V(2).Infof("calibration ratio %.2f (min %v, max %v) not recognized", ratio, shortest, longest)
	return 0, ErrCalibrationIndeterminate
}

func ratioMatches(ratio, expected float64) bool {
	return ratio > expected*(1-ratioTolerance) && ratio < expected*(1+ratioTolerance)
}

// Calibration is the outcome of a Calibrator run.
type Calibration struct {
	// Period is the averaged or default clock period.
	Period time.Duration
	// Samples is the number of bursts which determined a period.
	Samples int
	// Degraded is set when Period is the default.
	Degraded bool
}

// Calibrator retries DetectClock and averages the results.
type Calibrator struct {
	// Attempts is the number of bursts sampled.
	Attempts int
	// Timeout applies to each burst.
	Timeout time.Duration
	// DefaultFrequency (Hz) is used when no burst determines the period.
	DefaultFrequency float64
	// Fallback enables the default frequency. When disabled, an
	// undetermined clock fails with ErrCalibrationIndeterminate.
	Fallback bool
}

// NewCalibrator creates a Calibrator with default settings.
func NewCalibrator() *Calibrator {
	return &Calibrator{
		Attempts:         DefaultAttempts,
		Timeout:          DefaultTimeout,
		DefaultFrequency: DefaultFrequency,
		Fallback:         true,
	}
}

// Calibrate runs the calibration attempts. ErrNotConnected aborts
// immediately without falling back to the default.
func (c *Calibrator) Calibrate(src Source) (cal Calibration, err error) {
	attempts := c.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	var total time.Duration
	for i := 0; i < attempts; i++ {
		period, err := DetectClock(src, timeout)
		if err != nil {
			if errors.Is(err, ErrCalibrationIndeterminate) {
				continue
			}
			return Calibration{}, err
		}
		total += period
		cal.Samples++
	}
	if cal.Samples > 0 {
		cal.Period = (total / time.Duration(cal.Samples)).Truncate(time.Microsecond)
		glog.Infof("clock determined: %v (%d/%d bursts)", cal.Period, cal.Samples, attempts)
		return cal, nil
	}
	if !c.Fallback {
		return cal, ErrCalibrationIndeterminate
	}
	freq := c.DefaultFrequency
	if freq <= 0 {
		freq = DefaultFrequency
	}
	if cal.Period, err = PeriodFromFrequency(freq); err != nil {
		return Calibration{}, err
	}
	cal.Degraded = true
	glog.Warningf("clock not determined, using default frequency %vHz (period %v)", freq, cal.Period)
	return cal, nil
}
