package ht12e

import (
	"flag"
	"time"
)

// Config defines how a Decoder is set up.
type Config struct {
	// Frequency is the encoder oscillator frequency in Hz.
	// 0 detects the clock from the line.
	Frequency float64 `toml:"frequency"`
	// Timeout is the sync timeout for ReadPin/ReadArray and each
	// calibration burst.
	Timeout time.Duration `toml:"timeout"`
	// Attempts is the number of calibration bursts.
	Attempts int `toml:"attempts"`
	// DefaultFrequency is used when detection fails and Fallback is set.
	DefaultFrequency float64 `toml:"default_frequency"`
	// Fallback enables DefaultFrequency on detection failure.
	Fallback bool `toml:"fallback"`
}

var defaultConfig = Config{
	Timeout:          DefaultTimeout,
	Attempts:         DefaultAttempts,
	DefaultFrequency: DefaultFrequency,
	Fallback:         true,
}

// SetupFlags sets command line flags.
func SetupFlags() {
	flag.Float64Var(&defaultConfig.Frequency, "freq", defaultConfig.Frequency, "Encoder oscillator frequency (Hz), 0 for auto detection.")
	flag.DurationVar(&defaultConfig.Timeout, "timeout", defaultConfig.Timeout, "Timeout waiting for a frame.")
	flag.IntVar(&defaultConfig.Attempts, "calibrate-attempts", defaultConfig.Attempts, "Number of bursts sampled for clock detection.")
	flag.Float64Var(&defaultConfig.DefaultFrequency, "default-freq", defaultConfig.DefaultFrequency, "Frequency (Hz) used when clock detection fails.")
	flag.BoolVar(&defaultConfig.Fallback, "fallback", defaultConfig.Fallback, "Use default frequency when clock detection fails.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	return &conf
}

// NewCalibrator creates a Calibrator using the config.
func (c *Config) NewCalibrator() *Calibrator {
	return &Calibrator{
		Attempts:         c.Attempts,
		Timeout:          c.Timeout,
		DefaultFrequency: c.DefaultFrequency,
		Fallback:         c.Fallback,
	}
}

// NewDecoder creates a Decoder on src. With a known Frequency, no pulses
// are read. Otherwise the clock is calibrated and the Calibration reports
// how the period was obtained.
func (c *Config) NewDecoder(src Source) (*Decoder, Calibration, error) {
	if c.Frequency > 0 {
		d, err := NewDecoderWithFrequency(src, c.Frequency)
		if err != nil {
			return nil, Calibration{}, err
		}
		d.Timeout = c.Timeout
		return d, Calibration{Period: d.ClockPeriod()}, nil
	}
	cal, err := c.NewCalibrator().Calibrate(src)
	if err != nil {
		return nil, cal, err
	}
	d, err := NewDecoder(src, cal.Period)
	if err != nil {
		return nil, cal, err
	}
	d.Timeout = c.Timeout
	return d, cal, nil
}
