package receiver

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/time/rate"

	"github.com/robotalks/ht12d/pkg/ht12e"
	"github.com/robotalks/ht12d/pkg/pulse/gpio"
	"github.com/robotalks/ht12d/pkg/pulse/replay"
)

// DefaultHoldTime is the repeat window of a held button. The encoder
// transmits continuously while TE is held, one frame every ~70 periods.
const DefaultHoldTime = 200 * time.Millisecond

// SourceConfig selects where pulses come from.
type SourceConfig struct {
	// Pin is the GPIO pin name, e.g. "GPIO17".
	Pin  string `toml:"pin"`
	Pull string `toml:"pull"`
	// Invert swaps levels, for receivers with an inverting output.
	Invert bool `toml:"invert"`
	// Poll is the sampling delay, 0 busy-waits.
	Poll time.Duration `toml:"poll"`
	// Script is a replay script file used instead of Pin.
	Script string `toml:"script"`
}

// Config defines a Receiver.
type Config struct {
	ID             string        `toml:"id"`
	Source         SourceConfig  `toml:"source"`
	Decoder        ht12e.Config  `toml:"decoder"`
	HoldTime       time.Duration `toml:"hold_time"`
	ReportRepeats  bool          `toml:"report_repeats"`
	RateLimit      float64       `toml:"rate_limit"`
	Burst          int           `toml:"burst"`
	StatusInterval time.Duration `toml:"status_interval"`
}

var (
	defaultConfig = Config{
		HoldTime:       DefaultHoldTime,
		Burst:          1,
		StatusInterval: time.Minute,
	}
	configFile string
)

func init() {
	if val := os.Getenv("HT12_PIN"); val != "" {
		defaultConfig.Source.Pin = val
	}
	if val := os.Getenv("HT12_ID"); val != "" {
		defaultConfig.ID = val
	}
}

// SetupFlags sets command line flags, including the decoder flags.
func SetupFlags() {
	ht12e.SetupFlags()
	flag.StringVar(&configFile, "config", configFile, "Receiver config file (TOML).")
	flag.StringVar(&defaultConfig.ID, "id", defaultConfig.ID, "Receiver ID, defaults to machine ID.")
	flag.StringVar(&defaultConfig.Source.Pin, "pin", defaultConfig.Source.Pin, "GPIO pin connected to decoder input.")
	flag.StringVar(&defaultConfig.Source.Pull, "pull", defaultConfig.Source.Pull, "Pull resistor: up, down, float.")
	flag.BoolVar(&defaultConfig.Source.Invert, "invert", defaultConfig.Source.Invert, "Invert input levels.")
	flag.DurationVar(&defaultConfig.Source.Poll, "poll", defaultConfig.Source.Poll, "GPIO sampling interval, 0 busy-waits.")
	flag.StringVar(&defaultConfig.Source.Script, "script", defaultConfig.Source.Script, "Replay pulses from a script file instead of GPIO.")
	flag.DurationVar(&defaultConfig.HoldTime, "hold", defaultConfig.HoldTime, "Window treating an identical word as a repeat.")
	flag.BoolVar(&defaultConfig.ReportRepeats, "report-repeats", defaultConfig.ReportRepeats, "Publish repeated words.")
	flag.Float64Var(&defaultConfig.RateLimit, "rate", defaultConfig.RateLimit, "Max frames published per second, 0 for unlimited.")
	flag.IntVar(&defaultConfig.Burst, "burst", defaultConfig.Burst, "Burst of frames allowed by rate limit.")
	flag.DurationVar(&defaultConfig.StatusInterval, "status-interval", defaultConfig.StatusInterval, "Interval of status messages, 0 to disable.")
}

// Default gets default config.
func Default() *Config {
	return &defaultConfig
}

// NewConfig creates a config with defaults.
func NewConfig() *Config {
	conf := defaultConfig
	conf.Decoder = *ht12e.Default()
	return &conf
}

// Current returns the config from flags, overlaid by the -config file
// if specified.
func Current() (*Config, error) {
	if configFile == "" {
		return NewConfig(), nil
	}
	return LoadConfig(configFile)
}

// LoadConfig loads a TOML file over the defaults.
func LoadConfig(path string) (*Config, error) {
	conf := NewConfig()
	md, err := toml.DecodeFile(path, conf)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("load config %s: unknown keys %v", path, undecoded)
	}
	return conf, nil
}

// Validate checks the config.
func (c *Config) Validate() error {
	switch {
	case c.Source.Pin == "" && c.Source.Script == "":
		return errors.New("either pin or script is required")
	case c.Source.Pin != "" && c.Source.Script != "":
		return errors.New("pin and script are exclusive")
	case c.Decoder.Frequency < 0:
		return fmt.Errorf("invalid frequency %v", c.Decoder.Frequency)
	case c.Decoder.Frequency == 0 && c.Decoder.Attempts <= 0:
		return errors.New("calibration requires at least one attempt")
	case c.HoldTime < 0:
		return fmt.Errorf("invalid hold time %v", c.HoldTime)
	case c.RateLimit < 0:
		return fmt.Errorf("invalid rate limit %v", c.RateLimit)
	case c.RateLimit > 0 && c.Burst <= 0:
		return fmt.Errorf("invalid burst %d", c.Burst)
	}
	if _, err := gpio.ParsePull(c.Source.Pull); err != nil {
		return err
	}
	return nil
}

// OpenSource opens the configured pulse source.
func (c *Config) OpenSource() (ht12e.Source, error) {
	if c.Source.Script != "" {
		script, err := replay.Load(c.Source.Script)
		if err != nil {
			return nil, err
		}
		return script.Source(), nil
	}
	pull, err := gpio.ParsePull(c.Source.Pull)
	if err != nil {
		return nil, err
	}
	src, err := gpio.Open(c.Source.Pin, pull)
	if err != nil {
		return nil, err
	}
	src.Invert = c.Source.Invert
	src.Poll = c.Source.Poll
	return src, nil
}

// NewReceiver creates a Receiver reading from src. The clock is calibrated
// when the receiver runs unless a frequency is configured.
func (c *Config) NewReceiver(src ht12e.Source, sinks ...Sink) (*Receiver, error) {
	if c.ID == "" {
		return nil, errors.New("receiver id required")
	}
	freq := c.Decoder.Frequency
	if freq <= 0 {
		freq = c.Decoder.DefaultFrequency
	}
	if freq <= 0 {
		freq = ht12e.DefaultFrequency
	}
	decoder, err := ht12e.NewDecoderWithFrequency(src, freq)
	if err != nil {
		return nil, err
	}
	decoder.Timeout = c.Decoder.Timeout

	r := New(c.ID, decoder, sinks...)
	if c.Decoder.Frequency <= 0 {
		r.Calibrator = c.Decoder.NewCalibrator()
	}
	r.HoldTime = c.HoldTime
	r.ReportRepeats = c.ReportRepeats
	r.StatusInterval = c.StatusInterval
	if c.RateLimit > 0 {
		r.Limiter = rate.NewLimiter(rate.Limit(c.RateLimit), c.Burst)
	}
	return r, nil
}
