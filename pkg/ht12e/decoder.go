package ht12e

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"
)

// DefaultTimeout is the sync timeout used by ReadPin and ReadArray.
const DefaultTimeout = time.Second

const (
	// syncRatio is the fixed ratio of the sync pulse to the clock period.
	syncRatio = 36
	// syncAttempts bounds the pulses examined while looking for sync.
	syncAttempts = 13
	// dataStartRatio bounds the wait for data after sync, in periods.
	dataStartRatio = 10
	// bitTimeoutRatio bounds a single bit measurement including the low gap
	// before it, in periods. The longest valid bit is 1.2 low plus 2.4 high.
	bitTimeoutRatio = 6
)

// window is an inclusive range of accepted pulse durations.
type window struct {
	lower time.Duration
	upper time.Duration
}

// windowOf returns the ±20% window around one clock period.
func windowOf(period time.Duration) window {
	return window{lower: period * 8 / 10, upper: period * 12 / 10}
}

func (w window) scale(n time.Duration) window {
	return window{lower: w.lower * n, upper: w.upper * n}
}

func (w window) contains(d time.Duration) bool {
	return d >= w.lower && d <= w.upper
}

// PeriodFromFrequency converts the encoder oscillator frequency (Hz) to a
// clock period with microsecond resolution.
func PeriodFromFrequency(hz float64) (time.Duration, error) {
	if hz <= 0 {
		return 0, ErrInvalidPeriod
	}
	period := time.Duration(float64(time.Second) / hz).Truncate(time.Microsecond)
	if period <= 0 {
		return 0, ErrInvalidPeriod
	}
	return period, nil
}

// Decoder decodes frames from a Source.
// A Decoder owns the line: reads are serialized.
type Decoder struct {
	Source Source
	// Timeout is used by ReadPin and ReadArray.
	Timeout time.Duration

	clock Clock

	period     time.Duration
	periodLock sync.RWMutex
	readLock   sync.Mutex
}

// NewDecoder creates a Decoder with a known clock period.
func NewDecoder(src Source, period time.Duration) (*Decoder, error) {
	if period <= 0 {
		return nil, ErrInvalidPeriod
	}
	return &Decoder{
		Source:  src,
		Timeout: DefaultTimeout,
		clock:   ClockOf(src),
		period:  period,
	}, nil
}

// NewDecoderWithFrequency creates a Decoder from the encoder oscillator
// frequency in Hz.
func NewDecoderWithFrequency(src Source, hz float64) (*Decoder, error) {
	period, err := PeriodFromFrequency(hz)
	if err != nil {
		return nil, err
	}
	return NewDecoder(src, period)
}

// ClockPeriod returns the current clock period.
func (d *Decoder) ClockPeriod() time.Duration {
	d.periodLock.RLock()
	defer d.periodLock.RUnlock()
	return d.period
}

// SetClockPeriod replaces the clock period. It doesn't affect a read in
// progress, which keeps the period it started with.
func (d *Decoder) SetClockPeriod(period time.Duration) error {
	if period <= 0 {
		return ErrInvalidPeriod
	}
	d.periodLock.Lock()
	d.period = period
	d.periodLock.Unlock()
	return nil
}

// Calibrate detects the clock period from one burst of pulses and applies it.
// The current period is kept on failure.
func (d *Decoder) Calibrate(timeout time.Duration) (time.Duration, error) {
	d.readLock.Lock()
	period, err := DetectClock(d.Source, timeout)
	d.readLock.Unlock()
	if err != nil {
		return 0, err
	}
	return period, d.SetClockPeriod(period)
}

// AutoCalibrate runs the calibration policy and applies the resulting period,
// including the default period when calibration is degraded.
func (d *Decoder) AutoCalibrate(c *Calibrator) (Calibration, error) {
	d.readLock.Lock()
	cal, err := c.Calibrate(d.Source)
	d.readLock.Unlock()
	if err != nil {
		return cal, err
	}
	return cal, d.SetClockPeriod(cal.Period)
}

// Read decodes one frame, waiting up to timeout for the sync pulse.
// On failure the returned word is always zero.
func (d *Decoder) Read(timeout time.Duration) (Word, error) {
	d.readLock.Lock()
	defer d.readLock.Unlock()

	period := d.ClockPeriod()
	r := &frameReader{
		src:    d.Source,
		clock:  d.clock,
		period: period,
		bit:    windowOf(period),
	}
	if r.clock == nil {
		r.clock = ClockOf(d.Source)
	}
	r.deadline = r.clock.Now().Add(timeout)
	for r.state != stateComplete {
		if err := r.step(); err != nil {
			glog.V(2).Infof("read failed in %s: %v", r.state, err)
			return 0, err
		}
	}
	return r.word, nil
}

// ReadPin decodes a frame and returns the bit at pin, 0 being the last bit
// received. An out of range pin fails without reading.
func (d *Decoder) ReadPin(pin int) (bool, error) {
	if pin < 0 || pin >= WordBits {
		return false, ErrOutOfRange
	}
	w, err := d.Read(d.timeout())
	if err != nil {
		return false, &ReadError{Pin: pin, Err: err}
	}
	return w.Bit(pin)
}

// ReadArray decodes a frame and returns the bits in transmission order.
// ok is false if no frame was decoded.
func (d *Decoder) ReadArray() (bits Bits, ok bool) {
	w, err := d.Read(d.timeout())
	if err != nil {
		return
	}
	return w.Bits(), true
}

func (d *Decoder) timeout() time.Duration {
	if d.Timeout > 0 {
		return d.Timeout
	}
	return DefaultTimeout
}

type readState int

const (
	stateAwaitingSync readState = iota
	stateAwaitingDataStart
	stateReceivingBits
	stateComplete
)

func (s readState) String() string {
	switch s {
	case stateAwaitingSync:
		return "awaiting-sync"
	case stateAwaitingDataStart:
		return "awaiting-data-start"
	case stateReceivingBits:
		return "receiving-bits"
	case stateComplete:
		return "complete"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// frameReader holds the state of a single read.
type frameReader struct {
	src      Source
	clock    Clock
	period   time.Duration
	bit      window
	deadline time.Time

	state readState
	word  Word
	count int
}

func (r *frameReader) step() error {
	switch r.state {
	case stateAwaitingSync:
		return r.awaitSync()
	case stateAwaitingDataStart:
		return r.awaitDataStart()
	case stateReceivingBits:
		return r.receiveBit()
	}
	return nil
}

func (r *frameReader) remaining() time.Duration {
	return r.deadline.Sub(r.clock.Now())
}

func (r *frameReader) awaitSync() error {
	syncWindow := r.bit.scale(syncRatio)
	for attempt := 0; attempt < syncAttempts; attempt++ {
		remaining := r.remaining()
		if remaining <= 0 {
			return ErrTimeout
		}
		if err := r.src.WaitForLevel(High, remaining); err != nil {
			return sourceError(err, ErrTimeout)
		}
		if remaining = r.remaining(); remaining <= 0 {
			return ErrTimeout
		}
		dur, err := r.src.MeasurePulse(Low, remaining)
		if err != nil {
			return sourceError(err, ErrTimeout)
		}
		glog.V(4).Infof("sync[%d]: %v", attempt, dur)
		if syncWindow.contains(dur) {
			r.state = stateAwaitingDataStart
			return nil
		}
	}
	return ErrTimeout
}

func (r *frameReader) awaitDataStart() error {
	if err := r.src.WaitForLevel(Low, dataStartRatio*r.period); err != nil {
		return sourceError(err, ErrSyncLost)
	}
	r.state = stateReceivingBits
	return nil
}

func (r *frameReader) receiveBit() error {
	dur, err := r.src.MeasurePulse(High, bitTimeoutRatio*r.period)
	if err != nil {
		return sourceError(err, ErrMalformedData)
	}
	glog.V(4).Infof("bit[%d]: %v", r.count, dur)
	switch {
	case r.bit.contains(dur):
		r.word = r.word<<1 | 1
	case r.bit.scale(2).contains(dur):
		r.word = r.word << 1
	default:
		r.word = 0
		return ErrMalformedData
	}
	if r.count++; r.count >= WordBits {
		r.state = stateComplete
	}
	return nil
}

// sourceError maps a timeout from the Source to the failure of the current
// state and passes other errors through.
func sourceError(err, timeoutErr error) error {
	if errors.Is(err, ErrTimedOut) {
		return timeoutErr
	}
	return fmt.Errorf("pulse source: %w", err)
}
