package receiver

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang/glog"
	"golang.org/x/time/rate"

	"github.com/robotalks/ht12d/pkg/ht12e"
	"github.com/robotalks/ht12d/pkg/msgs"
)

// Sink receives messages produced by a Receiver.
type Sink interface {
	Publish(ctx context.Context, msg msgs.Message) error
}

// SinkFunc is the func form of Sink.
type SinkFunc func(ctx context.Context, msg msgs.Message) error

// Publish implements Sink.
func (f SinkFunc) Publish(ctx context.Context, msg msgs.Message) error {
	return f(ctx, msg)
}

// Stats counts the outcome of reads.
type Stats struct {
	Frames   uint64
	Repeats  uint64
	Dropped  uint64
	Timeouts uint64
	Errors   uint64
}

// Receiver continuously decodes frames from a Decoder and publishes them.
type Receiver struct {
	ID      string
	Decoder *ht12e.Decoder
	// Calibrator, if set, detects the clock before reading.
	Calibrator *ht12e.Calibrator
	Sinks      []Sink
	// Timeout bounds each frame read.
	Timeout time.Duration
	// HoldTime is the window within which an identical word is
	// a repeat of the previous one.
	HoldTime time.Duration
	// ReportRepeats publishes repeated words with an increasing Repeat.
	ReportRepeats bool
	// Limiter, if set, throttles published frames.
	Limiter *rate.Limiter
	// StatusInterval is the period of Status messages, 0 disables them
	// after the initial one.
	StatusInterval time.Duration

	clock ht12e.Clock

	lock       sync.Mutex
	stats      Stats
	degraded   bool
	lastErr    error
	lastWord   ht12e.Word
	lastAt     time.Time
	lastValid  bool
	repeat     uint32
	statusNext time.Time
}

// New creates a Receiver on a Decoder.
func New(id string, decoder *ht12e.Decoder, sinks ...Sink) *Receiver {
	return &Receiver{
		ID:       id,
		Decoder:  decoder,
		Sinks:    sinks,
		Timeout:  decoder.Timeout,
		HoldTime: DefaultHoldTime,
		clock:    ht12e.ClockOf(decoder.Source),
	}
}

// Name implements framework.Named.
func (r *Receiver) Name() string {
	return "receiver:" + r.ID
}

// Stats returns a snapshot of counters.
func (r *Receiver) Stats() Stats {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.stats
}

// Degraded indicates the clock period is a fallback.
func (r *Receiver) Degraded() bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	return r.degraded
}

// Run implements framework.Runnable. It returns when ctx is done or the
// source fails, e.g. a replay ends.
func (r *Receiver) Run(ctx context.Context) error {
	if r.Calibrator != nil {
		cal, err := r.Decoder.AutoCalibrate(r.Calibrator)
		if err != nil {
			r.setError(err)
			r.publish(ctx, r.Status())
			return fmt.Errorf("calibrate: %w", err)
		}
		r.lock.Lock()
		r.degraded = cal.Degraded
		r.lock.Unlock()
		glog.Infof("%s: clock period %v (samples %d, degraded %v)",
			r.Name(), cal.Period, cal.Samples, cal.Degraded)
	}
	r.publish(ctx, r.Status())
	r.scheduleStatus(r.now())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if _, err := r.Poll(ctx); err != nil && !transient(err) {
			r.publish(ctx, r.Status())
			return fmt.Errorf("read: %w", err)
		}
		if now := r.now(); r.statusDue(now) {
			r.scheduleStatus(now)
			r.publish(ctx, r.Status())
		}
	}
}

// Poll reads one frame and publishes it unless it's a suppressed
// repeat or throttled. It returns the published frame, if any.
func (r *Receiver) Poll(ctx context.Context) (*msgs.Frame, error) {
	w, err := r.Decoder.Read(r.timeout())
	now := r.now()
	if err != nil {
		r.recordError(err)
		return nil, err
	}

	r.lock.Lock()
	r.stats.Frames++
	r.lastErr = nil
	isRepeat := r.lastValid && r.lastWord == w && now.Sub(r.lastAt) <= r.HoldTime
	if isRepeat {
		r.repeat++
		r.stats.Repeats++
	} else {
		r.lastWord, r.lastValid, r.repeat = w, true, 0
	}
	r.lastAt = now
	repeat := r.repeat
	r.lock.Unlock()

	if isRepeat && !r.ReportRepeats {
		glog.V(4).Infof("%s: repeat %v #%d", r.Name(), w, repeat)
		return nil, nil
	}
	if r.Limiter != nil && !r.Limiter.AllowN(now, 1) {
		r.lock.Lock()
		r.stats.Dropped++
		r.lock.Unlock()
		glog.V(2).Infof("%s: throttled %v", r.Name(), w)
		return nil, nil
	}

	frame := msgs.NewFrame(r.ID, w, r.Decoder.ClockPeriod(), now)
	frame.Repeat = repeat
	glog.V(2).Infof("%s: frame %v", r.Name(), w)
	r.publish(ctx, frame)
	return frame, nil
}

// Status builds a Status message from the current state.
func (r *Receiver) Status() *msgs.Status {
	status := msgs.NewStatus(r.ID, r.Decoder.ClockPeriod(), r.now())
	r.lock.Lock()
	defer r.lock.Unlock()
	status.Degraded = r.degraded
	status.Frames = r.stats.Frames
	status.Errors = r.stats.Errors
	status.Connected = !errors.Is(r.lastErr, ht12e.ErrNotConnected)
	if r.lastErr != nil {
		status.Error = r.lastErr.Error()
	}
	return status
}

func (r *Receiver) recordError(err error) {
	r.lock.Lock()
	defer r.lock.Unlock()
	switch {
	case errors.Is(err, ht12e.ErrTimeout):
		r.stats.Timeouts++
		glog.V(4).Infof("%s: idle", r.Name())
		return
	case errors.Is(err, ht12e.ErrSyncLost), errors.Is(err, ht12e.ErrMalformedData):
		glog.V(2).Infof("%s: %v", r.Name(), err)
	default:
		glog.Warningf("%s: %v", r.Name(), err)
	}
	r.stats.Errors++
	r.lastErr = err
}

// transient tells if a read error only affects the current frame.
func transient(err error) bool {
	return errors.Is(err, ht12e.ErrTimeout) ||
		errors.Is(err, ht12e.ErrSyncLost) ||
		errors.Is(err, ht12e.ErrMalformedData)
}

func (r *Receiver) setError(err error) {
	r.lock.Lock()
	r.lastErr = err
	r.lock.Unlock()
}

func (r *Receiver) publish(ctx context.Context, msg msgs.Message) {
	for _, sink := range r.Sinks {
		if err := sink.Publish(ctx, msg); err != nil {
			glog.Warningf("%s: publish error: %v", r.Name(), err)
		}
	}
}

func (r *Receiver) now() time.Time {
	if r.clock == nil {
		r.clock = ht12e.ClockOf(r.Decoder.Source)
	}
	return r.clock.Now()
}

func (r *Receiver) timeout() time.Duration {
	if r.Timeout > 0 {
		return r.Timeout
	}
	return ht12e.DefaultTimeout
}

func (r *Receiver) scheduleStatus(now time.Time) {
	if r.StatusInterval > 0 {
		r.statusNext = now.Add(r.StatusInterval)
	}
}

func (r *Receiver) statusDue(now time.Time) bool {
	return r.StatusInterval > 0 && !now.Before(r.statusNext)
}

// LogSink logs messages.
var LogSink = SinkFunc(func(_ context.Context, msg msgs.Message) error {
	switch m := msg.(type) {
	case *msgs.Frame:
		glog.Infof("%s: %v addr=%02x data=%x repeat=%d",
			m.Receiver, m.DecodedWord(), m.Address, m.Data, m.Repeat)
	case *msgs.Status:
		glog.Infof("%s: period=%v degraded=%v frames=%d errors=%d %s",
			m.Receiver, m.ClockPeriod(), m.Degraded, m.Frames, m.Errors, m.Error)
	}
	return nil
})
