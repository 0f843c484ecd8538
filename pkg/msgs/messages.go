package msgs

import (
	"math/rand"
	"sync"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/oklog/ulid/v2"

	"github.com/robotalks/ht12d/pkg/ht12e"
	"github.com/robotalks/ht12d/pkg/msgs/pb"
)

var (
	entropyLock sync.Mutex
	entropy     = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
)

// NewID generates a lexically sortable ID for an event at t.
func NewID(t time.Time) string {
	entropyLock.Lock()
	defer entropyLock.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), entropy).String()
}

// Frame is a decoded frame event.
type Frame struct {
	pb.Frame
}

// NewFrame creates a Frame event.
func NewFrame(receiver string, w ht12e.Word, period time.Duration, at time.Time) *Frame {
	return &Frame{
		Frame: pb.Frame{
			Id:                NewID(at),
			Receiver:          receiver,
			Word:              uint32(w),
			Address:           uint32(w.Address()),
			Data:              uint32(w.Data()),
			ClockPeriodUs:     uint32(period / time.Microsecond),
			TimestampUnixNano: at.UnixNano(),
		},
	}
}

// DecodedWord returns the frame as a Word.
func (m *Frame) DecodedWord() ht12e.Word { return ht12e.Word(m.Word) }

// Time returns when the frame was decoded.
func (m *Frame) Time() time.Time { return time.Unix(0, m.TimestampUnixNano) }

// NewMessage implements Message.
func (m *Frame) NewMessage() Message { return &Frame{} }

// TypeID implements Message.
func (m *Frame) TypeID() uint32 { return FrameTypeID }

// Serializable implements Message.
func (m *Frame) Serializable() proto.Message { return &m.Frame }

// Status reports receiver state.
type Status struct {
	pb.Status
}

// NewStatus creates a Status.
func NewStatus(receiver string, period time.Duration, at time.Time) *Status {
	return &Status{
		Status: pb.Status{
			Receiver:          receiver,
			ClockPeriodUs:     uint32(period / time.Microsecond),
			TimestampUnixNano: at.UnixNano(),
		},
	}
}

// ClockPeriod returns the clock period in use.
func (m *Status) ClockPeriod() time.Duration {
	return time.Duration(m.ClockPeriodUs) * time.Microsecond
}

// NewMessage implements Message.
func (m *Status) NewMessage() Message { return &Status{} }

// TypeID implements Message.
func (m *Status) TypeID() uint32 { return StatusTypeID }

// Serializable implements Message.
func (m *Status) Serializable() proto.Message { return &m.Status }
