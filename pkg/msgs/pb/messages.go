// Package pb contains the protobuf wire schemas of receiver messages.
// Structs are declared with protobuf struct tags and encoded by
// github.com/golang/protobuf through reflection.
package pb

import "github.com/golang/protobuf/proto"

// Typed wraps an encoded message with its type ID.
type Typed struct {
	TypeId  uint32 `protobuf:"varint,1,opt,name=type_id,json=typeId,proto3" json:"type_id,omitempty"`
	Message []byte `protobuf:"bytes,2,opt,name=message,proto3" json:"message,omitempty"`
}

func (m *Typed) Reset()         { *m = Typed{} }
func (m *Typed) String() string { return proto.CompactTextString(m) }
func (*Typed) ProtoMessage()    {}

// Frame is a decoded frame.
type Frame struct {
	Id                string `protobuf:"bytes,1,opt,name=id,proto3" json:"id,omitempty"`
	Receiver          string `protobuf:"bytes,2,opt,name=receiver,proto3" json:"receiver,omitempty"`
	Word              uint32 `protobuf:"varint,3,opt,name=word,proto3" json:"word,omitempty"`
	Address           uint32 `protobuf:"varint,4,opt,name=address,proto3" json:"address,omitempty"`
	Data              uint32 `protobuf:"varint,5,opt,name=data,proto3" json:"data,omitempty"`
	ClockPeriodUs     uint32 `protobuf:"varint,6,opt,name=clock_period_us,json=clockPeriodUs,proto3" json:"clock_period_us,omitempty"`
	Repeat            uint32 `protobuf:"varint,7,opt,name=repeat,proto3" json:"repeat,omitempty"`
	TimestampUnixNano int64  `protobuf:"varint,8,opt,name=timestamp_unix_nano,json=timestampUnixNano,proto3" json:"timestamp_unix_nano,omitempty"`
}

func (m *Frame) Reset()         { *m = Frame{} }
func (m *Frame) String() string { return proto.CompactTextString(m) }
func (*Frame) ProtoMessage()    {}

// Status is the state of a receiver.
type Status struct {
	Receiver          string `protobuf:"bytes,1,opt,name=receiver,proto3" json:"receiver,omitempty"`
	ClockPeriodUs     uint32 `protobuf:"varint,2,opt,name=clock_period_us,json=clockPeriodUs,proto3" json:"clock_period_us,omitempty"`
	Degraded          bool   `protobuf:"varint,3,opt,name=degraded,proto3" json:"degraded,omitempty"`
	Connected         bool   `protobuf:"varint,4,opt,name=connected,proto3" json:"connected,omitempty"`
	Error             string `protobuf:"bytes,5,opt,name=error,proto3" json:"error,omitempty"`
	Frames            uint64 `protobuf:"varint,6,opt,name=frames,proto3" json:"frames,omitempty"`
	Errors            uint64 `protobuf:"varint,7,opt,name=errors,proto3" json:"errors,omitempty"`
	TimestampUnixNano int64  `protobuf:"varint,8,opt,name=timestamp_unix_nano,json=timestampUnixNano,proto3" json:"timestamp_unix_nano,omitempty"`
}

func (m *Status) Reset()         { *m = Status{} }
func (m *Status) String() string { return proto.CompactTextString(m) }
func (*Status) ProtoMessage()    {}
