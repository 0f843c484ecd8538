// Package msgs defines the messages a receiver publishes.
package msgs

import (
	"errors"
	"fmt"

	"github.com/golang/protobuf/proto"

	"github.com/robotalks/ht12d/pkg/msgs/pb"
)

// Type IDs
const (
	FrameTypeID  uint32 = 0x80010001
	StatusTypeID uint32 = 0x80010002
)

// Message is a message which can be serialized over the wire.
type Message interface {
	// NewMessage creates an empty message of the same type.
	NewMessage() Message
	TypeID() uint32
	Serializable() proto.Message
}

// Typed wraps a message with type information.
type Typed struct {
	pb.Typed
}

// ErrUnknownType indicates unknown type id.
type ErrUnknownType struct {
	TypeID uint32
}

// Error implements error.
func (e *ErrUnknownType) Error() string {
	return fmt.Sprintf("unknown type: %x", e.TypeID)
}

// ErrNotSerializable indicates the message can't be encoded.
var ErrNotSerializable = errors.New("not serializable message")

// MessageTypes maps type IDs to messages.
var MessageTypes = map[uint32]Message{
	FrameTypeID:  (*Frame)(nil),
	StatusTypeID: (*Status)(nil),
}

// TypedFrom creates a Typed from a message.
func TypedFrom(msg Message) (*Typed, error) {
	if msg == nil {
		return nil, ErrNotSerializable
	}
	data, err := proto.Marshal(msg.Serializable())
	if err != nil {
		return nil, err
	}
	return &Typed{Typed: pb.Typed{TypeId: msg.TypeID(), Message: data}}, nil
}

// Encode encodes a message with type information.
func Encode(msg Message) ([]byte, error) {
	typed, err := TypedFrom(msg)
	if err != nil {
		return nil, err
	}
	return typed.Encode()
}

// Decode decodes the payload into the actual message.
func (p Typed) Decode() (Message, error) {
	msgType, ok := MessageTypes[p.TypeId]
	if !ok {
		return nil, &ErrUnknownType{TypeID: p.TypeId}
	}
	msg := msgType.NewMessage()
	if err := proto.Unmarshal(p.Message, msg.Serializable()); err != nil {
		return nil, err
	}
	return msg, nil
}

// Encode encodes the Typed to bytes.
func (p Typed) Encode() ([]byte, error) {
	return proto.Marshal(&p.Typed)
}

// DecodeTyped decodes bytes into Typed.
func DecodeTyped(data []byte) (*Typed, error) {
	var typed Typed
	if err := proto.Unmarshal(data, &typed.Typed); err != nil {
		return nil, err
	}
	return &typed, nil
}

// Decode decodes bytes into a message.
func Decode(data []byte) (Message, error) {
	typed, err := DecodeTyped(data)
	if err != nil {
		return nil, err
	}
	return typed.Decode()
}
