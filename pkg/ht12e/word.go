package ht12e

import "strconv"

// WordBits is the number of bits in a frame.
const WordBits = 12

// Bit positions of the encoder's address/data lines. A0 is transmitted
// first and lands in the most significant bit, D11 is the last bit.
const (
	Addr0 = WordBits - 1 - iota
	Addr1
	Addr2
	Addr3
	Addr4
	Addr5
	Addr6
	Addr7
	Data8
	Data9
	Data10
	Data11
)

const wordMask Word = 1<<WordBits - 1

// Word is a decoded 12-bit frame. Bit 11 is the first bit transmitted.
type Word uint16

// Bits is a decoded frame in transmission order: index 0 is the most
// significant bit.
type Bits [WordBits]bool

// Bit returns the value at pin, 0 being the least significant bit.
func (w Word) Bit(pin int) (bool, error) {
	if pin < 0 || pin >= WordBits {
		return false, ErrOutOfRange
	}
	return w&(1<<uint(pin)) != 0, nil
}

// Bits expands the word in transmission order.
func (w Word) Bits() (b Bits) {
	for i := range b {
		b[i] = w&(1<<uint(WordBits-1-i)) != 0
	}
	return
}

// Address returns A0-A7, with A0 as the most significant bit.
func (w Word) Address() uint8 {
	return uint8((w & wordMask) >> 4)
}

// Data returns D8-D11, with D11 as the least significant bit.
func (w Word) Data() uint8 {
	return uint8(w & 0x0f)
}

// String formats the word as 12 binary digits, MSB first.
func (w Word) String() string {
	s := strconv.FormatUint(uint64(w&wordMask), 2)
	for len(s) < WordBits {
		s = "0" + s
	}
	return s
}

// Word packs the bits back into a Word.
func (b Bits) Word() (w Word) {
	for _, bit := range b {
		w <<= 1
		if bit {
			w |= 1
		}
	}
	return
}
