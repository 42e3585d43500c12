// Package structures decodes and encodes the binary payloads carried inside
// ecoNET frames: the scalar type catalog, bit-packed booleans, sensor-data
// and regulator-data payloads, parameter tables, schedules, alerts and
// product-info records (spec §4.2).
package structures

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// ErrShort is returned when a cursor runs past the end of its message.
var ErrShort = errors.New("structures: message too short")

// Cursor carries the decode position through a message payload, plus the
// running bit-index used by bool decoding (spec §4.2.2). Every decoder in
// this package is a method on *Cursor so offsets never need to be threaded
// by hand between call sites.
type Cursor struct {
	Message []byte
	Offset  int

	bitByte  int // offset of the byte currently being consumed bit-by-bit
	bitIndex int // next bit to read within Message[bitByte], 0..7
	inBits   bool
}

// NewCursor starts a cursor at the beginning of message.
func NewCursor(message []byte) *Cursor {
	return &Cursor{Message: message}
}

// Remaining reports how many bytes are left to read.
func (c *Cursor) Remaining() int { return len(c.Message) - c.Offset }

func (c *Cursor) need(n int) error {
	if c.Remaining() < n {
		return errors.Wrapf(ErrShort, "need %d bytes, have %d", n, c.Remaining())
	}
	return nil
}

// flushBits implements the second half of spec §4.2.2: "This rule is also
// applied when a boolean reaches bit 7 (the byte is then consumed
// immediately)" and "when the next decoded value is not a boolean, the
// running index is flushed by advancing the byte offset by 1". Every
// non-boolean decoder below calls this before reading.
func (c *Cursor) flushBits() {
	if c.inBits {
		c.Offset = c.bitByte + 1
		c.inBits = false
		c.bitIndex = 0
	}
}

// Bool decodes the next bit-packed boolean (spec §4.2.2). Successive calls
// consume bits from the same byte, LSB first; the byte is advanced past
// once bit 7 is consumed, or once a non-boolean read flushes it.
func (c *Cursor) Bool() (bool, error) {
	if !c.inBits {
		if err := c.need(1); err != nil {
			return false, err
		}
		c.inBits = true
		c.bitByte = c.Offset
		c.bitIndex = 0
	}

	v := c.Message[c.bitByte]&(1<<uint(c.bitIndex)) != 0
	c.bitIndex++
	if c.bitIndex > 7 {
		c.Offset = c.bitByte + 1
		c.inBits = false
		c.bitIndex = 0
	}
	return v, nil
}

// U8 decodes an unsigned byte.
func (c *Cursor) U8() (uint8, error) {
	c.flushBits()
	if err := c.need(1); err != nil {
		return 0, err
	}
	v := c.Message[c.Offset]
	c.Offset++
	return v, nil
}

// I8 decodes a signed byte.
func (c *Cursor) I8() (int8, error) {
	v, err := c.U8()
	return int8(v), err
}

// U16 decodes a little-endian uint16.
func (c *Cursor) U16() (uint16, error) {
	c.flushBits()
	if err := c.need(2); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint16(c.Message[c.Offset:])
	c.Offset += 2
	return v, nil
}

// I16 decodes a little-endian int16.
func (c *Cursor) I16() (int16, error) {
	v, err := c.U16()
	return int16(v), err
}

// U32 decodes a little-endian uint32.
func (c *Cursor) U32() (uint32, error) {
	c.flushBits()
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint32(c.Message[c.Offset:])
	c.Offset += 4
	return v, nil
}

// I32 decodes a little-endian int32.
func (c *Cursor) I32() (int32, error) {
	v, err := c.U32()
	return int32(v), err
}

// U64 decodes a little-endian uint64.
func (c *Cursor) U64() (uint64, error) {
	c.flushBits()
	if err := c.need(8); err != nil {
		return 0, err
	}
	v := binary.LittleEndian.Uint64(c.Message[c.Offset:])
	c.Offset += 8
	return v, nil
}

// I64 decodes a little-endian int64.
func (c *Cursor) I64() (int64, error) {
	v, err := c.U64()
	return int64(v), err
}

// F32 decodes a little-endian IEEE-754 float; NaN means "absent" per spec.
func (c *Cursor) F32() (float32, error) {
	v, err := c.U32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// F64 decodes a little-endian IEEE-754 double.
func (c *Cursor) F64() (float64, error) {
	v, err := c.U64()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// CString decodes a NUL-terminated string; size consumed is len+1.
func (c *Cursor) CString() (string, error) {
	c.flushBits()
	start := c.Offset
	for i := start; i < len(c.Message); i++ {
		if c.Message[i] == 0 {
			s := string(c.Message[start:i])
			c.Offset = i + 1
			return s, nil
		}
	}
	return "", errors.Wrap(ErrShort, "unterminated c-string")
}

// PascalString decodes a 1-byte-length-prefixed string.
func (c *Cursor) PascalString() (string, error) {
	b, err := c.ByteString()
	return string(b), err
}

// ByteString decodes a 1-byte-length-prefixed byte sequence (no implied
// text encoding).
func (c *Cursor) ByteString() ([]byte, error) {
	c.flushBits()
	n, err := c.U8()
	if err != nil {
		return nil, err
	}
	if err := c.need(int(n)); err != nil {
		return nil, err
	}
	v := make([]byte, n)
	copy(v, c.Message[c.Offset:c.Offset+int(n)])
	c.Offset += int(n)
	return v, nil
}

// IPv4 decodes a 4-byte dotted-quad address.
func (c *Cursor) IPv4() (string, error) {
	c.flushBits()
	if err := c.need(4); err != nil {
		return "", err
	}
	b := c.Message[c.Offset : c.Offset+4]
	c.Offset += 4
	return formatIPv4(b), nil
}

// IPv6 decodes a 16-byte colon-hex address.
func (c *Cursor) IPv6() (string, error) {
	c.flushBits()
	if err := c.need(16); err != nil {
		return "", err
	}
	b := c.Message[c.Offset : c.Offset+16]
	c.Offset += 16
	return formatIPv6(b), nil
}

// Skip advances the cursor by n bytes, flushing any in-progress bit run.
func (c *Cursor) Skip(n int) error {
	c.flushBits()
	if err := c.need(n); err != nil {
		return err
	}
	c.Offset += n
	return nil
}

// Bytes returns the next n raw bytes without interpretation.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	c.flushBits()
	if err := c.need(n); err != nil {
		return nil, err
	}
	v := c.Message[c.Offset : c.Offset+n]
	c.Offset += n
	return v, nil
}
