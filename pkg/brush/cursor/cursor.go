// Package cursor provides a position-tracked big-endian reader over an
// immutable byte buffer. Every brush decoder is built on it.
package cursor

import (
	"encoding/binary"
	"fmt"
	"math"
)

// OutOfBoundsError reports a read that would run past the end of the buffer.
type OutOfBoundsError struct {
	Offset int // position of the failed read
	Need   int // bytes requested
	Size   int // total buffer size
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("cursor: read of %d bytes at offset %d exceeds buffer size %d", e.Need, e.Offset, e.Size)
}

// Cursor wraps an immutable byte buffer and a mutable read offset.
// All multi-byte reads are big-endian.
type Cursor struct {
	data []byte
	off  int
}

// New creates a Cursor over data starting at offset 0.
func New(data []byte) *Cursor {
	return &Cursor{data: data}
}

// NewAt creates a Cursor over data starting at the given offset.
func NewAt(data []byte, offset int) *Cursor {
	return &Cursor{data: data, off: offset}
}

// Offset returns the current read position.
func (c *Cursor) Offset() int { return c.off }

// Len returns the total buffer size.
func (c *Cursor) Len() int { return len(c.data) }

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int { return len(c.data) - c.off }

// Seek moves the read position to an absolute offset.
func (c *Cursor) Seek(offset int) error {
	if offset < 0 || offset > len(c.data) {
		return &OutOfBoundsError{Offset: offset, Need: 0, Size: len(c.data)}
	}
	c.off = offset
	return nil
}

// Skip advances the read position by n bytes.
func (c *Cursor) Skip(n int) error {
	if n < 0 || c.off+n > len(c.data) {
		return &OutOfBoundsError{Offset: c.off, Need: n, Size: len(c.data)}
	}
	c.off += n
	return nil
}

// Bytes reads the next n bytes and advances the cursor. The returned slice
// aliases the underlying buffer and must not be mutated.
func (c *Cursor) Bytes(n int) ([]byte, error) {
	if n < 0 || c.off+n > len(c.data) {
		return nil, &OutOfBoundsError{Offset: c.off, Need: n, Size: len(c.data)}
	}
	b := c.data[c.off : c.off+n]
	c.off += n
	return b, nil
}

// Peek returns the next n bytes without advancing the cursor.
func (c *Cursor) Peek(n int) ([]byte, error) {
	if n < 0 || c.off+n > len(c.data) {
		return nil, &OutOfBoundsError{Offset: c.off, Need: n, Size: len(c.data)}
	}
	return c.data[c.off : c.off+n], nil
}

// Uint8 reads one unsigned byte.
func (c *Cursor) Uint8() (uint8, error) {
	b, err := c.Bytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Uint16 reads a big-endian 16-bit unsigned integer.
func (c *Cursor) Uint16() (uint16, error) {
	b, err := c.Bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint16(b), nil
}

// Uint32 reads a big-endian 32-bit unsigned integer.
func (c *Cursor) Uint32() (uint32, error) {
	b, err := c.Bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

// Int32 reads a big-endian 32-bit signed integer.
func (c *Cursor) Int32() (int32, error) {
	v, err := c.Uint32()
	return int32(v), err
}

// Uint reads a big-endian unsigned integer of width 1, 2 or 4 bytes.
func (c *Cursor) Uint(width int) (uint32, error) {
	switch width {
	case 1:
		v, err := c.Uint8()
		return uint32(v), err
	case 2:
		v, err := c.Uint16()
		return uint32(v), err
	case 4:
		return c.Uint32()
	}
	return 0, fmt.Errorf("cursor: unsupported integer width %d", width)
}

// Float64 reads a big-endian IEEE 754 double.
func (c *Cursor) Float64() (float64, error) {
	b, err := c.Bytes(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}
