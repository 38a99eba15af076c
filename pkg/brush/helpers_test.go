package brush

import (
	"bytes"
	"encoding/binary"
	"unicode/utf16"
)

// binBuf assembles synthetic brush buffers for tests.
type binBuf struct {
	bytes.Buffer
}

func (b *binBuf) u8(v uint8)   { b.WriteByte(v) }
func (b *binBuf) u16(v uint16) { _ = binary.Write(&b.Buffer, binary.BigEndian, v) }
func (b *binBuf) u32(v uint32) { _ = binary.Write(&b.Buffer, binary.BigEndian, v) }
func (b *binBuf) f64(v float64) {
	_ = binary.Write(&b.Buffer, binary.BigEndian, v)
}
func (b *binBuf) raw(bs ...byte) { b.Write(bs) }
func (b *binBuf) str(s string)   { b.WriteString(s) }
func (b *binBuf) zeros(n int)    { b.Write(make([]byte, n)) }

// compact string forms used by descriptor streams
func (b *binBuf) descCode(c string) {
	b.u32(0)
	b.str(c)
}

func (b *binBuf) descLit(s string) {
	b.u32(uint32(len(s)))
	b.str(s)
}

func (b *binBuf) descUstr(s string) {
	units := utf16.Encode([]rune(s))
	b.u32(uint32(len(units)))
	for _, u := range units {
		b.u8(byte(u >> 8))
		b.u8(byte(u))
	}
}

// descHeader writes a descriptor prelude: empty class name, a packed 4-byte
// class id code, and the entry count.
func (b *binBuf) descHeader(classCode string, count int) {
	b.descUstr("")
	b.descCode(classCode)
	b.u32(uint32(count))
}

// brushPlane writes the bounding box/depth/compression header shared by the
// tagged layouts, followed by raw 8-bit pixels.
func (b *binBuf) brushPlane(h, w int, pix []byte) {
	b.u32(0)
	b.u32(0)
	b.u32(uint32(h))
	b.u32(uint32(w))
	b.u16(8)
	b.u8(0)
	b.raw(pix...)
}
