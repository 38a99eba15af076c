package cursor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursor_FixedReads(t *testing.T) {
	c := New([]byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07})

	v8, err := c.Uint8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x01), v8)

	v16, err := c.Uint16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x0203), v16)

	v32, err := c.Uint32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x04050607), v32)

	assert.Equal(t, 7, c.Offset())
	assert.Equal(t, 0, c.Remaining())
}

func TestCursor_Int32Negative(t *testing.T) {
	c := New([]byte{0xFF, 0xFF, 0xFF, 0xFE})
	v, err := c.Int32()
	require.NoError(t, err)
	assert.Equal(t, int32(-2), v)
}

func TestCursor_Float64(t *testing.T) {
	// 1.5 in IEEE 754 big-endian
	c := New([]byte{0x3F, 0xF8, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00})
	v, err := c.Float64()
	require.NoError(t, err)
	assert.Equal(t, 1.5, v)
}

func TestCursor_PeekDoesNotAdvance(t *testing.T) {
	c := New([]byte{0xAA, 0xBB, 0xCC})

	b, err := c.Peek(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xBB}, b)
	assert.Equal(t, 0, c.Offset())

	b, err = c.Bytes(2)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xBB}, b)
	assert.Equal(t, 2, c.Offset())
}

func TestCursor_OutOfBounds(t *testing.T) {
	c := New([]byte{0x01, 0x02})
	require.NoError(t, c.Skip(1))

	_, err := c.Uint32()
	require.Error(t, err)
	var oob *OutOfBoundsError
	require.ErrorAs(t, err, &oob)
	assert.Equal(t, 1, oob.Offset)
	assert.Equal(t, 4, oob.Need)
	assert.Equal(t, 2, oob.Size)

	// offset must be unchanged after a failed read
	assert.Equal(t, 1, c.Offset())
}

func TestCursor_SkipAndSeek(t *testing.T) {
	c := New(make([]byte, 10))
	require.NoError(t, c.Skip(4))
	assert.Equal(t, 4, c.Offset())

	require.Error(t, c.Skip(7))
	require.NoError(t, c.Seek(10))
	require.Error(t, c.Seek(11))
	require.Error(t, c.Seek(-1))
}

func TestCursor_UintWidths(t *testing.T) {
	tests := []struct {
		name  string
		width int
		want  uint32
	}{
		{"Width1", 1, 0x01},
		{"Width2", 2, 0x0102},
		{"Width4", 4, 0x01020304},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New([]byte{0x01, 0x02, 0x03, 0x04})
			v, err := c.Uint(tt.width)
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}

	c := New([]byte{0x01, 0x02, 0x03})
	_, err := c.Uint(3)
	require.Error(t, err)
}
