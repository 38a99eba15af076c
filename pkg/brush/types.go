package brush

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/chsh2/import-paint-brush/pkg/brush/desc"
)

// UnsupportedVersionError reports a recognized format with an unhandled
// version or variant.
type UnsupportedVersionError struct {
	Format string
	Major  int
	Minor  int
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("%s: unsupported version %d.%d", e.Format, e.Major, e.Minor)
}

// MalformedHeaderError reports a violated structural precondition, such as a
// bad magic constant or a truncated preamble.
type MalformedHeaderError struct {
	Format string
	Reason string
}

func (e *MalformedHeaderError) Error() string {
	return fmt.Sprintf("%s: malformed header: %s", e.Format, e.Reason)
}

// ErrNoImageFound is returned when a container blob holds no recognizable
// embedded image.
var ErrNoImageFound = errors.New("brush: no embedded image found")

// Version is the format version of a parsed file.
type Version struct {
	Major uint16
	Minor uint16
}

func (v Version) String() string { return fmt.Sprintf("%d.%d", v.Major, v.Minor) }

// PixelMatrix is a dense row-major pixel array of Height*Width*Channels
// samples, each Depth bytes wide and stored big-endian in Pix, following the
// flat-Pix convention of the standard image package. Channels == 1 denotes a
// single-plane (2D) matrix. A zero-area matrix is valid and marks a
// degenerate sample that downstream code may discard.
type PixelMatrix struct {
	Height   int
	Width    int
	Channels int
	Depth    int // bytes per sample: 1, 2 or 4
	Pix      []uint8
}

// NewPixelMatrix allocates a zeroed matrix.
func NewPixelMatrix(height, width, channels, depth int) *PixelMatrix {
	return &PixelMatrix{
		Height:   height,
		Width:    width,
		Channels: channels,
		Depth:    depth,
		Pix:      make([]uint8, height*width*channels*depth),
	}
}

// Empty reports whether the matrix has zero area.
func (m *PixelMatrix) Empty() bool {
	return m == nil || m.Height == 0 || m.Width == 0
}

// Gray reports whether the matrix is single-channel.
func (m *PixelMatrix) Gray() bool { return m.Channels == 1 }

func (m *PixelMatrix) sampleOffset(y, x, c int) int {
	return ((y*m.Width+x)*m.Channels + c) * m.Depth
}

// Sample returns the sample at row y, column x, channel c as its natural
// unsigned integer value.
func (m *PixelMatrix) Sample(y, x, c int) uint32 {
	off := m.sampleOffset(y, x, c)
	switch m.Depth {
	case 1:
		return uint32(m.Pix[off])
	case 2:
		return uint32(binary.BigEndian.Uint16(m.Pix[off:]))
	default:
		return binary.BigEndian.Uint32(m.Pix[off:])
	}
}

// SetSample stores a sample at row y, column x, channel c.
func (m *PixelMatrix) SetSample(y, x, c int, v uint32) {
	off := m.sampleOffset(y, x, c)
	switch m.Depth {
	case 1:
		m.Pix[off] = uint8(v)
	case 2:
		binary.BigEndian.PutUint16(m.Pix[off:], uint16(v))
	default:
		binary.BigEndian.PutUint32(m.Pix[off:], v)
	}
}

// BrushSample is one extracted brush: a pixel matrix plus optional
// name/parameter metadata. SecondaryTexture marks a container format's
// distinct grain texture role. Samples are immutable once produced.
type BrushSample struct {
	Pixels           *PixelMatrix
	Name             string
	Parameters       *desc.Map
	SecondaryTexture bool
}

// ParsedBrushFile is the normalized output of a decoder: the file's format
// version and its ordered samples. It is never mutated after Parse returns.
type ParsedBrushFile struct {
	Version Version
	Samples []BrushSample
}
