package brush

import (
	"fmt"
	"log/slog"

	"github.com/chsh2/import-paint-brush/pkg/brush/cursor"
	"github.com/chsh2/import-paint-brush/pkg/compress/rle"
)

// Abr1Decoder parses the legacy tagged .abr layout (main version 1 or 2).
// Only sampled brushes are extracted; computed brushes are skipped wholesale
// by their declared length.
type Abr1Decoder struct {
	c     *cursor.Cursor
	major uint16
	count uint16
}

// NewAbr1Decoder reads the fixed header: 16-bit main version, 16-bit brush
// count.
func NewAbr1Decoder(data []byte) (*Abr1Decoder, error) {
	c := cursor.New(data)
	major, err := c.Uint16()
	if err != nil {
		return nil, fmt.Errorf("abr1: %w", err)
	}
	count, err := c.Uint16()
	if err != nil {
		return nil, fmt.Errorf("abr1: %w", err)
	}
	return &Abr1Decoder{c: c, major: major, count: count}, nil
}

// Check reports whether the main version is one this decoder handles.
func (d *Abr1Decoder) Check() bool {
	return d.major == 1 || d.major == 2
}

// Parse iterates exactly the declared number of entries. A failed entry is
// logged and skipped; the next entry's offset is derived from the declared
// length, not from how far decoding got.
func (d *Abr1Decoder) Parse() (*ParsedBrushFile, error) {
	if !d.Check() {
		return nil, &UnsupportedVersionError{Format: "abr1", Major: int(d.major)}
	}
	pf := &ParsedBrushFile{Version: Version{Major: d.major}}
	for i := 0; i < int(d.count); i++ {
		entryType, err := d.c.Uint16()
		if err != nil {
			return nil, fmt.Errorf("abr1: entry %d type: %w", i, err)
		}
		size, err := d.c.Uint32()
		if err != nil {
			return nil, fmt.Errorf("abr1: entry %d length: %w", i, err)
		}
		next := d.c.Offset() + int(size)

		// type 2 is a sampled brush; everything else is out of scope
		if entryType != 2 {
			slog.Debug("abr1: skipping non-sampled entry", "index", i, "type", entryType)
		} else {
			sample, err := d.parseSampled(next)
			if err != nil {
				slog.Warn("abr1: dropping undecodable entry", "index", i, "error", err)
			} else if sample != nil {
				pf.Samples = append(pf.Samples, *sample)
			}
		}

		if err := d.c.Seek(next); err != nil {
			return nil, fmt.Errorf("abr1: entry %d overruns buffer: %w", i, err)
		}
	}
	return pf, nil
}

// parseSampled decodes one type-2 entry ending at the absolute offset end.
// Returns (nil, nil) for segmented images, which are dropped without error.
func (d *Abr1Decoder) parseSampled(end int) (*BrushSample, error) {
	c := d.c
	if err := c.Skip(6); err != nil {
		return nil, err
	}
	if d.major == 2 {
		// length-prefixed UTF-16 name; discarded
		nameLen, err := c.Uint32()
		if err != nil {
			return nil, err
		}
		if err := c.Skip(2 * int(nameLen)); err != nil {
			return nil, err
		}
	}
	if err := c.Skip(9); err != nil {
		return nil, err
	}
	mat, err := decodeBrushPlane(c, end)
	if err != nil {
		return nil, err
	}
	if mat == nil {
		return nil, nil
	}
	return &BrushSample{Pixels: mat}, nil
}

// decodeBrushPlane reads the bounding box, depth and compression flag shared
// by the legacy and structured layouts, then the pixel plane. end is the
// absolute offset of the enclosing record's declared end, used to bound the
// compressed stream. A segmented image (height over 16384 rows) returns
// (nil, nil).
func decodeBrushPlane(c *cursor.Cursor, end int) (*PixelMatrix, error) {
	top, err := c.Int32()
	if err != nil {
		return nil, err
	}
	left, err := c.Int32()
	if err != nil {
		return nil, err
	}
	bottom, err := c.Int32()
	if err != nil {
		return nil, err
	}
	right, err := c.Int32()
	if err != nil {
		return nil, err
	}
	depthBits, err := c.Uint16()
	if err != nil {
		return nil, err
	}
	compression, err := c.Uint8()
	if err != nil {
		return nil, err
	}

	h, w := int(bottom-top), int(right-left)
	if h < 0 || w < 0 {
		return nil, fmt.Errorf("brush: negative bounding box %dx%d at offset %d", h, w, c.Offset())
	}
	if h > 16384 {
		// segmented image data is not supported
		slog.Debug("brush: dropping segmented image", "height", h)
		return nil, nil
	}
	depthBytes := int(depthBits) / 8
	switch depthBytes {
	case 1, 2, 4:
	default:
		return nil, fmt.Errorf("brush: unsupported pixel depth %d bits at offset %d", depthBits, c.Offset())
	}

	mat := NewPixelMatrix(h, w, 1, depthBytes)
	switch compression {
	case 0:
		raw, err := c.Bytes(h * w * depthBytes)
		if err != nil {
			return nil, err
		}
		copy(mat.Pix, raw)
	case 1:
		if end < c.Offset() || end > c.Len() {
			return nil, fmt.Errorf("brush: compressed plane end %d out of range at offset %d", end, c.Offset())
		}
		packed, err := c.Peek(end - c.Offset())
		if err != nil {
			return nil, err
		}
		decoded, err := rle.DecodeScanlines(packed, h, w, depthBytes)
		if err != nil {
			return nil, err
		}
		copy(mat.Pix, decoded)
	default:
		return nil, fmt.Errorf("brush: unknown compression flag %d at offset %d", compression, c.Offset())
	}
	return mat, nil
}
