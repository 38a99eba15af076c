// Package rle decodes the PackBits-style scanline compression used by the
// legacy brush archives.
//
// The plane starts with the byte counts for all scan lines in the channel,
// each count stored as a big-endian two-byte value. The compressed data
// follows, with each scan line compressed separately.
package rle

import (
	"fmt"

	"github.com/chsh2/import-paint-brush/pkg/brush/cursor"
)

// DecodeScanlines decodes one run-length-compressed image plane into a dense
// row-major sample buffer of height*width samples, each depth bytes wide and
// big-endian. depth must be 1, 2 or 4.
//
// Per run the control byte n means: n == 128 no-op; n < 128 copy the next
// n+1 raw samples; n > 128 replicate the next sample (256-n)+1 times.
//
// A scan line whose declared byte count decodes to fewer than width samples
// leaves the remainder zero-filled; samples beyond width are consumed but
// discarded. Truncated input fails with the cursor's out-of-bounds error.
func DecodeScanlines(data []byte, height, width, depth int) ([]byte, error) {
	switch depth {
	case 1, 2, 4:
	default:
		return nil, fmt.Errorf("rle: unsupported sample depth %d", depth)
	}
	if height < 0 || width < 0 {
		return nil, fmt.Errorf("rle: negative dimensions %dx%d", height, width)
	}
	if height == 0 || width == 0 {
		return []byte{}, nil
	}

	c := cursor.New(data)

	counts := make([]int, height)
	for i := range counts {
		n, err := c.Uint16()
		if err != nil {
			return nil, fmt.Errorf("rle: reading scanline count table: %w", err)
		}
		counts[i] = int(n)
	}

	out := make([]byte, height*width*depth)
	for row := 0; row < height; row++ {
		lineEnd := c.Offset() + counts[row]
		if lineEnd > c.Len() {
			return nil, fmt.Errorf("rle: scanline %d declares %d bytes past end of data", row, counts[row])
		}
		base := row * width * depth
		col := 0
		for c.Offset() < lineEnd {
			n, err := c.Uint8()
			if err != nil {
				return nil, err
			}
			switch {
			case n == 128:
				// no-op
			case n < 128:
				count := int(n) + 1
				raw, err := c.Bytes(count * depth)
				if err != nil {
					return nil, fmt.Errorf("rle: literal run truncated at row %d: %w", row, err)
				}
				for k := 0; k < count; k++ {
					if col+k >= width {
						break
					}
					copy(out[base+(col+k)*depth:], raw[k*depth:(k+1)*depth])
				}
				col += count
			default:
				count := (256 - int(n)) + 1
				sample, err := c.Bytes(depth)
				if err != nil {
					return nil, fmt.Errorf("rle: repeated run truncated at row %d: %w", row, err)
				}
				for k := 0; k < count; k++ {
					if col+k >= width {
						break
					}
					copy(out[base+(col+k)*depth:], sample)
				}
				col += count
			}
		}
	}
	return out, nil
}
