package brush

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
)

// ImageDecoder turns a complete encoded image byte stream into a pixel
// matrix. The container decoders only locate and extract the byte range;
// decoding the bitmap itself is this collaborator's job.
type ImageDecoder interface {
	Decode(data []byte) (*PixelMatrix, error)
}

// DefaultImageDecoder decodes PNG streams with the standard image/png
// decoder.
var DefaultImageDecoder ImageDecoder = pngDecoder{}

type pngDecoder struct{}

func (pngDecoder) Decode(data []byte) (*PixelMatrix, error) {
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("brush: decoding png: %w", err)
	}
	b := img.Bounds()
	h, w := b.Dy(), b.Dx()

	switch im := img.(type) {
	case *image.Gray:
		mat := NewPixelMatrix(h, w, 1, 1)
		for y := 0; y < h; y++ {
			copy(mat.Pix[y*w:], im.Pix[y*im.Stride:y*im.Stride+w])
		}
		return mat, nil
	case *image.Gray16:
		// Gray16 Pix is already big-endian
		mat := NewPixelMatrix(h, w, 1, 2)
		for y := 0; y < h; y++ {
			copy(mat.Pix[y*w*2:], im.Pix[y*im.Stride:y*im.Stride+w*2])
		}
		return mat, nil
	case *image.NRGBA:
		mat := NewPixelMatrix(h, w, 4, 1)
		for y := 0; y < h; y++ {
			copy(mat.Pix[y*w*4:], im.Pix[y*im.Stride:y*im.Stride+w*4])
		}
		return mat, nil
	}

	// generic fallback through the color model
	mat := NewPixelMatrix(h, w, 4, 1)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			mat.SetSample(y, x, 0, r>>8)
			mat.SetSample(y, x, 1, g>>8)
			mat.SetSample(y, x, 2, bl>>8)
			mat.SetSample(y, x, 3, a>>8)
		}
	}
	return mat, nil
}

// channelPlane extracts one channel of a matrix as a single-plane matrix,
// used by containers that keep only the shape channel of an RGBA texture.
func channelPlane(m *PixelMatrix, ch int) *PixelMatrix {
	if m.Channels == 1 && ch == 0 {
		return m
	}
	out := NewPixelMatrix(m.Height, m.Width, 1, m.Depth)
	for y := 0; y < m.Height; y++ {
		for x := 0; x < m.Width; x++ {
			out.SetSample(y, x, 0, m.Sample(y, x, ch))
		}
	}
	return out
}

// Image converts the matrix to a standard library image for export.
func (m *PixelMatrix) Image() image.Image {
	b := image.Rect(0, 0, m.Width, m.Height)
	switch {
	case m.Channels == 1 && m.Depth == 1:
		img := image.NewGray(b)
		for y := 0; y < m.Height; y++ {
			copy(img.Pix[y*img.Stride:], m.Pix[y*m.Width:(y+1)*m.Width])
		}
		return img
	case m.Channels == 1:
		img := image.NewGray16(b)
		for y := 0; y < m.Height; y++ {
			for x := 0; x < m.Width; x++ {
				v := m.Sample(y, x, 0)
				if m.Depth == 4 {
					v >>= 16
				}
				img.SetGray16(x, y, color.Gray16{Y: uint16(v)})
			}
		}
		return img
	default:
		img := image.NewNRGBA(b)
		for y := 0; y < m.Height; y++ {
			for x := 0; x < m.Width; x++ {
				sample := func(c int) uint8 {
					v := m.Sample(y, x, c)
					switch m.Depth {
					case 2:
						v >>= 8
					case 4:
						v >>= 24
					}
					return uint8(v)
				}
				var px [4]uint8
				switch m.Channels {
				case 2: // gray+alpha widened to RGB
					g := sample(0)
					px = [4]uint8{g, g, g, sample(1)}
				case 3:
					px = [4]uint8{sample(0), sample(1), sample(2), 0xFF}
				default:
					px = [4]uint8{sample(0), sample(1), sample(2), sample(3)}
				}
				img.SetNRGBA(x, y, color.NRGBA{R: px[0], G: px[1], B: px[2], A: px[3]})
			}
		}
		return img
	}
}
