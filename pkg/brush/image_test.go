package brush

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPNGDecoderGray(t *testing.T) {
	data := grayPNG(t, []byte{10, 20, 30, 40}, 2, 2)
	mat, err := DefaultImageDecoder.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, 2, mat.Height)
	assert.Equal(t, 2, mat.Width)
	assert.Equal(t, 1, mat.Channels)
	assert.Equal(t, 1, mat.Depth)
	assert.Equal(t, []uint8{10, 20, 30, 40}, mat.Pix)
}

func TestPNGDecoderNRGBA(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{R: 1, G: 2, B: 3, A: 4})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))

	mat, err := DefaultImageDecoder.Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 4, mat.Channels)
	assert.Equal(t, []uint8{1, 2, 3, 4}, mat.Pix)
}

func TestPNGDecoderRejectsGarbage(t *testing.T) {
	_, err := DefaultImageDecoder.Decode([]byte("not a png"))
	require.Error(t, err)
}

func TestChannelPlane(t *testing.T) {
	mat := NewPixelMatrix(1, 2, 4, 1)
	copy(mat.Pix, []uint8{1, 2, 3, 4, 5, 6, 7, 8})

	plane := channelPlane(mat, 0)
	assert.Equal(t, 1, plane.Channels)
	assert.Equal(t, []uint8{1, 5}, plane.Pix)

	// a single-channel matrix passes through untouched
	gray := NewPixelMatrix(1, 1, 1, 1)
	assert.Same(t, gray, channelPlane(gray, 0))
}

func TestPixelMatrixImage(t *testing.T) {
	t.Run("gray", func(t *testing.T) {
		mat := NewPixelMatrix(1, 2, 1, 1)
		copy(mat.Pix, []uint8{100, 200})
		img, ok := mat.Image().(*image.Gray)
		require.True(t, ok)
		assert.Equal(t, uint8(200), img.GrayAt(1, 0).Y)
	})

	t.Run("gray 16-bit", func(t *testing.T) {
		mat := NewPixelMatrix(1, 1, 1, 2)
		mat.SetSample(0, 0, 0, 0xBEEF)
		img, ok := mat.Image().(*image.Gray16)
		require.True(t, ok)
		assert.Equal(t, uint16(0xBEEF), img.Gray16At(0, 0).Y)
	})

	t.Run("rgba", func(t *testing.T) {
		mat := NewPixelMatrix(1, 1, 4, 1)
		copy(mat.Pix, []uint8{1, 2, 3, 4})
		img, ok := mat.Image().(*image.NRGBA)
		require.True(t, ok)
		assert.Equal(t, color.NRGBA{R: 1, G: 2, B: 3, A: 4}, img.NRGBAAt(0, 0))
	})

	t.Run("gray plus alpha widens to rgb", func(t *testing.T) {
		mat := NewPixelMatrix(1, 1, 2, 1)
		copy(mat.Pix, []uint8{60, 128})
		img, ok := mat.Image().(*image.NRGBA)
		require.True(t, ok)
		assert.Equal(t, color.NRGBA{R: 60, G: 60, B: 60, A: 128}, img.NRGBAAt(0, 0))
	})
}

func TestPixelMatrixRoundTripThroughPNG(t *testing.T) {
	mat := NewPixelMatrix(2, 2, 1, 1)
	copy(mat.Pix, []uint8{10, 20, 30, 40})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, mat.Image()))

	back, err := DefaultImageDecoder.Decode(buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, mat.Pix, back.Pix)
}
