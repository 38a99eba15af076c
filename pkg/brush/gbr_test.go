package brush

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildGbr assembles a version-2 .gbr record. A non-empty name extends the
// declared header by the 4-byte spacing field plus the NUL-terminated name.
func buildGbr(name string, h, w, channels int, pix []byte) []byte {
	header := gbrFixedHeader + 4
	if name != "" {
		header += len(name) + 1
	}
	var b binBuf
	b.u32(uint32(header))
	b.u32(2)
	b.u32(uint32(w))
	b.u32(uint32(h))
	b.u32(uint32(channels))
	b.str("GIMP")
	b.u32(0) // spacing
	if name != "" {
		b.str(name)
		b.u8(0)
	}
	b.raw(pix...)
	return b.Bytes()
}

func TestGbrSingleBrush(t *testing.T) {
	data := buildGbr("", 2, 2, 1, []byte{1, 2, 3, 4})

	d, err := NewGbrDecoder(data)
	require.NoError(t, err)
	require.True(t, d.Check())

	pf, err := d.Parse()
	require.NoError(t, err)
	assert.Equal(t, Version{Major: 2}, pf.Version)
	require.Len(t, pf.Samples, 1)

	s := pf.Samples[0]
	assert.Empty(t, s.Name)
	assert.Equal(t, 2, s.Pixels.Height)
	assert.Equal(t, 2, s.Pixels.Width)
	assert.Equal(t, 1, s.Pixels.Channels)
	assert.Equal(t, []uint8{1, 2, 3, 4}, s.Pixels.Pix)
}

func TestGbrNamedBrush(t *testing.T) {
	data := buildGbr("Round", 1, 1, 1, []byte{0xFF})

	d, err := NewGbrDecoder(data)
	require.NoError(t, err)
	pf, err := d.Parse()
	require.NoError(t, err)
	require.Len(t, pf.Samples, 1)
	assert.Equal(t, "Round", pf.Samples[0].Name)
}

func TestGbrMultiChannel(t *testing.T) {
	pix := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	data := buildGbr("", 1, 2, 4, pix)

	d, err := NewGbrDecoder(data)
	require.NoError(t, err)
	pf, err := d.Parse()
	require.NoError(t, err)
	require.Len(t, pf.Samples, 1)

	mat := pf.Samples[0].Pixels
	assert.Equal(t, 4, mat.Channels)
	assert.False(t, mat.Gray())
	assert.Equal(t, pix, mat.Pix)
	assert.Equal(t, uint32(6), mat.Sample(0, 1, 1))
}

func TestGbrCheck(t *testing.T) {
	t.Run("wrong version", func(t *testing.T) {
		data := buildGbr("", 1, 1, 1, []byte{0})
		data[7] = 3 // version field
		d, err := NewGbrDecoder(data)
		require.NoError(t, err)
		assert.False(t, d.Check())

		_, err = d.Parse()
		var verr *UnsupportedVersionError
		require.ErrorAs(t, err, &verr)
	})

	t.Run("wrong magic", func(t *testing.T) {
		data := buildGbr("", 1, 1, 1, []byte{0})
		copy(data[20:24], "GIMQ")
		d, err := NewGbrDecoder(data)
		require.NoError(t, err)
		assert.False(t, d.Check())
	})
}

func TestGbrTruncatedPixels(t *testing.T) {
	data := buildGbr("", 4, 4, 1, []byte{1, 2, 3}) // 13 bytes short

	d, err := NewGbrDecoder(data)
	require.NoError(t, err)
	_, err = d.Parse()
	require.Error(t, err)
}

func TestGihConcatenation(t *testing.T) {
	var b binBuf
	b.str("WaterSet\n")
	b.str("2 ncells:2\n")
	b.raw(buildGbr("first", 2, 2, 1, []byte{1, 2, 3, 4})...)
	b.raw(buildGbr("second", 1, 1, 1, []byte{9})...)

	d, err := NewGihDecoder(b.Bytes())
	require.NoError(t, err)
	require.True(t, d.Check())

	pf, err := d.Parse()
	require.NoError(t, err)
	require.Len(t, pf.Samples, 2)
	// member names are replaced by the collection name
	assert.Equal(t, "WaterSet", pf.Samples[0].Name)
	assert.Equal(t, "WaterSet", pf.Samples[1].Name)
	assert.Equal(t, []uint8{1, 2, 3, 4}, pf.Samples[0].Pixels.Pix)
	assert.Equal(t, []uint8{9}, pf.Samples[1].Pixels.Pix)
}

func TestGihSkipsBadMember(t *testing.T) {
	bad := buildGbr("", 1, 1, 1, []byte{5})
	bad[7] = 9 // break the member's version field
	var b binBuf
	b.str("Mixed\n")
	b.str("2\n")
	b.raw(bad...)
	b.raw(buildGbr("", 1, 1, 1, []byte{6})...)

	d, err := NewGihDecoder(b.Bytes())
	require.NoError(t, err)
	pf, err := d.Parse()
	require.NoError(t, err)
	require.Len(t, pf.Samples, 1)
	assert.Equal(t, []uint8{6}, pf.Samples[0].Pixels.Pix)
}

func TestGihMalformedPreamble(t *testing.T) {
	for name, data := range map[string][]byte{
		"too short":   []byte("OnlyName\n"),
		"bad count":   []byte("Name\nnot-a-number 2\nrest"),
		"negative":    []byte("Name\n-1\nrest"),
		"empty count": []byte("Name\n\nrest"),
	} {
		t.Run(name, func(t *testing.T) {
			d, err := NewGihDecoder(data)
			require.NoError(t, err)
			assert.False(t, d.Check())

			_, err = d.Parse()
			var herr *MalformedHeaderError
			require.ErrorAs(t, err, &herr)
		})
	}
}
