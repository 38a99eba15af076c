package brush

import (
	"bytes"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/chsh2/import-paint-brush/pkg/brush/cursor"
)

// gbrFixedHeader is the byte count of the fixed .gbr v2 header fields; a
// longer declared header carries the 4-byte spacing field and then the brush
// name.
const gbrFixedHeader = 24

// GbrDecoder parses a single-brush GIMP .gbr file (format version 2): a
// fixed header followed by raw 8-bit samples, one or more channels, no
// compression.
type GbrDecoder struct {
	data     []byte
	base     int
	header   uint32
	version  uint32
	width    uint32
	height   uint32
	channels uint32
	magic    []byte
	name     string
}

// NewGbrDecoder reads the fixed header at the start of data.
func NewGbrDecoder(data []byte) (*GbrDecoder, error) {
	return NewGbrDecoderAt(data, 0)
}

// NewGbrDecoderAt reads a .gbr header at the given offset, so that a
// concatenation container can walk embedded records.
func NewGbrDecoderAt(data []byte, offset int) (*GbrDecoder, error) {
	c := cursor.NewAt(data, offset)
	d := &GbrDecoder{data: data, base: offset}
	var err error
	if d.header, err = c.Uint32(); err != nil {
		return nil, fmt.Errorf("gbr: %w", err)
	}
	if d.version, err = c.Uint32(); err != nil {
		return nil, fmt.Errorf("gbr: %w", err)
	}
	if d.width, err = c.Uint32(); err != nil {
		return nil, fmt.Errorf("gbr: %w", err)
	}
	if d.height, err = c.Uint32(); err != nil {
		return nil, fmt.Errorf("gbr: %w", err)
	}
	if d.channels, err = c.Uint32(); err != nil {
		return nil, fmt.Errorf("gbr: %w", err)
	}
	if d.magic, err = c.Bytes(4); err != nil {
		return nil, fmt.Errorf("gbr: %w", err)
	}
	// the remainder of a long header is the spacing field plus a
	// NUL-terminated brush name
	if nameEnd := offset + int(d.header); d.header > gbrFixedHeader+4 && nameEnd <= len(data) {
		raw := data[offset+gbrFixedHeader+4 : nameEnd]
		d.name = strings.TrimRight(string(raw), "\x00")
	}
	return d, nil
}

// Check reports whether the format version and magic constant match.
func (d *GbrDecoder) Check() bool {
	return d.version == 2 && bytes.Equal(d.magic, gbrMagic)
}

// Parse reshapes the raw pixel block into an HxW or HxWxC matrix.
func (d *GbrDecoder) Parse() (*ParsedBrushFile, error) {
	if !d.Check() {
		return nil, &UnsupportedVersionError{Format: "gbr", Major: int(d.version)}
	}
	start := d.base + int(d.header)
	h, w, ch := int(d.height), int(d.width), int(d.channels)
	end := start + h*w*ch
	if ch < 1 || start > len(d.data) || end > len(d.data) {
		return nil, fmt.Errorf("gbr: %dx%dx%d pixel block overruns buffer of %d bytes", h, w, ch, len(d.data))
	}
	mat := &PixelMatrix{
		Height:   h,
		Width:    w,
		Channels: ch,
		Depth:    1,
		Pix:      append([]uint8(nil), d.data[start:end]...),
	}
	return &ParsedBrushFile{
		Version: Version{Major: uint16(d.version)},
		Samples: []BrushSample{{Pixels: mat, Name: d.name}},
	}, nil
}

// pixelEnd returns the offset just past this record's pixel data, which is
// where the next record of a concatenation begins (no padding between
// records).
func (d *GbrDecoder) pixelEnd() int {
	return d.base + int(d.header) + int(d.width)*int(d.height)*int(d.channels)
}

// GihDecoder parses a GIMP .gih image hose: a textual preamble (collection
// name on line 1, brush count leading line 2) followed by that many .gbr
// records back to back. Every sample's name is the collection name;
// per-brush names do not exist in this format.
type GihDecoder struct {
	data       []byte
	name       string
	count      int
	headerSize int
	valid      bool
}

// NewGihDecoder validates the textual preamble.
func NewGihDecoder(data []byte) (*GihDecoder, error) {
	d := &GihDecoder{data: data}
	lines := bytes.Split(data, []byte("\n"))
	if len(lines) < 3 {
		return d, nil
	}
	fields := strings.Fields(string(lines[1]))
	if len(fields) == 0 {
		return d, nil
	}
	count, err := strconv.Atoi(fields[0])
	if err != nil || count < 0 {
		return d, nil
	}
	d.name = string(lines[0])
	d.count = count
	d.headerSize = len(lines[0]) + len(lines[1]) + 2
	d.valid = true
	return d, nil
}

// Check reports whether the preamble carries a name and a parseable count.
func (d *GihDecoder) Check() bool { return d.valid }

// Parse walks the embedded .gbr records. A record that fails to decode is
// logged and skipped when its extent is still known from its header;
// without a header there is no next offset and iteration stops.
func (d *GihDecoder) Parse() (*ParsedBrushFile, error) {
	if !d.Check() {
		return nil, &MalformedHeaderError{Format: "gih", Reason: "preamble needs a name line and a brush count line"}
	}
	pf := &ParsedBrushFile{Version: Version{Major: 1}}
	body := d.data[d.headerSize:]
	offset := 0
	for i := 0; i < d.count; i++ {
		g, err := NewGbrDecoderAt(body, offset)
		if err != nil {
			slog.Warn("gih: stopping at truncated record", "index", i, "offset", offset, "error", err)
			break
		}
		member, err := g.Parse()
		if err != nil {
			slog.Warn("gih: skipping undecodable record", "index", i, "offset", offset, "error", err)
		} else {
			s := member.Samples[0]
			s.Name = d.name
			pf.Samples = append(pf.Samples, s)
		}
		offset = g.pixelEnd()
	}
	return pf, nil
}
