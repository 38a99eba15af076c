package brush

import (
	"bytes"
	"fmt"
	"log/slog"

	"github.com/chsh2/import-paint-brush/pkg/brush/cursor"
	"github.com/chsh2/import-paint-brush/pkg/brush/desc"
)

// subtags of the top-level tagged blocks that carry brush content
var (
	subtagSampled    = []byte("samp")
	subtagDescriptor = []byte("desc")
)

// Abr6Decoder parses the structured tagged .abr layout (main version 6 and
// later, minor version 1 or 2). The file is a sequence of
// (tag, subtag, length) blocks whose content is padded to a multiple of 4:
// "samp" blocks hold per-brush pixel planes keyed by an identifier string,
// "desc" blocks hold a self-describing descriptor from which names and
// parameters are recovered and attached to samples by identifier.
type Abr6Decoder struct {
	c     *cursor.Cursor
	major uint16
	minor uint16
	sig   []byte
}

// NewAbr6Decoder reads the two 16-bit version fields and peeks the 8-byte
// block signature without consuming it.
func NewAbr6Decoder(data []byte) (*Abr6Decoder, error) {
	c := cursor.New(data)
	major, err := c.Uint16()
	if err != nil {
		return nil, fmt.Errorf("abr6: %w", err)
	}
	minor, err := c.Uint16()
	if err != nil {
		return nil, fmt.Errorf("abr6: %w", err)
	}
	sig, err := c.Peek(8)
	if err != nil {
		return nil, fmt.Errorf("abr6: %w", err)
	}
	return &Abr6Decoder{c: c, major: major, minor: minor, sig: sig}, nil
}

// Check reports whether the minor version is handled and the first block is
// the expected sampled-image section.
func (d *Abr6Decoder) Check() bool {
	if d.minor != 1 && d.minor != 2 {
		return false
	}
	return bytes.Equal(d.sig[:4], abr6Magic) && bytes.Equal(d.sig[4:], subtagSampled)
}

// brushMeta is a descriptor side-table entry for one brush identifier.
type brushMeta struct {
	name   string
	params *desc.Map
}

type pendingSample struct {
	id  string
	mat *PixelMatrix
}

// Parse iterates the top-level blocks until end of buffer, then attaches
// descriptor metadata to the decoded samples by identifier.
func (d *Abr6Decoder) Parse() (*ParsedBrushFile, error) {
	if !d.Check() {
		return nil, &UnsupportedVersionError{Format: "abr6", Major: int(d.major), Minor: int(d.minor)}
	}

	var pending []pendingSample
	meta := make(map[string]brushMeta)

	c := d.c
	for c.Remaining() >= 12 {
		tag, err := c.Bytes(4)
		if err != nil {
			return nil, err
		}
		subtag, err := c.Bytes(4)
		if err != nil {
			return nil, err
		}
		length, err := c.Uint32()
		if err != nil {
			return nil, err
		}
		// content is padded to the next multiple of 4; padding is skipped,
		// never interpreted
		next := c.Offset() + int(length+3)&^3
		if next > c.Len() {
			return nil, fmt.Errorf("abr6: block %q/%q of %d bytes overruns buffer at offset %d",
				tag, subtag, length, c.Offset())
		}
		content, err := c.Peek(int(length))
		if err != nil {
			return nil, err
		}

		switch {
		case bytes.Equal(subtag, subtagSampled):
			pending = append(pending, d.parseSampleBlocks(content)...)
		case bytes.Equal(subtag, subtagDescriptor):
			if err := collectDescriptor(content, meta); err != nil {
				slog.Warn("abr6: skipping undecodable descriptor block", "error", err)
			}
		default:
			slog.Debug("abr6: skipping block", "tag", string(tag), "subtag", string(subtag), "length", length)
		}

		if err := c.Seek(next); err != nil {
			return nil, err
		}
	}

	pf := &ParsedBrushFile{Version: Version{Major: d.major, Minor: d.minor}}
	for _, p := range pending {
		s := BrushSample{Pixels: p.mat}
		if m, ok := meta[p.id]; ok {
			s.Name = m.name
			s.Parameters = m.params
		}
		pf.Samples = append(pf.Samples, s)
	}
	return pf, nil
}

// parseSampleBlocks iterates the nested per-brush records of one "samp"
// block. Each record carries its own declared length, so a failed record is
// logged and skipped without losing the rest.
func (d *Abr6Decoder) parseSampleBlocks(content []byte) []pendingSample {
	var out []pendingSample
	c := cursor.New(content)
	for i := 0; c.Remaining() >= 4; i++ {
		length, err := c.Uint32()
		if err != nil {
			break
		}
		next := c.Offset() + int(length+3)&^3
		if next > c.Len() {
			slog.Warn("abr6: brush record overruns samp block", "index", i, "length", length)
			break
		}
		id, mat, err := d.parseOneBrush(c, next)
		switch {
		case err != nil:
			slog.Warn("abr6: dropping undecodable brush record", "index", i, "error", err)
		case mat != nil:
			out = append(out, pendingSample{id: id, mat: mat})
		}
		if c.Seek(next) != nil {
			break
		}
	}
	return out
}

// parseOneBrush decodes one record of a samp block ending at the absolute
// offset end: the identifier string, then either the inline plane layout
// (minor version 1) or the virtual memory array list (minor version 2).
func (d *Abr6Decoder) parseOneBrush(c *cursor.Cursor, end int) (string, *PixelMatrix, error) {
	idLen, err := c.Uint8()
	if err != nil {
		return "", nil, err
	}
	idRaw, err := c.Bytes(int(idLen))
	if err != nil {
		return "", nil, err
	}
	id := string(idRaw)

	if d.minor == 1 {
		if err := c.Skip(10); err != nil {
			return "", nil, err
		}
		mat, err := decodeBrushPlane(c, end)
		return id, mat, err
	}

	mat, err := d.parseVMArrayList(c)
	return id, mat, err
}

// parseVMArrayList decodes the virtual-memory-array-list image layout. Only
// the last successfully decoded channel's plane is kept: the goal is a
// usable preview texture, not a full multi-channel asset.
func (d *Abr6Decoder) parseVMArrayList(c *cursor.Cursor) (*PixelMatrix, error) {
	version, err := c.Uint32()
	if err != nil {
		return nil, err
	}
	if version != 3 {
		return nil, &UnsupportedVersionError{Format: "abr6 vm array", Major: int(version)}
	}
	if _, err := c.Uint32(); err != nil { // list byte length
		return nil, err
	}
	if err := c.Skip(16); err != nil { // bounding region
		return nil, err
	}
	channels, err := c.Uint32()
	if err != nil {
		return nil, err
	}

	var last *PixelMatrix
	for ch := uint32(0); ch < channels; ch++ {
		written, err := c.Uint32()
		if err != nil {
			return nil, err
		}
		if written == 0 {
			continue
		}
		chLen, err := c.Uint32()
		if err != nil {
			return nil, err
		}
		chEnd := c.Offset() + int(chLen)
		if chEnd > c.Len() {
			return nil, fmt.Errorf("abr6: channel %d of %d bytes overruns record at offset %d", ch, chLen, c.Offset())
		}
		if _, err := c.Uint32(); err != nil { // channel pixel depth, re-declared by the plane
			return nil, err
		}
		mat, err := decodeBrushPlane(c, chEnd)
		if err != nil {
			slog.Warn("abr6: dropping undecodable channel", "channel", ch, "error", err)
		} else if mat != nil {
			last = mat
		}
		if err := c.Seek(chEnd); err != nil {
			return nil, err
		}
	}
	return last, nil
}

// collectDescriptor parses one descriptor block and indexes every nested map
// that carries a sampledData identifier into the side table.
func collectDescriptor(content []byte, out map[string]brushMeta) error {
	m, err := desc.ParseDescriptor(cursor.New(content))
	if err != nil {
		return err
	}
	collectBrushMeta(m, out)
	return nil
}

func collectBrushMeta(m *desc.Map, out map[string]brushMeta) {
	if v, ok := m.Get("sampledData"); ok && v.Kind() == desc.KindString {
		bm := brushMeta{params: m}
		if nv, ok := m.Get("name"); ok && nv.Kind() == desc.KindString {
			bm.name = nv.Text()
		}
		out[v.Text()] = bm
	}
	for _, key := range m.Keys() {
		v, _ := m.Get(key)
		collectBrushMetaValue(v, out)
	}
}

func collectBrushMetaValue(v desc.Value, out map[string]brushMeta) {
	switch v.Kind() {
	case desc.KindMap:
		collectBrushMeta(v.Map(), out)
	case desc.KindList:
		for _, e := range v.List() {
			collectBrushMetaValue(e, out)
		}
	}
}
