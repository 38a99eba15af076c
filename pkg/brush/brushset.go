package brush

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sort"
	"strings"

	"github.com/klauspost/compress/zip"
	"howett.net/plist"

	"github.com/chsh2/import-paint-brush/pkg/brush/desc"
)

// Archive lists and opens the members of a zip-like container. The brushset
// decoder consumes this abstraction instead of touching the filesystem; all
// extraction happens in memory.
type Archive interface {
	Names() []string
	Open(name string) ([]byte, error)
}

// ZipArchive adapts a zip byte buffer to the Archive interface.
type ZipArchive struct {
	r *zip.Reader
}

// OpenZipArchive opens a fully-loaded zip archive.
func OpenZipArchive(data []byte) (*ZipArchive, error) {
	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &MalformedHeaderError{Format: "brushset", Reason: err.Error()}
	}
	return &ZipArchive{r: r}, nil
}

// Names returns the member paths in archive order.
func (a *ZipArchive) Names() []string {
	names := make([]string, len(a.r.File))
	for i, f := range a.r.File {
		names[i] = f.Name
	}
	return names
}

// Open reads one member completely.
func (a *ZipArchive) Open(name string) ([]byte, error) {
	for _, f := range a.r.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("brushset: opening member %s: %w", name, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("brushset: no member %s", name)
}

// BrushsetDecoder extracts the archived textures of a Procreate brush set.
// Each brush directory holds a Shape.png and/or Grain.png texture plus a
// Brush.archive property list carrying its parameters.
type BrushsetDecoder struct {
	archive Archive
	img     ImageDecoder
}

// NewBrushsetDecoder wires the container handle and the external bitmap
// decoder.
func NewBrushsetDecoder(a Archive, img ImageDecoder) *BrushsetDecoder {
	return &BrushsetDecoder{archive: a, img: img}
}

// Check reports whether a container handle is attached; the zip structure
// itself was validated when the archive opened.
func (d *BrushsetDecoder) Check() bool {
	return d.archive != nil && d.img != nil
}

// Parse walks the member list for Shape/Grain textures. Reset variants are
// skipped. A member that fails to decode is logged and skipped; the rest of
// the set still loads.
func (d *BrushsetDecoder) Parse() (*ParsedBrushFile, error) {
	if !d.Check() {
		return nil, &MalformedHeaderError{Format: "brushset", Reason: "no archive handle"}
	}
	names := d.archive.Names()
	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}

	pf := &ParsedBrushFile{}
	for _, member := range names {
		if strings.Contains(member, "Reset") {
			continue
		}
		grain := strings.HasSuffix(member, "Grain.png")
		if !grain && !strings.HasSuffix(member, "Shape.png") {
			continue
		}

		params := desc.NewMap()
		var name string
		// the sibling property list holds this brush's parameters
		if archivePath := member[:len(member)-len("Shape.png")] + "Brush.archive"; present[archivePath] {
			raw, err := d.archive.Open(archivePath)
			if err != nil {
				slog.Warn("brushset: unreadable parameter archive", "member", archivePath, "error", err)
			} else if n, p, err := parseBrushArchive(raw); err != nil {
				slog.Warn("brushset: undecodable parameter archive", "member", archivePath, "error", err)
			} else {
				name, params = n, p
			}
		}
		// a single-brush archive stores its textures at the root, leaving no
		// directory to serve as the identifier
		idEnd := len(member) - len("/Shape.png")
		if idEnd < 0 {
			idEnd = 0
		}
		params.Set("identifier", desc.Text(member[:idEnd]))

		raw, err := d.archive.Open(member)
		if err != nil {
			slog.Warn("brushset: unreadable texture", "member", member, "error", err)
			continue
		}
		mat, err := d.img.Decode(raw)
		if err != nil {
			slog.Warn("brushset: undecodable texture", "member", member, "error", err)
			continue
		}
		pf.Samples = append(pf.Samples, BrushSample{
			// only the shape channel of the texture is meaningful
			Pixels:           channelPlane(mat, 0),
			Name:             name,
			Parameters:       params,
			SecondaryTexture: grain,
		})
	}
	return pf, nil
}

// parseBrushArchive recovers the brush name and parameter map from a keyed
// property list. The $objects array mixes class records with payloads: the
// first plain string (not a marker, not an image path) is the brush name,
// and the dictionary carrying paintSize is the parameter map.
func parseBrushArchive(data []byte) (string, *desc.Map, error) {
	var root map[string]interface{}
	if _, err := plist.Unmarshal(data, &root); err != nil {
		return "", nil, fmt.Errorf("brushset: property list: %w", err)
	}

	params := desc.NewMap()
	var name string
	objects, _ := root["$objects"].([]interface{})
	for _, field := range objects {
		switch t := field.(type) {
		case string:
			if name == "" && !strings.HasPrefix(t, "$") && !strings.HasPrefix(t, "{") &&
				!strings.HasSuffix(t, ".png") && !strings.HasSuffix(t, ".jpg") && !strings.HasSuffix(t, ".jpeg") {
				name = t
			}
		case map[string]interface{}:
			if _, ok := t["paintSize"]; ok {
				params = plistMap(t)
			}
		}
	}
	return name, params, nil
}

// plistMap converts a property-list dictionary, dropping null entries.
// Dictionary order is not preserved by the plist decoder, so keys are sorted
// for stable re-inspection.
func plistMap(m map[string]interface{}) *desc.Map {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := desc.NewMap()
	for _, k := range keys {
		if v, ok := plistValue(m[k]); ok {
			out.Set(k, v)
		}
	}
	return out
}

func plistValue(v interface{}) (desc.Value, bool) {
	switch t := v.(type) {
	case nil:
		return desc.Value{}, false
	case bool:
		return desc.Boolean(t), true
	case string:
		return desc.Text(t), true
	case float64:
		return desc.Double(t), true
	case float32:
		return desc.Double(float64(t)), true
	case int:
		return desc.Integer(int32(t)), true
	case int64:
		if t < math.MinInt32 || t > math.MaxInt32 {
			return desc.Double(float64(t)), true
		}
		return desc.Integer(int32(t)), true
	case uint64:
		if t > math.MaxInt32 {
			return desc.Double(float64(t)), true
		}
		return desc.Integer(int32(t)), true
	case []interface{}:
		list := make([]desc.Value, 0, len(t))
		for _, e := range t {
			if ev, ok := plistValue(e); ok {
				list = append(list, ev)
			}
		}
		return desc.ListOf(list), true
	case map[string]interface{}:
		return desc.MapOf(plistMap(t)), true
	}
	return desc.Value{}, false
}
