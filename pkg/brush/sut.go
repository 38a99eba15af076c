package brush

import (
	"database/sql"
	"fmt"
	"log/slog"
	"math"

	_ "modernc.org/sqlite"

	"github.com/chsh2/import-paint-brush/pkg/brush/desc"
)

// SutDecoder extracts textures and parameters from a Clip Studio .sut brush,
// a SQLite database holding one brush: its parameters in the Variant table,
// its name in Node, and PNG-encoded texture blobs in MaterialFile. The blobs
// may hold stale copies, so the valid stream is carved out by the boundary
// scanner before the external bitmap decoder runs.
type SutDecoder struct {
	db    *sql.DB
	img   ImageDecoder
	owned bool
}

// OpenSut opens the database file with the pure-Go sqlite driver.
func OpenSut(path string) (*SutDecoder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sut: opening %s: %w", path, err)
	}
	d := NewSutDecoder(db, DefaultImageDecoder)
	d.owned = true
	return d, nil
}

// NewSutDecoder wires an already-open database handle and bitmap decoder.
// The caller keeps ownership of the handle.
func NewSutDecoder(db *sql.DB, img ImageDecoder) *SutDecoder {
	return &SutDecoder{db: db, img: img}
}

// Close releases the database handle if this decoder opened it.
func (d *SutDecoder) Close() error {
	if !d.owned {
		return nil
	}
	return d.db.Close()
}

// Check reports whether the database carries a MaterialFile table. Brush
// files without one hold no texture and cannot be imported.
func (d *SutDecoder) Check() bool {
	var name string
	err := d.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='MaterialFile'").Scan(&name)
	return err == nil
}

// Parse reads the shared parameter row, the brush name, and every texture
// blob. All samples share the single parameter set; a blob that yields no
// decodable image is logged and skipped.
func (d *SutDecoder) Parse() (*ParsedBrushFile, error) {
	params, err := d.variantParams()
	if err != nil {
		slog.Warn("sut: no variant parameters", "error", err)
		params = desc.NewMap()
	}

	var name string
	if err := d.db.QueryRow("SELECT NodeName FROM Node").Scan(&name); err != nil {
		slog.Warn("sut: no node name", "error", err)
	}
	params.Set("BrushName", desc.Text(name))

	rows, err := d.db.Query("SELECT FileData FROM MaterialFile")
	if err != nil {
		return nil, fmt.Errorf("sut: querying textures: %w", err)
	}
	defer rows.Close()

	pf := &ParsedBrushFile{}
	for i := 0; rows.Next(); i++ {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return nil, fmt.Errorf("sut: texture row %d: %w", i, err)
		}
		stream, err := ExtractEmbeddedPNG(blob)
		if err != nil {
			slog.Warn("sut: no embedded image in texture row", "row", i, "error", err)
			continue
		}
		mat, err := d.img.Decode(stream)
		if err != nil {
			slog.Warn("sut: undecodable texture row", "row", i, "error", err)
			continue
		}
		pf.Samples = append(pf.Samples, BrushSample{
			Pixels:     mat,
			Name:       name,
			Parameters: params,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sut: iterating textures: %w", err)
	}
	return pf, nil
}

// variantParams reads the first Variant row into a parameter map, keyed by
// column name, with NULL columns dropped. There is a single brush per file.
func (d *SutDecoder) variantParams() (*desc.Map, error) {
	rows, err := d.db.Query("SELECT * FROM Variant")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("sut: Variant table is empty")
	}
	dest := make([]interface{}, len(cols))
	for i := range dest {
		dest[i] = new(interface{})
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}

	params := desc.NewMap()
	for i, col := range cols {
		if v, ok := sqlValue(*dest[i].(*interface{})); ok {
			params.Set(col, v)
		}
	}
	return params, nil
}

// sqlValue converts a driver value; NULLs and raw blobs are dropped, they
// are file data rather than parameters.
func sqlValue(v interface{}) (desc.Value, bool) {
	switch t := v.(type) {
	case nil, []byte:
		return desc.Value{}, false
	case bool:
		return desc.Boolean(t), true
	case string:
		return desc.Text(t), true
	case float64:
		return desc.Double(t), true
	case int64:
		if t < math.MinInt32 || t > math.MaxInt32 {
			return desc.Double(float64(t)), true
		}
		return desc.Integer(int32(t)), true
	}
	return desc.Value{}, false
}
