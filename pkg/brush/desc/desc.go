// Package desc decodes the self-describing typed-value stream embedded in
// structured brush archives. Every value is preceded by a 4-byte type tag;
// maps and lists nest arbitrarily deep, so parsing is bounded by an explicit
// depth counter.
package desc

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf16"

	"github.com/chsh2/import-paint-brush/pkg/brush/cursor"
)

// maxDepth bounds descriptor nesting. Input-controlled recursion past this
// limit is rejected rather than risking stack exhaustion.
const maxDepth = 64

// UnrecognizedValueTypeError reports a type tag the parser has no rule for.
// The format has no universal fallback, so the offset and raw tag are kept
// for diagnosis.
type UnrecognizedValueTypeError struct {
	Offset int
	Tag    string
}

func (e *UnrecognizedValueTypeError) Error() string {
	return fmt.Sprintf("desc: unrecognized value type %q at offset %d", e.Tag, e.Offset)
}

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindInvalid Kind = iota
	KindInteger
	KindDouble
	KindBoolean
	KindString
	KindUnitFloat
	KindList
	KindMap
)

// Unit is the measurement unit attached to a unit-tagged float. Unrecognized
// unit tags are preserved opaquely as their raw 4-character code.
type Unit string

const (
	UnitAngle    Unit = "angle"
	UnitDensity  Unit = "density"
	UnitDistance Unit = "distance"
	UnitNone     Unit = "none"
	UnitPercent  Unit = "percent"
	UnitPixels   Unit = "pixels"
)

var unitsByTag = map[string]Unit{
	"#Ang": UnitAngle,
	"#Rsl": UnitDensity,
	"#Rlt": UnitDistance,
	"#Nne": UnitNone,
	"#Prc": UnitPercent,
	"#Pxl": UnitPixels,
}

// Value is a tagged union: integer, double, boolean, string, unit float,
// list of Value, or ordered string-keyed map of Value.
type Value struct {
	kind Kind
	i    int32
	f    float64
	b    bool
	s    string
	unit Unit
	list []Value
	m    *Map
}

// Constructors.

func Integer(v int32) Value             { return Value{kind: KindInteger, i: v} }
func Double(v float64) Value            { return Value{kind: KindDouble, f: v} }
func Boolean(v bool) Value              { return Value{kind: KindBoolean, b: v} }
func Text(v string) Value               { return Value{kind: KindString, s: v} }
func UnitFloat(u Unit, v float64) Value { return Value{kind: KindUnitFloat, unit: u, f: v} }
func ListOf(vs []Value) Value           { return Value{kind: KindList, list: vs} }
func MapOf(m *Map) Value                { return Value{kind: KindMap, m: m} }

// Kind returns the variant held by the value.
func (v Value) Kind() Kind { return v.kind }

// Int returns the integer variant.
func (v Value) Int() int32 { return v.i }

// Float returns the double or unit-float numeric value.
func (v Value) Float() float64 { return v.f }

// Bool returns the boolean variant.
func (v Value) Bool() bool { return v.b }

// Text returns the string variant.
func (v Value) Text() string { return v.s }

// Unit returns the unit kind of a unit-float value.
func (v Value) Unit() Unit { return v.unit }

// List returns the list variant.
func (v Value) List() []Value { return v.list }

// Map returns the map variant, or nil.
func (v Value) Map() *Map { return v.m }

// String renders the value for logs and the inspect command.
func (v Value) String() string {
	switch v.kind {
	case KindInteger:
		return fmt.Sprintf("%d", v.i)
	case KindDouble:
		return fmt.Sprintf("%g", v.f)
	case KindBoolean:
		return fmt.Sprintf("%t", v.b)
	case KindString:
		return v.s
	case KindUnitFloat:
		return fmt.Sprintf("%g %s", v.f, v.unit)
	case KindList:
		parts := make([]string, len(v.list))
		for i, e := range v.list {
			parts[i] = e.String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindMap:
		return v.m.String()
	}
	return "<invalid>"
}

// MarshalJSON renders the value with its natural JSON type; unit floats keep
// their unit as {"value": v, "unit": u}.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindInteger:
		return json.Marshal(v.i)
	case KindDouble:
		return json.Marshal(v.f)
	case KindBoolean:
		return json.Marshal(v.b)
	case KindString:
		return json.Marshal(v.s)
	case KindUnitFloat:
		return json.Marshal(struct {
			Value float64 `json:"value"`
			Unit  string  `json:"unit"`
		}{v.f, string(v.unit)})
	case KindList:
		if v.list == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.list)
	case KindMap:
		return v.m.MarshalJSON()
	}
	return []byte("null"), nil
}

// Map is a string-keyed map of Value preserving insertion order. Keys are
// unique; setting an existing key replaces the value in place.
type Map struct {
	keys   []string
	values map[string]Value
}

// NewMap creates an empty ordered map.
func NewMap() *Map {
	return &Map{values: make(map[string]Value)}
}

// Set inserts or replaces a key.
func (m *Map) Set(key string, v Value) {
	if _, ok := m.values[key]; !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = v
}

// Get looks up a key.
func (m *Map) Get(key string) (Value, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Keys returns the keys in insertion order. The slice must not be mutated.
func (m *Map) Keys() []string { return m.keys }

// Len returns the number of entries.
func (m *Map) Len() int { return len(m.keys) }

func (m *Map) String() string {
	parts := make([]string, len(m.keys))
	for i, k := range m.keys {
		parts[i] = fmt.Sprintf("%s: %s", k, m.values[k])
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// MarshalJSON renders an object with keys in insertion order.
func (m *Map) MarshalJSON() ([]byte, error) {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		vb, err := json.Marshal(m.values[k])
		if err != nil {
			return nil, err
		}
		sb.Write(kb)
		sb.WriteByte(':')
		sb.Write(vb)
	}
	sb.WriteByte('}')
	return []byte(sb.String()), nil
}

// ParseDescriptor decodes one top-level descriptor: an embedded unicode
// string (class name, expected empty), a compact-string class id, then the
// key/value map.
func ParseDescriptor(c *cursor.Cursor) (*Map, error) {
	return parseDescriptor(c, 0)
}

func parseDescriptor(c *cursor.Cursor, depth int) (*Map, error) {
	if depth > maxDepth {
		return nil, fmt.Errorf("desc: nesting deeper than %d at offset %d", maxDepth, c.Offset())
	}
	if _, err := parseUnicodeString(c); err != nil {
		return nil, fmt.Errorf("desc: class name: %w", err)
	}
	if _, err := parseCompactString(c); err != nil {
		return nil, fmt.Errorf("desc: class id: %w", err)
	}
	return parseMap(c, depth)
}

func parseMap(c *cursor.Cursor, depth int) (*Map, error) {
	count, err := c.Uint32()
	if err != nil {
		return nil, err
	}
	m := NewMap()
	for i := uint32(0); i < count; i++ {
		key, err := parseCompactString(c)
		if err != nil {
			return nil, fmt.Errorf("desc: map key %d: %w", i, err)
		}
		v, err := parseValue(c, depth+1)
		if err != nil {
			return nil, fmt.Errorf("desc: value for %q: %w", key, err)
		}
		m.Set(key, v)
	}
	return m, nil
}

// parseValue dispatches on the 4-byte type tag preceding every value.
func parseValue(c *cursor.Cursor, depth int) (Value, error) {
	if depth > maxDepth {
		return Value{}, fmt.Errorf("desc: nesting deeper than %d at offset %d", maxDepth, c.Offset())
	}
	off := c.Offset()
	tag, err := c.Bytes(4)
	if err != nil {
		return Value{}, err
	}
	switch string(tag) {
	case "Objc", "GlbO":
		m, err := parseDescriptor(c, depth+1)
		if err != nil {
			return Value{}, err
		}
		return MapOf(m), nil
	case "VlLs":
		count, err := c.Uint32()
		if err != nil {
			return Value{}, err
		}
		list := make([]Value, 0, count)
		for i := uint32(0); i < count; i++ {
			v, err := parseValue(c, depth+1)
			if err != nil {
				return Value{}, err
			}
			list = append(list, v)
		}
		return ListOf(list), nil
	case "TEXT":
		s, err := parseUnicodeString(c)
		if err != nil {
			return Value{}, err
		}
		return Text(s), nil
	case "UntF":
		rawUnit, err := c.Bytes(4)
		if err != nil {
			return Value{}, err
		}
		f, err := c.Float64()
		if err != nil {
			return Value{}, err
		}
		unit, ok := unitsByTag[string(rawUnit)]
		if !ok {
			unit = Unit(rawUnit)
		}
		return UnitFloat(unit, f), nil
	case "bool":
		b, err := c.Uint8()
		if err != nil {
			return Value{}, err
		}
		return Boolean(b != 0), nil
	case "long":
		v, err := c.Int32()
		if err != nil {
			return Value{}, err
		}
		return Integer(v), nil
	case "doub":
		f, err := c.Float64()
		if err != nil {
			return Value{}, err
		}
		return Double(f), nil
	case "enum":
		// type name then value name; only the value name is kept
		if _, err := parseCompactString(c); err != nil {
			return Value{}, err
		}
		name, err := parseCompactString(c)
		if err != nil {
			return Value{}, err
		}
		return Text(name), nil
	}
	return Value{}, &UnrecognizedValueTypeError{Offset: off, Tag: string(tag)}
}

// parseUnicodeString reads a 32-bit character count followed by that many
// UTF-16BE code units, trimming a trailing NUL.
func parseUnicodeString(c *cursor.Cursor) (string, error) {
	count, err := c.Uint32()
	if err != nil {
		return "", err
	}
	raw, err := c.Bytes(int(count) * 2)
	if err != nil {
		return "", err
	}
	units := make([]uint16, count)
	for i := range units {
		units[i] = uint16(raw[i*2])<<8 | uint16(raw[i*2+1])
	}
	s := string(utf16.Decode(units))
	return strings.TrimRight(s, "\x00"), nil
}

// parseCompactString reads a 32-bit length. A zero length selects a packed
// 4-byte code resolved through the property-name dictionary; a nonzero
// length is that many raw ASCII bytes with a trailing NUL trimmed.
func parseCompactString(c *cursor.Cursor) (string, error) {
	length, err := c.Uint32()
	if err != nil {
		return "", err
	}
	if length == 0 {
		code, err := c.Bytes(4)
		if err != nil {
			return "", err
		}
		return KeyName(string(code)), nil
	}
	raw, err := c.Bytes(int(length))
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(raw), "\x00"), nil
}
