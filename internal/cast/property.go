package cast

import (
	"encoding/binary"
	"fmt"
	"math"
	"slices"
	"strings"
	"unicode/utf8"
)

const propertyHeaderSize = 8

// Property is a named, typed array of scalars (or a single string) owned by
// one node. Vector types store their components flat: a 3v property with two
// elements holds six float32 values.
//
// Constructors copy the slices they are given and the typed accessors return
// copies, so callers never share storage with a property. Raw is the one
// exception.
type Property struct {
	name string
	typ  PropertyType

	// one of []uint8, []uint16, []uint32, []uint64, []float32, []float64, string
	values any
}

func NewString(name, value string) *Property {
	return &Property{name: name, typ: TypeString, values: value}
}

func NewBytes(name string, values ...uint8) *Property {
	return &Property{name: name, typ: TypeByte, values: slices.Clone(values)}
}

func NewShorts(name string, values ...uint16) *Property {
	return &Property{name: name, typ: TypeShort, values: slices.Clone(values)}
}

func NewIntegers(name string, values ...uint32) *Property {
	return &Property{name: name, typ: TypeInteger, values: slices.Clone(values)}
}

func NewLongs(name string, values ...uint64) *Property {
	return &Property{name: name, typ: TypeLong, values: slices.Clone(values)}
}

func NewFloats(name string, values ...float32) *Property {
	return &Property{name: name, typ: TypeFloat, values: slices.Clone(values)}
}

func NewDoubles(name string, values ...float64) *Property {
	return &Property{name: name, typ: TypeDouble, values: slices.Clone(values)}
}

// NewVectors builds a 2v, 3v or 4v property from flat components.
func NewVectors(name string, typ PropertyType, components []float32) (*Property, error) {
	if typ.Format != FormatF32 || typ.Components < 2 {
		return nil, fmt.Errorf("cast: property %q: %q is not a vector type", name, typ.Tag)
	}
	return &Property{name: name, typ: typ, values: slices.Clone(components)}, nil
}

// NewSmallestUnsigned stores indices with the narrowest integer type that
// holds the largest value, which is how exporters keep face buffers compact.
func NewSmallestUnsigned(name string, values []uint32) *Property {
	var largest uint32
	for _, v := range values {
		if v > largest {
			largest = v
		}
	}
	switch {
	case largest <= math.MaxUint8:
		out := make([]uint8, len(values))
		for i, v := range values {
			out[i] = uint8(v)
		}
		return &Property{name: name, typ: TypeByte, values: out}
	case largest <= math.MaxUint16:
		out := make([]uint16, len(values))
		for i, v := range values {
			out[i] = uint16(v)
		}
		return &Property{name: name, typ: TypeShort, values: out}
	}
	return NewIntegers(name, values...)
}

// renamed returns a copy of p under another name, with its own storage.
func (p *Property) renamed(name string) *Property {
	out := &Property{name: name, typ: p.typ, values: p.values}
	switch v := p.values.(type) {
	case []uint8:
		out.values = slices.Clone(v)
	case []uint16:
		out.values = slices.Clone(v)
	case []uint32:
		out.values = slices.Clone(v)
	case []uint64:
		out.values = slices.Clone(v)
	case []float32:
		out.values = slices.Clone(v)
	case []float64:
		out.values = slices.Clone(v)
	}
	return out
}

func (p *Property) Name() string       { return p.name }
func (p *Property) Type() PropertyType { return p.typ }

// Raw returns the backing slice or string. It is shared with the property and
// must not be modified.
func (p *Property) Raw() any { return p.values }

// Len returns the number of stored scalars, or 1 for a string.
func (p *Property) Len() int {
	switch v := p.values.(type) {
	case []uint8:
		return len(v)
	case []uint16:
		return len(v)
	case []uint32:
		return len(v)
	case []uint64:
		return len(v)
	case []float32:
		return len(v)
	case []float64:
		return len(v)
	case string:
		return 1
	}
	return 0
}

// ElementCount is the logical element count written to the header.
func (p *Property) ElementCount() int {
	if p.typ.IsString() {
		return 1
	}
	return p.Len() / p.typ.Components
}

// Text returns the value of a string property.
func (p *Property) Text() (string, bool) {
	s, ok := p.values.(string)
	return s, ok
}

// Float32s returns a copy of the values of an f, 2v, 3v or 4v property.
func (p *Property) Float32s() ([]float32, bool) {
	v, ok := p.values.([]float32)
	if !ok {
		return nil, false
	}
	return slices.Clone(v), true
}

// Uint32s returns integer values widened to uint32. Long properties are not
// narrowed and report false.
func (p *Property) Uint32s() ([]uint32, bool) {
	switch v := p.values.(type) {
	case []uint8:
		out := make([]uint32, len(v))
		for i, x := range v {
			out[i] = uint32(x)
		}
		return out, true
	case []uint16:
		out := make([]uint32, len(v))
		for i, x := range v {
			out[i] = uint32(x)
		}
		return out, true
	case []uint32:
		return slices.Clone(v), true
	}
	return nil, false
}

// Uint64s returns integer values of any width widened to uint64.
func (p *Property) Uint64s() ([]uint64, bool) {
	if v, ok := p.values.([]uint64); ok {
		return slices.Clone(v), true
	}
	narrow, ok := p.Uint32s()
	if !ok {
		return nil, false
	}
	out := make([]uint64, len(narrow))
	for i, x := range narrow {
		out[i] = uint64(x)
	}
	return out, true
}

// Float64s returns f, d and vector values widened to float64.
func (p *Property) Float64s() ([]float64, bool) {
	switch v := p.values.(type) {
	case []float64:
		return slices.Clone(v), true
	case []float32:
		out := make([]float64, len(v))
		for i, x := range v {
			out[i] = float64(x)
		}
		return out, true
	}
	return nil, false
}

// Uint64At returns the i-th scalar of an integer property.
func (p *Property) Uint64At(i int) (uint64, bool) {
	if i < 0 || i >= p.Len() {
		return 0, false
	}
	switch v := p.values.(type) {
	case []uint8:
		return uint64(v[i]), true
	case []uint16:
		return uint64(v[i]), true
	case []uint32:
		return uint64(v[i]), true
	case []uint64:
		return v[i], true
	}
	return 0, false
}

// Float64At returns the i-th scalar of a floating point property.
func (p *Property) Float64At(i int) (float64, bool) {
	if i < 0 || i >= p.Len() {
		return 0, false
	}
	switch v := p.values.(type) {
	case []float32:
		return float64(v[i]), true
	case []float64:
		return v[i], true
	}
	return 0, false
}

// Length is the encoded size of the record in bytes.
func (p *Property) Length() int {
	n := propertyHeaderSize + len(p.name)
	if s, ok := p.values.(string); ok {
		return n + len(s) + 1
	}
	return n + p.typ.Size*p.ElementCount()
}

func (p *Property) validate() error {
	if len(p.name) > math.MaxUint16 {
		return fmt.Errorf("cast: property name of %d bytes: %w", len(p.name), ErrInconsistentPropertyLength)
	}
	if !utf8.ValidString(p.name) {
		return fmt.Errorf("cast: property name %q: %w", p.name, ErrInvalidEncoding)
	}
	known, err := LookupPropertyType(p.typ.Tag)
	if err != nil {
		return err
	}
	if known != p.typ {
		return fmt.Errorf("cast: property %q: descriptor does not match tag %q: %w",
			p.name, p.typ.Tag, ErrUnknownPropertyType)
	}
	if !formatMatches(p.typ.Format, p.values) {
		return fmt.Errorf("cast: property %q: %T values for type %q: %w",
			p.name, p.values, p.typ.Tag, ErrInconsistentPropertyLength)
	}
	if s, ok := p.values.(string); ok {
		if strings.IndexByte(s, 0) >= 0 {
			return fmt.Errorf("cast: property %q: string contains NUL: %w", p.name, ErrInvalidEncoding)
		}
		if !utf8.ValidString(s) {
			return fmt.Errorf("cast: property %q: %w", p.name, ErrInvalidEncoding)
		}
		return nil
	}
	if p.Len()%p.typ.Components != 0 {
		return fmt.Errorf("cast: property %q: %d values for %d-component type %q: %w",
			p.name, p.Len(), p.typ.Components, p.typ.Tag, ErrInconsistentPropertyLength)
	}
	if uint64(p.ElementCount()) > math.MaxUint32 {
		return fmt.Errorf("cast: property %q: %d elements: %w", p.name, p.ElementCount(), ErrInconsistentPropertyLength)
	}
	return nil
}

func formatMatches(f Format, values any) bool {
	switch values.(type) {
	case []uint8:
		return f == FormatU8
	case []uint16:
		return f == FormatU16
	case []uint32:
		return f == FormatU32
	case []uint64:
		return f == FormatU64
	case []float32:
		return f == FormatF32
	case []float64:
		return f == FormatF64
	case string:
		return f == FormatString
	}
	return false
}

func appendProperty(buf []byte, p *Property) ([]byte, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	var tag [2]byte
	copy(tag[:], p.typ.Tag)
	buf = append(buf, tag[:]...)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(p.name)))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(p.ElementCount()))
	buf = append(buf, p.name...)

	switch v := p.values.(type) {
	case string:
		buf = append(buf, v...)
		buf = append(buf, 0)
	case []uint8:
		buf = append(buf, v...)
	case []uint16:
		for _, x := range v {
			buf = binary.LittleEndian.AppendUint16(buf, x)
		}
	case []uint32:
		for _, x := range v {
			buf = binary.LittleEndian.AppendUint32(buf, x)
		}
	case []uint64:
		for _, x := range v {
			buf = binary.LittleEndian.AppendUint64(buf, x)
		}
	case []float32:
		for _, x := range v {
			buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(x))
		}
	case []float64:
		for _, x := range v {
			buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(x))
		}
	}
	return buf, nil
}

func readProperty(r *reader) (*Property, error) {
	start := r.off
	if err := r.need(propertyHeaderSize, "property header"); err != nil {
		return nil, err
	}
	rawTag := string(r.data[r.off : r.off+2])
	r.off += 2
	nameLen := int(r.u16())
	elements := int(r.u32())

	rawName, err := r.next(nameLen, "property name")
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(rawName) {
		return nil, fmt.Errorf("cast: property name at offset %d: %w", start+propertyHeaderSize, ErrInvalidEncoding)
	}
	name := string(rawName)

	typ, err := LookupPropertyType(strings.TrimRight(rawTag, "\x00"))
	if err != nil {
		return nil, fmt.Errorf("cast: property %q at offset %d: %w", name, start, err)
	}

	p := &Property{name: name, typ: typ}
	if typ.IsString() {
		s, err := r.cstring("property " + name)
		if err != nil {
			return nil, err
		}
		p.values = s
		return p, nil
	}

	raw, err := r.next(elements*typ.Size, "property "+name)
	if err != nil {
		return nil, err
	}
	count := elements * typ.Components
	switch typ.Format {
	case FormatU8:
		v := make([]uint8, count)
		copy(v, raw)
		p.values = v
	case FormatU16:
		v := make([]uint16, count)
		for i := range v {
			v[i] = binary.LittleEndian.Uint16(raw[i*2:])
		}
		p.values = v
	case FormatU32:
		v := make([]uint32, count)
		for i := range v {
			v[i] = binary.LittleEndian.Uint32(raw[i*4:])
		}
		p.values = v
	case FormatU64:
		v := make([]uint64, count)
		for i := range v {
			v[i] = binary.LittleEndian.Uint64(raw[i*8:])
		}
		p.values = v
	case FormatF32:
		v := make([]float32, count)
		for i := range v {
			v[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[i*4:]))
		}
		p.values = v
	case FormatF64:
		v := make([]float64, count)
		for i := range v {
			v[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
		}
		p.values = v
	}
	return p, nil
}
