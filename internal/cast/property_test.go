package cast

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rawProperty hand-assembles a property record the way a producer would.
func rawProperty(tag string, name string, elements uint32, payload []byte) []byte {
	var buf []byte
	var t [2]byte
	copy(t[:], tag)
	buf = append(buf, t[:]...)
	buf = binary.LittleEndian.AppendUint16(buf, uint16(len(name)))
	buf = binary.LittleEndian.AppendUint32(buf, elements)
	buf = append(buf, name...)
	return append(buf, payload...)
}

func TestLookupPropertyType(t *testing.T) {
	cases := []struct {
		tag        string
		size       int
		format     Format
		components int
	}{
		{"b", 1, FormatU8, 1},
		{"h", 2, FormatU16, 1},
		{"i", 4, FormatU32, 1},
		{"l", 8, FormatU64, 1},
		{"f", 4, FormatF32, 1},
		{"d", 8, FormatF64, 1},
		{"s", 0, FormatString, 1},
		{"2v", 8, FormatF32, 2},
		{"3v", 12, FormatF32, 3},
		{"4v", 16, FormatF32, 4},
	}
	for _, c := range cases {
		typ, err := LookupPropertyType(c.tag)
		require.NoError(t, err, c.tag)
		assert.Equal(t, c.tag, typ.Tag)
		assert.Equal(t, c.size, typ.Size, c.tag)
		assert.Equal(t, c.format, typ.Format, c.tag)
		assert.Equal(t, c.components, typ.Components, c.tag)
	}

	_, err := LookupPropertyType("q")
	assert.ErrorIs(t, err, ErrUnknownPropertyType)
	_, err = LookupPropertyType("")
	assert.ErrorIs(t, err, ErrUnknownPropertyType)
}

func TestReadProperty_TrimsPaddedTag(t *testing.T) {
	r := &reader{data: rawProperty("b", "lo", 1, []byte{1})}
	p, err := readProperty(r)
	require.NoError(t, err)
	assert.Equal(t, "lo", p.Name())
	assert.Equal(t, TypeByte, p.Type())
	v, ok := p.Uint64At(0)
	assert.True(t, ok)
	assert.EqualValues(t, 1, v)
	assert.Equal(t, len(r.data), r.off)
}

func TestReadProperty_Vectors(t *testing.T) {
	var payload []byte
	for _, f := range []float32{1, 2, 3, 4, 5, 6} {
		payload = binary.LittleEndian.AppendUint32(payload, math.Float32bits(f))
	}
	p, err := readProperty(&reader{data: rawProperty("3v", "vp", 2, payload)})
	require.NoError(t, err)
	assert.Equal(t, 2, p.ElementCount())
	assert.Equal(t, 6, p.Len())
	v, ok := p.Float32s()
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, v)
}

func TestReadProperty_String(t *testing.T) {
	data := rawProperty("s", "n", 1, []byte("héllo\x00"))
	r := &reader{data: data}
	p, err := readProperty(r)
	require.NoError(t, err)
	s, ok := p.Text()
	require.True(t, ok)
	assert.Equal(t, "héllo", s)
	assert.Equal(t, len(data), r.off)
	assert.Equal(t, len(data), p.Length())
}

func TestReadProperty_Errors(t *testing.T) {
	t.Run("unknown tag", func(t *testing.T) {
		_, err := readProperty(&reader{data: rawProperty("zz", "x", 0, nil)})
		assert.ErrorIs(t, err, ErrUnknownPropertyType)
	})
	t.Run("short header", func(t *testing.T) {
		_, err := readProperty(&reader{data: []byte{'b', 0, 1}})
		assert.ErrorIs(t, err, ErrTruncatedStream)
	})
	t.Run("short payload", func(t *testing.T) {
		_, err := readProperty(&reader{data: rawProperty("i", "f", 3, []byte{1, 0, 0, 0})})
		assert.ErrorIs(t, err, ErrTruncatedStream)
	})
	t.Run("unterminated string", func(t *testing.T) {
		_, err := readProperty(&reader{data: rawProperty("s", "n", 1, []byte("abc"))})
		assert.ErrorIs(t, err, ErrTruncatedStream)
	})
	t.Run("bad name", func(t *testing.T) {
		_, err := readProperty(&reader{data: rawProperty("b", "\xff\xfe", 1, []byte{0})})
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})
	t.Run("bad string", func(t *testing.T) {
		_, err := readProperty(&reader{data: rawProperty("s", "n", 1, []byte("\xc3\x28\x00"))})
		assert.ErrorIs(t, err, ErrInvalidEncoding)
	})
}

func TestAppendProperty_Layout(t *testing.T) {
	p := NewShorts("f", 1, 2, 3)
	buf, err := appendProperty(nil, p)
	require.NoError(t, err)
	assert.Equal(t, rawProperty("h", "f", 3, []byte{1, 0, 2, 0, 3, 0}), buf)
	assert.Equal(t, len(buf), p.Length())

	v, err := NewVectors("u0", TypeVector2, []float32{0.5, 0.25})
	require.NoError(t, err)
	buf, err = appendProperty(nil, v)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), binary.LittleEndian.Uint32(buf[4:8]))
	assert.Equal(t, len(buf), v.Length())
}

func TestAppendProperty_InconsistentLength(t *testing.T) {
	p, err := NewVectors("vp", TypeVector3, []float32{1, 2, 3, 4})
	require.NoError(t, err)
	_, err = appendProperty(nil, p)
	assert.ErrorIs(t, err, ErrInconsistentPropertyLength)
}

func TestAppendProperty_RejectsNulInString(t *testing.T) {
	_, err := appendProperty(nil, NewString("n", "a\x00b"))
	assert.ErrorIs(t, err, ErrInvalidEncoding)
}

func TestNewVectors_RejectsScalarType(t *testing.T) {
	_, err := NewVectors("x", TypeFloat, []float32{1})
	assert.Error(t, err)
}

func TestNewSmallestUnsigned(t *testing.T) {
	assert.Equal(t, TypeByte, NewSmallestUnsigned("f", []uint32{0, 1, 255}).Type())
	assert.Equal(t, TypeShort, NewSmallestUnsigned("f", []uint32{0, 256}).Type())
	assert.Equal(t, TypeInteger, NewSmallestUnsigned("f", []uint32{70000}).Type())

	v, ok := NewSmallestUnsigned("f", []uint32{4, 300}).Uint32s()
	require.True(t, ok)
	assert.Equal(t, []uint32{4, 300}, v)
}

func TestPropertyWidening(t *testing.T) {
	longs := NewLongs("m", 1<<40)
	_, ok := longs.Uint32s()
	assert.False(t, ok)
	wide, ok := longs.Uint64s()
	require.True(t, ok)
	assert.Equal(t, []uint64{1 << 40}, wide)

	f, ok := NewFloats("fr", 30).Float64s()
	require.True(t, ok)
	assert.Equal(t, []float64{30}, f)

	_, ok = NewString("n", "x").Float64At(0)
	assert.False(t, ok)
	_, ok = NewBytes("b").Uint64At(0)
	assert.False(t, ok)
}

func TestPropertyCopiesSlices(t *testing.T) {
	in := []uint32{1, 2, 70000}
	p := NewIntegers("f", in...)
	in[0] = 9
	out, _ := p.Uint32s()
	assert.Equal(t, []uint32{1, 2, 70000}, out)
	out[1] = 9
	again, _ := p.Uint32s()
	assert.Equal(t, []uint32{1, 2, 70000}, again)

	xyz := []float32{1, 2, 3}
	v, err := NewVectors("vp", TypeVector3, xyz)
	require.NoError(t, err)
	xyz[0] = 9
	got, _ := v.Float32s()
	assert.Equal(t, []float32{1, 2, 3}, got)
	got[2] = 9
	got, _ = v.Float32s()
	assert.Equal(t, []float32{1, 2, 3}, got)

	doubles := NewDoubles("d", 0.5)
	d, _ := doubles.Float64s()
	d[0] = 2
	d, _ = doubles.Float64s()
	assert.Equal(t, []float64{0.5}, d)
}
