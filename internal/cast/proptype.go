package cast

import "fmt"

// Format is the numeric representation of a single property scalar.
type Format uint8

const (
	FormatU8 Format = iota + 1
	FormatU16
	FormatU32
	FormatU64
	FormatF32
	FormatF64
	FormatString
)

func (f Format) String() string {
	switch f {
	case FormatU8:
		return "u8"
	case FormatU16:
		return "u16"
	case FormatU32:
		return "u32"
	case FormatU64:
		return "u64"
	case FormatF32:
		return "f32"
	case FormatF64:
		return "f64"
	case FormatString:
		return "string"
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

// PropertyType describes the wire shape of one logical property element.
// Size is the encoded byte width of an element (all of its components);
// zero marks a null-terminated string.
type PropertyType struct {
	Tag        string
	Size       int
	Format     Format
	Components int
}

// IsString reports whether values of this type are a single text value.
func (t PropertyType) IsString() bool {
	return t.Size == 0
}

// The closed set of property types.
var (
	TypeByte    = PropertyType{Tag: "b", Size: 1, Format: FormatU8, Components: 1}
	TypeShort   = PropertyType{Tag: "h", Size: 2, Format: FormatU16, Components: 1}
	TypeInteger = PropertyType{Tag: "i", Size: 4, Format: FormatU32, Components: 1}
	TypeLong    = PropertyType{Tag: "l", Size: 8, Format: FormatU64, Components: 1}
	TypeFloat   = PropertyType{Tag: "f", Size: 4, Format: FormatF32, Components: 1}
	TypeDouble  = PropertyType{Tag: "d", Size: 8, Format: FormatF64, Components: 1}
	TypeString  = PropertyType{Tag: "s", Size: 0, Format: FormatString, Components: 1}
	TypeVector2 = PropertyType{Tag: "2v", Size: 8, Format: FormatF32, Components: 2}
	TypeVector3 = PropertyType{Tag: "3v", Size: 12, Format: FormatF32, Components: 3}
	TypeVector4 = PropertyType{Tag: "4v", Size: 16, Format: FormatF32, Components: 4}
)

var propertyTypes = map[string]PropertyType{
	TypeByte.Tag:    TypeByte,
	TypeShort.Tag:   TypeShort,
	TypeInteger.Tag: TypeInteger,
	TypeLong.Tag:    TypeLong,
	TypeFloat.Tag:   TypeFloat,
	TypeDouble.Tag:  TypeDouble,
	TypeString.Tag:  TypeString,
	TypeVector2.Tag: TypeVector2,
	TypeVector3.Tag: TypeVector3,
	TypeVector4.Tag: TypeVector4,
}

// LookupPropertyType returns the descriptor for a one or two character tag.
func LookupPropertyType(tag string) (PropertyType, error) {
	t, ok := propertyTypes[tag]
	if !ok {
		return PropertyType{}, fmt.Errorf("cast: property tag %q: %w", tag, ErrUnknownPropertyType)
	}
	return t, nil
}
