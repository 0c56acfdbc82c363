package dialect

import (
	"strconv"
	"strings"

	"github.com/DanWilson00/mavwire/errors"
)

// FieldType enumerates the closed set of wire scalar types. All payload
// bytes are little-endian; floats are IEEE-754.
type FieldType uint8

const (
	TypeChar FieldType = iota
	TypeUint8
	TypeInt8
	TypeUint16
	TypeInt16
	TypeUint32
	TypeInt32
	TypeUint64
	TypeInt64
	TypeFloat
	TypeDouble
)

var typeNames = map[FieldType]string{
	TypeChar:   "char",
	TypeUint8:  "uint8_t",
	TypeInt8:   "int8_t",
	TypeUint16: "uint16_t",
	TypeInt16:  "int16_t",
	TypeUint32: "uint32_t",
	TypeInt32:  "int32_t",
	TypeUint64: "uint64_t",
	TypeInt64:  "int64_t",
	TypeFloat:  "float",
	TypeDouble: "double",
}

var typesByName = func() map[string]FieldType {
	m := make(map[string]FieldType, len(typeNames))
	for t, n := range typeNames {
		m[n] = t
	}
	return m
}()

// String returns the declared type name, e.g. "uint8_t".
func (t FieldType) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return "unknown(" + strconv.Itoa(int(t)) + ")"
}

// Size returns the wire size of one scalar of this type in bytes.
func (t FieldType) Size() int {
	switch t {
	case TypeChar, TypeUint8, TypeInt8:
		return 1
	case TypeUint16, TypeInt16:
		return 2
	case TypeUint32, TypeInt32, TypeFloat:
		return 4
	case TypeUint64, TypeInt64, TypeDouble:
		return 8
	}
	return 0
}

// ParseFieldType maps a base type name to its FieldType.
func ParseFieldType(s string) (FieldType, error) {
	if t, ok := typesByName[s]; ok {
		return t, nil
	}
	return 0, errors.New(errors.PhaseCompile, errors.KindStructuralParse).
		Detail("unknown field type %q", s).
		Value(s).
		Build()
}

// ParseTypeString splits a declared type string into its base scalar type
// and array length (1 for scalars). Array syntax is "type[N]". The legacy
// version-sentinel type maps to its underlying scalar.
func ParseTypeString(s string) (FieldType, int, error) {
	if s == "uint8_t_mavlink_version" {
		return TypeUint8, 1, nil
	}

	base := s
	arrayLen := 1
	if i := strings.IndexByte(s, '['); i >= 0 {
		j := strings.IndexByte(s, ']')
		if j < i {
			return 0, 0, errors.New(errors.PhaseCompile, errors.KindStructuralParse).
				Detail("malformed array type %q", s).
				Value(s).
				Build()
		}
		n, err := strconv.Atoi(s[i+1 : j])
		if err != nil || n < 1 || n > 255 {
			return 0, 0, errors.New(errors.PhaseCompile, errors.KindStructuralParse).
				Detail("invalid array length in %q", s).
				Value(s).
				Cause(err).
				Build()
		}
		base = s[:i]
		arrayLen = n
	}

	t, err := ParseFieldType(base)
	if err != nil {
		return 0, 0, err
	}
	return t, arrayLen, nil
}

// Field is the compiled layout of one message field.
type Field struct {
	Name        string
	Type        string // declared type string, e.g. "uint8_t[20]"
	BaseType    FieldType
	Offset      int // byte offset in the reordered payload
	Size        int // size of one element
	ArrayLength int // 1 = scalar
	Units       string
	Enum        string // enum type name, if declared
	Invalid     string
	Display     string
	Description string
	Extension   bool
}

// ByteLength returns the total wire length of the field.
func (f *Field) ByteLength() int {
	return f.Size * f.ArrayLength
}

// IsArray reports whether the field carries more than one element.
func (f *Field) IsArray() bool {
	return f.ArrayLength > 1
}

// Message is the compiled metadata for one message definition. Fields are
// in final wire order: non-extension fields sorted by descending scalar
// width (declaration order preserved on ties), then extension fields in
// declaration order.
type Message struct {
	ID            uint32
	Name          string
	Description   string
	CRCExtra      uint8 // integrity byte folded into every frame checksum
	EncodedLength int   // sum of non-extension field byte lengths
	Fields        []*Field
}

// Field returns the named field, or nil.
func (m *Message) Field(name string) *Field {
	for _, f := range m.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// WireLength returns the payload length including extension fields.
func (m *Message) WireLength() int {
	if len(m.Fields) == 0 {
		return 0
	}
	last := m.Fields[len(m.Fields)-1]
	return last.Offset + last.ByteLength()
}

// EnumEntry is one value of an enum definition.
type EnumEntry struct {
	Value       uint64
	Name        string
	Description string
}

// Enum is a named set of symbolic values.
type Enum struct {
	Name        string
	Description string
	Bitmask     bool
	Entries     []*EnumEntry // ascending by value
}

// EntryName returns the symbolic name for v, if defined.
func (e *Enum) EntryName(v uint64) (string, bool) {
	for _, en := range e.Entries {
		if en.Value == v {
			return en.Name, true
		}
	}
	return "", false
}

// Dialect is a compiled, possibly include-composed set of message and enum
// definitions. Immutable once built.
type Dialect struct {
	Name     string
	Version  int
	Messages map[uint32]*Message
	Enums    map[string]*Enum
}
