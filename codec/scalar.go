package codec

import (
	"encoding/binary"
	"math"
	"strings"

	"github.com/DanWilson00/mavwire/dialect"
	"github.com/DanWilson00/mavwire/errors"
)

// decodeField reads one field from the padded payload buffer. Char arrays
// become strings terminated at the first zero byte; other arrays become
// typed slices, stopping early if a full element would not fit.
func decodeField(buf []byte, f *dialect.Field) (any, error) {
	if f.Offset >= len(buf) {
		return nil, errors.New(errors.PhaseDecode, errors.KindFieldDecode).
			Path(f.Name).
			Detail("offset %d beyond buffer of %d", f.Offset, len(buf)).
			Build()
	}

	if f.BaseType == dialect.TypeChar && f.IsArray() {
		end := f.Offset + f.ArrayLength
		if end > len(buf) {
			end = len(buf)
		}
		s := string(buf[f.Offset:end])
		if i := strings.IndexByte(s, 0); i >= 0 {
			s = s[:i]
		}
		return s, nil
	}

	if f.IsArray() {
		return decodeArray(buf, f)
	}

	if f.Offset+f.Size > len(buf) {
		return nil, errors.New(errors.PhaseDecode, errors.KindFieldDecode).
			Path(f.Name).
			Detail("scalar does not fit at offset %d", f.Offset).
			Build()
	}
	return readScalar(buf[f.Offset:], f.BaseType), nil
}

func decodeArray(buf []byte, f *dialect.Field) (any, error) {
	// Count only whole elements inside the buffer.
	n := f.ArrayLength
	if avail := (len(buf) - f.Offset) / f.Size; avail < n {
		n = avail
	}
	if n <= 0 {
		return nil, errors.New(errors.PhaseDecode, errors.KindFieldDecode).
			Path(f.Name).
			Detail("no complete element fits at offset %d", f.Offset).
			Build()
	}

	switch f.BaseType {
	case dialect.TypeUint8, dialect.TypeChar:
		out := make([]uint8, n)
		for i := range out {
			out[i] = buf[f.Offset+i]
		}
		return out, nil
	case dialect.TypeInt8:
		out := make([]int8, n)
		for i := range out {
			out[i] = int8(buf[f.Offset+i])
		}
		return out, nil
	case dialect.TypeUint16:
		out := make([]uint16, n)
		for i := range out {
			out[i] = binary.LittleEndian.Uint16(buf[f.Offset+i*2:])
		}
		return out, nil
	case dialect.TypeInt16:
		out := make([]int16, n)
		for i := range out {
			out[i] = int16(binary.LittleEndian.Uint16(buf[f.Offset+i*2:]))
		}
		return out, nil
	case dialect.TypeUint32:
		out := make([]uint32, n)
		for i := range out {
			out[i] = binary.LittleEndian.Uint32(buf[f.Offset+i*4:])
		}
		return out, nil
	case dialect.TypeInt32:
		out := make([]int32, n)
		for i := range out {
			out[i] = int32(binary.LittleEndian.Uint32(buf[f.Offset+i*4:]))
		}
		return out, nil
	case dialect.TypeUint64:
		out := make([]uint64, n)
		for i := range out {
			out[i] = binary.LittleEndian.Uint64(buf[f.Offset+i*8:])
		}
		return out, nil
	case dialect.TypeInt64:
		out := make([]int64, n)
		for i := range out {
			out[i] = int64(binary.LittleEndian.Uint64(buf[f.Offset+i*8:]))
		}
		return out, nil
	case dialect.TypeFloat:
		out := make([]float32, n)
		for i := range out {
			out[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[f.Offset+i*4:]))
		}
		return out, nil
	case dialect.TypeDouble:
		out := make([]float64, n)
		for i := range out {
			out[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[f.Offset+i*8:]))
		}
		return out, nil
	}
	return nil, errors.New(errors.PhaseDecode, errors.KindFieldDecode).
		Path(f.Name).
		Detail("unhandled base type %s", f.BaseType).
		Build()
}

// readScalar reads one fixed-width little-endian scalar. The caller has
// already checked that the value fits the buffer.
func readScalar(buf []byte, t dialect.FieldType) any {
	switch t {
	case dialect.TypeChar, dialect.TypeUint8:
		return buf[0]
	case dialect.TypeInt8:
		return int8(buf[0])
	case dialect.TypeUint16:
		return binary.LittleEndian.Uint16(buf)
	case dialect.TypeInt16:
		return int16(binary.LittleEndian.Uint16(buf))
	case dialect.TypeUint32:
		return binary.LittleEndian.Uint32(buf)
	case dialect.TypeInt32:
		return int32(binary.LittleEndian.Uint32(buf))
	case dialect.TypeUint64:
		return binary.LittleEndian.Uint64(buf)
	case dialect.TypeInt64:
		return int64(binary.LittleEndian.Uint64(buf))
	case dialect.TypeFloat:
		return math.Float32frombits(binary.LittleEndian.Uint32(buf))
	case dialect.TypeDouble:
		return math.Float64frombits(binary.LittleEndian.Uint64(buf))
	}
	return nil
}
