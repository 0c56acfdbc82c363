package wire

import (
	"encoding/binary"
	"math"
	"reflect"

	"github.com/DanWilson00/mavwire/dialect"
	"github.com/DanWilson00/mavwire/errors"
)

// writeField encodes one field value into the payload buffer at the
// field's compiled offset. buf must already span the field.
func writeField(buf []byte, msg string, f *dialect.Field, v any) error {
	if f.BaseType == dialect.TypeChar && f.IsArray() {
		return writeCharArray(buf, msg, f, v)
	}
	if f.IsArray() {
		return writeArray(buf, msg, f, v)
	}
	return writeScalar(buf[f.Offset:], msg, f, f.BaseType, v)
}

func writeCharArray(buf []byte, msg string, f *dialect.Field, v any) error {
	var data []byte
	switch s := v.(type) {
	case string:
		data = []byte(s)
	case []byte:
		data = s
	default:
		return errors.New(errors.PhaseEncode, errors.KindInvalidInput).
			Path(msg, f.Name).
			Detail("char array wants string or []byte, got %T", v).
			Value(v).
			Build()
	}
	if len(data) > f.ArrayLength {
		return errors.Overflow([]string{msg, f.Name}, len(data), f.Type)
	}
	// Shorter strings leave trailing zero bytes; the decoder stops at the
	// first one.
	copy(buf[f.Offset:f.Offset+f.ArrayLength], data)
	return nil
}

func writeArray(buf []byte, msg string, f *dialect.Field, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return errors.New(errors.PhaseEncode, errors.KindInvalidInput).
			Path(msg, f.Name).
			Detail("array field wants a slice, got %T", v).
			Value(v).
			Build()
	}
	if rv.Len() > f.ArrayLength {
		return errors.Overflow([]string{msg, f.Name}, rv.Len(), f.Type)
	}
	for i := 0; i < rv.Len(); i++ {
		off := f.Offset + i*f.Size
		if err := writeScalar(buf[off:], msg, f, f.BaseType, rv.Index(i).Interface()); err != nil {
			return err
		}
	}
	return nil
}

func writeScalar(buf []byte, msg string, f *dialect.Field, t dialect.FieldType, v any) error {
	switch t {
	case dialect.TypeChar, dialect.TypeUint8:
		u, err := toUint(msg, f, v, math.MaxUint8)
		if err != nil {
			return err
		}
		buf[0] = byte(u)
	case dialect.TypeUint16:
		u, err := toUint(msg, f, v, math.MaxUint16)
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint16(buf, uint16(u))
	case dialect.TypeUint32:
		u, err := toUint(msg, f, v, math.MaxUint32)
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint32(buf, uint32(u))
	case dialect.TypeUint64:
		u, err := toUint(msg, f, v, math.MaxUint64)
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint64(buf, u)
	case dialect.TypeInt8:
		i, err := toInt(msg, f, v, math.MinInt8, math.MaxInt8)
		if err != nil {
			return err
		}
		buf[0] = byte(int8(i))
	case dialect.TypeInt16:
		i, err := toInt(msg, f, v, math.MinInt16, math.MaxInt16)
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint16(buf, uint16(int16(i)))
	case dialect.TypeInt32:
		i, err := toInt(msg, f, v, math.MinInt32, math.MaxInt32)
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint32(buf, uint32(int32(i)))
	case dialect.TypeInt64:
		i, err := toInt(msg, f, v, math.MinInt64, math.MaxInt64)
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint64(buf, uint64(i))
	case dialect.TypeFloat:
		fv, err := toFloat(msg, f, v)
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(fv)))
	case dialect.TypeDouble:
		fv, err := toFloat(msg, f, v)
		if err != nil {
			return err
		}
		binary.LittleEndian.PutUint64(buf, math.Float64bits(fv))
	}
	return nil
}

func toUint(msg string, f *dialect.Field, v any, max uint64) (uint64, error) {
	var u uint64
	switch n := v.(type) {
	case uint8:
		u = uint64(n)
	case uint16:
		u = uint64(n)
	case uint32:
		u = uint64(n)
	case uint64:
		u = n
	case uint:
		u = uint64(n)
	case int8:
		if n < 0 {
			return 0, errors.Overflow([]string{msg, f.Name}, v, f.BaseType.String())
		}
		u = uint64(n)
	case int16:
		if n < 0 {
			return 0, errors.Overflow([]string{msg, f.Name}, v, f.BaseType.String())
		}
		u = uint64(n)
	case int32:
		if n < 0 {
			return 0, errors.Overflow([]string{msg, f.Name}, v, f.BaseType.String())
		}
		u = uint64(n)
	case int64:
		if n < 0 {
			return 0, errors.Overflow([]string{msg, f.Name}, v, f.BaseType.String())
		}
		u = uint64(n)
	case int:
		if n < 0 {
			return 0, errors.Overflow([]string{msg, f.Name}, v, f.BaseType.String())
		}
		u = uint64(n)
	default:
		return 0, errors.New(errors.PhaseEncode, errors.KindInvalidInput).
			Path(msg, f.Name).
			Detail("want unsigned integer, got %T", v).
			Value(v).
			Build()
	}
	if u > max {
		return 0, errors.Overflow([]string{msg, f.Name}, v, f.BaseType.String())
	}
	return u, nil
}

func toInt(msg string, f *dialect.Field, v any, min, max int64) (int64, error) {
	var i int64
	switch n := v.(type) {
	case int8:
		i = int64(n)
	case int16:
		i = int64(n)
	case int32:
		i = int64(n)
	case int64:
		i = n
	case int:
		i = int64(n)
	case uint8:
		i = int64(n)
	case uint16:
		i = int64(n)
	case uint32:
		i = int64(n)
	case uint64:
		if n > math.MaxInt64 {
			return 0, errors.Overflow([]string{msg, f.Name}, v, f.BaseType.String())
		}
		i = int64(n)
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, errors.Overflow([]string{msg, f.Name}, v, f.BaseType.String())
		}
		i = int64(n)
	default:
		return 0, errors.New(errors.PhaseEncode, errors.KindInvalidInput).
			Path(msg, f.Name).
			Detail("want integer, got %T", v).
			Value(v).
			Build()
	}
	if i < min || i > max {
		return 0, errors.Overflow([]string{msg, f.Name}, v, f.BaseType.String())
	}
	return i, nil
}

func toFloat(msg string, f *dialect.Field, v any) (float64, error) {
	switch n := v.(type) {
	case float32:
		return float64(n), nil
	case float64:
		return n, nil
	case int:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	}
	return 0, errors.New(errors.PhaseEncode, errors.KindInvalidInput).
		Path(msg, f.Name).
		Detail("want float, got %T", v).
		Value(v).
		Build()
}
