// Package codec maps validated frame payloads to named field values using
// compiled layout metadata.
//
// The decoder is tolerant by construction: sender-side zero-trimming is
// reversed by logical zero padding, a truncated field is read against the
// padded buffer as long as it starts inside the received bytes, and a
// failure to decode a single field omits that field without invalidating
// the rest of the message.
package codec

import (
	"github.com/DanWilson00/mavwire/dialect"
	"github.com/DanWilson00/mavwire/errors"
	"github.com/DanWilson00/mavwire/wire"
)

// Message is one decoded message: transient, per-packet, caller-owned.
type Message struct {
	ID     uint32
	Name   string
	Meta   *dialect.Message
	Fields map[string]any
	Seq    uint8
	SysID  uint8
	CompID uint8
}

// Option configures a Decoder.
type Option func(*Decoder)

// WithEnumNames makes the decoder translate integer values of fields that
// declare an enum type into their symbolic names. Values with no matching
// entry pass through as raw integers.
func WithEnumNames() Option {
	return func(d *Decoder) { d.resolveEnums = true }
}

// Decoder extracts field values from validated frames. Stateless apart
// from its registry reference; safe for concurrent use.
type Decoder struct {
	reg          *dialect.Registry
	resolveEnums bool
}

// NewDecoder creates a decoder resolving metadata through reg.
func NewDecoder(reg *dialect.Registry, opts ...Option) *Decoder {
	d := &Decoder{reg: reg}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode maps a frame's payload to named values. Whole-message errors are
// a message id absent from the registry and a frame whose checksums
// disagree; per-field problems drop the field, never the message.
func (d *Decoder) Decode(f *wire.Frame) (*Message, error) {
	if !f.Valid() {
		return nil, errors.CrcMismatch(f.Checksum, f.Computed)
	}
	meta, ok := d.reg.Message(f.MsgID)
	if !ok {
		return nil, errors.UnknownMessage(errors.PhaseDecode, f.MsgID)
	}

	// Senders may strip trailing zero bytes; reconstruct them. Padding
	// spans the full wire length so extension fields decode by the same
	// rules as base fields.
	received := len(f.Payload)
	buf := f.Payload
	if full := meta.WireLength(); received < full {
		buf = make([]byte, full)
		copy(buf, f.Payload)
	}

	fields := make(map[string]any, len(meta.Fields))
	for _, fl := range meta.Fields {
		// A field is absent only when it starts at or past the received
		// bytes. One that starts inside but runs past reads zero padding.
		if fl.Offset >= received {
			continue
		}
		v, err := decodeField(buf, fl)
		if err != nil {
			continue
		}
		if d.resolveEnums && fl.Enum != "" && !fl.IsArray() {
			v = d.resolveEnum(fl.Enum, v)
		}
		fields[fl.Name] = v
	}

	return &Message{
		ID:     meta.ID,
		Name:   meta.Name,
		Meta:   meta,
		Fields: fields,
		Seq:    f.Seq,
		SysID:  f.SysID,
		CompID: f.CompID,
	}, nil
}

func (d *Decoder) resolveEnum(enumName string, v any) any {
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
	case int8:
		if n < 0 {
			return v
		}
		u = uint64(n)
	case int16:
		if n < 0 {
			return v
		}
		u = uint64(n)
	case int32:
		if n < 0 {
			return v
		}
		u = uint64(n)
	case int64:
		if n < 0 {
			return v
		}
		u = uint64(n)
	default:
		return v
	}
	if name, ok := d.reg.EntryName(enumName, u); ok {
		return name
	}
	return v
}
