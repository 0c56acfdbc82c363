package wire

import (
	"github.com/DanWilson00/mavwire/dialect"
	"github.com/DanWilson00/mavwire/errors"
	"github.com/DanWilson00/mavwire/x25"
)

// Builder encodes field-value maps into wire frames. It always emits the
// extended wire format with zero flags bytes and a per-builder sequence
// counter.
//
// A Builder is not safe for concurrent use; the sequence counter is
// per-stream state, matching the one-stream-one-instance rule the parser
// follows.
type Builder struct {
	reg    *dialect.Registry
	seq    uint8
	sysID  uint8
	compID uint8
}

// NewBuilder creates a builder stamping frames with the given source ids.
func NewBuilder(reg *dialect.Registry, sysID, compID uint8) *Builder {
	return &Builder{reg: reg, sysID: sysID, compID: compID}
}

// Encode builds a frame for the named message. Fields absent from values
// are encoded as zero, so zero-trim-friendly senders can pass sparse maps.
// An unknown name yields no frame.
func (b *Builder) Encode(name string, values map[string]any) ([]byte, error) {
	m, ok := b.reg.MessageNamed(name)
	if !ok {
		return nil, errors.NotFound(errors.PhaseEncode, "message", name)
	}
	return b.encode(m, values)
}

// EncodeID is Encode keyed by message id.
func (b *Builder) EncodeID(id uint32, values map[string]any) ([]byte, error) {
	m, ok := b.reg.Message(id)
	if !ok {
		return nil, errors.UnknownMessage(errors.PhaseEncode, id)
	}
	return b.encode(m, values)
}

func (b *Builder) encode(m *dialect.Message, values map[string]any) ([]byte, error) {
	payload := make([]byte, m.EncodedLength)
	for _, f := range m.Fields {
		if f.Extension {
			continue
		}
		v, ok := values[f.Name]
		if !ok {
			continue
		}
		if err := writeField(payload, m.Name, f, v); err != nil {
			return nil, err
		}
	}

	out := make([]byte, 0, 10+len(payload)+2)
	out = append(out,
		MagicV2,
		byte(len(payload)),
		0, // incompat flags
		0, // compat flags
		b.seq,
		b.sysID,
		b.compID,
		byte(m.ID),
		byte(m.ID>>8),
		byte(m.ID>>16),
	)
	out = append(out, payload...)
	b.seq++

	h := x25.New()
	h.Write(out[1:]) // start marker excluded
	h.WriteByte(m.CRCExtra)
	sum := h.Sum16()
	out = append(out, byte(sum), byte(sum>>8))

	return out, nil
}
