// Package link assembles the runtime pipeline: a byte source feeds the
// frame parser, validated frames are decoded, and both streams fan out to
// any number of subscribers over an event bus. No backpressure is
// modeled; subscribers must keep pace or buffer independently.
package link

import (
	"context"

	"github.com/asaskevich/EventBus"
	"go.uber.org/zap"

	"github.com/DanWilson00/mavwire"
	"github.com/DanWilson00/mavwire/codec"
	"github.com/DanWilson00/mavwire/dialect"
	"github.com/DanWilson00/mavwire/wire"
)

const (
	topicFrames   = "link:frames"
	topicMessages = "link:messages"
)

// Option configures a Link.
type Option func(*options)

type options struct {
	sysID       uint8
	compID      uint8
	decoderOpts []codec.Option
}

// WithSourceIDs sets the system and component ids stamped on outgoing
// frames. Defaults are 255/190, a ground-station identity.
func WithSourceIDs(sysID, compID uint8) Option {
	return func(o *options) {
		o.sysID = sysID
		o.compID = compID
	}
}

// WithEnumNames enables symbolic enum resolution on decoded messages.
func WithEnumNames() Option {
	return func(o *options) {
		o.decoderOpts = append(o.decoderOpts, codec.WithEnumNames())
	}
}

// Link owns one logical byte stream end to end: parser and builder state
// are private to it, so each independent stream gets its own Link over a
// shared immutable registry.
//
// Run must be driven by a single goroutine. Subscribers registered before
// Run are invoked in the Run goroutine, in registration order.
type Link struct {
	reg     *dialect.Registry
	parser  *wire.Parser
	decoder *codec.Decoder
	builder *wire.Builder
	bus     EventBus.Bus
}

// New creates a Link validating and decoding against reg.
func New(reg *dialect.Registry, opts ...Option) *Link {
	o := options{sysID: 255, compID: 190}
	for _, opt := range opts {
		opt(&o)
	}
	return &Link{
		reg:     reg,
		parser:  wire.NewParser(reg),
		decoder: codec.NewDecoder(reg, o.decoderOpts...),
		builder: wire.NewBuilder(reg, o.sysID, o.compID),
		bus:     EventBus.New(),
	}
}

// SubscribeFrames registers a handler for every validated frame.
func (l *Link) SubscribeFrames(fn func(*wire.Frame)) error {
	return l.bus.Subscribe(topicFrames, fn)
}

// SubscribeMessages registers a handler for every decoded message.
func (l *Link) SubscribeMessages(fn func(*codec.Message)) error {
	return l.bus.Subscribe(topicMessages, fn)
}

// Push feeds a chunk of raw bytes through parse, decode and fan-out.
// Useful when the caller owns the read loop; Run wraps it for sources.
func (l *Link) Push(chunk []byte) {
	for _, f := range l.parser.Push(chunk) {
		l.bus.Publish(topicFrames, f)
		msg, err := l.decoder.Decode(f)
		if err != nil {
			// The parser only emits ids it resolved, so this means the
			// registry and parser disagree; worth a log, never a stop.
			Logger().Warn("decode after validation failed",
				zap.Uint32("msgid", f.MsgID), zap.Error(err))
			continue
		}
		l.bus.Publish(topicMessages, msg)
	}
}

// Run connects the source and pumps it until the stream ends or ctx is
// canceled. Per-frame problems never stop the pump; they only move the
// counters.
func (l *Link) Run(ctx context.Context, src mavwire.ByteSource) error {
	if err := src.Connect(ctx); err != nil {
		return err
	}
	defer src.Close()

	Logger().Info("link started", zap.Int("messages", l.reg.Len()))
	defer func() {
		s := l.parser.Stats()
		Logger().Info("link stopped",
			zap.Uint64("received", s.FramesReceived),
			zap.Uint64("crc_errors", s.CrcErrors),
			zap.Uint64("unknown", s.UnknownMessages))
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case chunk, ok := <-src.Chunks():
			if !ok {
				return nil
			}
			l.Push(chunk)
		}
	}
}

// Encode builds wire bytes for the named message. Sequence numbering is
// per-link.
func (l *Link) Encode(name string, values map[string]any) ([]byte, error) {
	return l.builder.Encode(name, values)
}

// EncodeID is Encode keyed by message id.
func (l *Link) EncodeID(id uint32, values map[string]any) ([]byte, error) {
	return l.builder.EncodeID(id, values)
}

// Send encodes the named message and writes it to the sink.
func (l *Link) Send(sink mavwire.ByteSink, name string, values map[string]any) error {
	out, err := l.builder.Encode(name, values)
	if err != nil {
		return err
	}
	_, err = sink.Write(out)
	return err
}

// Stats snapshots the parser counters.
func (l *Link) Stats() wire.Stats {
	return l.parser.Stats()
}
