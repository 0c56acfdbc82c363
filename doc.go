// Package mavwire is a metadata-driven binary protocol engine for a
// telemetry wire format: it compiles protocol-definition documents into
// precise layout metadata and uses that metadata to parse, validate,
// decode and encode frames on a byte stream.
//
// # Architecture Overview
//
// The module is organized into packages with distinct responsibilities:
//
//	mavwire/      Root package with the ByteSource transport boundary
//	├── dialect/  Definition-document compiler, metadata registry, and
//	│             the serializable metadata document
//	├── wire/     Streaming frame parser and frame builder
//	├── codec/    Payload decoder: bytes to named field values
//	├── link/     Runtime assembly: source -> parser -> decoder with
//	│             multi-subscriber fan-out and running counters
//	├── x25/      16-bit checksum shared by compiler, parser and builder
//	├── config/   TOML configuration for the command-line tools
//	└── errors/   Structured error types
//
// # Quick Start
//
// Compile a dialect once, then share the immutable registry:
//
//	resolver, root := dialect.FileResolver("definitions/common.xml")
//	d, err := dialect.NewCompiler(resolver).Compile(ctx, root)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	reg := dialect.NewRegistry(d)
//
// Feed raw bytes through a parser and decode what survives validation:
//
//	p := wire.NewParser(reg)
//	dec := codec.NewDecoder(reg, codec.WithEnumNames())
//	for _, f := range p.Push(chunk) {
//	    msg, _ := dec.Decode(f)
//	    fmt.Println(msg.Name, msg.Fields)
//	}
//
// # Thread Safety
//
// Compiled Dialect, Registry and Decoder values are immutable and safe
// for unsynchronized concurrent reads. Parser and Builder carry
// per-stream state and must each be driven by exactly one logical byte
// stream; give every independent stream its own instance.
//
// # Loss Tolerance
//
// Runtime per-frame problems never interrupt the stream. Unknown message
// ids, checksum mismatches and undecodable fields are absorbed into
// running counters or silently omitted fields; only compile-time errors
// surface to callers.
package mavwire
