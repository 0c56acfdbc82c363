// Package dialect compiles protocol-definition documents into precise
// binary layout metadata and indexes the result for runtime lookup.
//
// A definition document declares enums and messages in XML. Compilation
// resolves includes recursively (cycle-safe, missing includes degrade to
// diagnostics), reorders each message's non-extension fields by descending
// scalar width, assigns contiguous byte offsets, and derives the one-byte
// integrity value (crc_extra) that every frame checksum folds in.
//
// The compiled Dialect can be snapshotted to a JSON Document and loaded
// back without re-parsing XML. A Registry indexes one or more dialects for
// O(1) lookup by message id, message name, and enum value; it is immutable
// and safe for unsynchronized concurrent reads.
package dialect
