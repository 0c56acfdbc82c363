// Package wire implements the byte-level frame layer: a streaming parser
// that reassembles and validates frames from arbitrary input chunks, and a
// builder that encodes field-value maps into extended-format frames.
//
// The parser is a strictly sequential state machine with no backtracking.
// Unrecognized bytes between frames are discarded for resynchronization,
// and per-frame failures (unknown message id, checksum mismatch) are
// absorbed into running counters rather than surfaced as errors; a lossy
// high-frequency stream produces aggregate observability, not per-frame
// notifications.
package wire
