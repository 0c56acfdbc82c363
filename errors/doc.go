// Package errors provides structured error types for the mavwire module.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type includes rich context: a message/field path, the
// offending value, and a cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseCompile, errors.KindStructuralParse).
//		Path("common.xml").
//		Detail("message %q has no id attribute", name).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.UnknownMessage(errors.PhaseEncode, msgID)
//	err := errors.CrcMismatch(received, computed)
//
// All errors implement the standard error interface and support errors.Is/As.
//
// Compile-time errors surface synchronously to the caller. Runtime per-frame
// errors (unknown message, CRC mismatch, field decode failures) are absorbed
// into counters by the stream components and never interrupt the byte stream.
package errors
