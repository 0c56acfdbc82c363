package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseCompile Phase = "compile" // dialect compilation
	PhaseParse   Phase = "parse"   // frame stream parsing
	PhaseDecode  Phase = "decode"  // payload to field values
	PhaseEncode  Phase = "encode"  // field values to wire bytes
	PhaseLoad    Phase = "load"    // document loading
)

// Kind categorizes the error
type Kind string

const (
	KindStructuralParse   Kind = "structural_parse"
	KindUnresolvedInclude Kind = "unresolved_include"
	KindUnknownMessage    Kind = "unknown_message"
	KindCrcMismatch       Kind = "crc_mismatch"
	KindFieldDecode       Kind = "field_decode"
	KindInvalidInput      Kind = "invalid_input"
	KindNotFound          Kind = "not_found"
	KindOverflow          Kind = "overflow"
)

// Error is the structured error type used throughout the module
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the context path, e.g. message name then field name
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// StructuralParse creates a malformed-definition error. These are fatal
// to the compile call that produced them.
func StructuralParse(document, detail string, cause error) *Error {
	return &Error{
		Phase:  PhaseCompile,
		Kind:   KindStructuralParse,
		Path:   []string{document},
		Detail: detail,
		Cause:  cause,
	}
}

// UnresolvedInclude creates a diagnostic for an include that could not be
// resolved. Compilation proceeds without the include.
func UnresolvedInclude(name string, cause error) *Error {
	return &Error{
		Phase:  PhaseCompile,
		Kind:   KindUnresolvedInclude,
		Detail: fmt.Sprintf("include %q not resolved", name),
		Cause:  cause,
		Value:  name,
	}
}

// UnknownMessage creates an error for a message id absent from the registry
func UnknownMessage(phase Phase, id uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnknownMessage,
		Detail: fmt.Sprintf("message id %d not registered", id),
		Value:  id,
	}
}

// CrcMismatch creates a checksum mismatch error
func CrcMismatch(got, want uint16) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindCrcMismatch,
		Detail: fmt.Sprintf("checksum %#04x, computed %#04x", got, want),
		Value:  got,
	}
}

// FieldDecode creates a per-field decode error. The decoder absorbs these
// and continues with the remaining fields.
func FieldDecode(message, field string, cause error) *Error {
	return &Error{
		Phase: PhaseDecode,
		Kind:  KindFieldDecode,
		Path:  []string{message, field},
		Cause: cause,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// Overflow creates an overflow error for a value that does not fit its
// declared wire type
func Overflow(path []string, value any, targetType string) *Error {
	return &Error{
		Phase:  PhaseEncode,
		Kind:   KindOverflow,
		Path:   path,
		Detail: fmt.Sprintf("value %v overflows %s", value, targetType),
		Value:  value,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
