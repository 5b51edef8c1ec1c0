package cast

import "errors"

// Decode and encode failures. Callers test with errors.Is; the returned errors
// wrap these with the stream offset or property name involved.
var (
	ErrBadMagic                   = errors.New("bad magic")
	ErrTruncatedStream            = errors.New("truncated stream")
	ErrUnknownPropertyType        = errors.New("unknown property type")
	ErrInvalidEncoding            = errors.New("invalid utf-8")
	ErrInconsistentPropertyLength = errors.New("inconsistent property length")
	ErrLengthMismatch             = errors.New("node length mismatch")

	// ErrUnresolvedReference is only returned by Resolve. Node accessors
	// report an unresolved hash as absence instead.
	ErrUnresolvedReference = errors.New("unresolved reference")
)
