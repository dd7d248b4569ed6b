package domain

import "errors"

// Kind classifies a failed conversion request.
type Kind int

const (
	KindInvalidInput Kind = iota + 1
	KindPayloadTooLarge
	KindConversionFailure
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindPayloadTooLarge:
		return "payload_too_large"
	case KindConversionFailure:
		return "conversion_failure"
	default:
		return "unknown"
	}
}

var (
	// ErrInvalidInput matches errors for unsupported or malformed uploads.
	ErrInvalidInput = errors.New("invalid input")
	// ErrPayloadTooLarge matches errors for uploads above the byte ceiling.
	ErrPayloadTooLarge = errors.New("payload too large")
	// ErrConversionFailure matches errors reported by the tracing engine.
	ErrConversionFailure = errors.New("conversion failure")
)

// Error is the failure half of a conversion outcome. Message is safe to show
// to clients; Err keeps the underlying cause, if any.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match an *Error against the sentinel of its kind.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrInvalidInput:
		return e.Kind == KindInvalidInput
	case ErrPayloadTooLarge:
		return e.Kind == KindPayloadTooLarge
	case ErrConversionFailure:
		return e.Kind == KindConversionFailure
	}
	return false
}

// InvalidInput builds a KindInvalidInput error.
func InvalidInput(msg string) *Error {
	return &Error{Kind: KindInvalidInput, Message: msg}
}

// PayloadTooLarge builds a KindPayloadTooLarge error.
func PayloadTooLarge(msg string) *Error {
	return &Error{Kind: KindPayloadTooLarge, Message: msg}
}

// ConversionFailure wraps an engine error. The engine message is kept verbatim.
func ConversionFailure(err error) *Error {
	return &Error{Kind: KindConversionFailure, Message: "Conversion failed: " + err.Error(), Err: err}
}

// KindOf returns the kind of err, or 0 when err is not a domain error.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}
