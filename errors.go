package weave

import (
	"errors"
	"fmt"
)

// Sentinel errors for pattern and buffer validation. Structured errors
// returned by this package match them with errors.Is.
var (
	// ErrInvalidSize is returned when a pattern size is not positive.
	ErrInvalidSize = errors.New("weave: pattern size must be positive")

	// ErrSizeMismatch is returned when a sequence length differs from the
	// declared pattern size.
	ErrSizeMismatch = errors.New("weave: pattern length does not match size")

	// ErrInvalidRange is returned when a pattern element is outside [1, size]
	// or is not an integer.
	ErrInvalidRange = errors.New("weave: pattern value out of range")

	// ErrDuplicateValue is returned when a pattern element repeats an
	// earlier value.
	ErrDuplicateValue = errors.New("weave: duplicate pattern value")

	// ErrEmptyBuffer is returned when a pixel buffer has no pixels.
	ErrEmptyBuffer = errors.New("weave: empty pixel buffer")
)

// PatternError reports a pattern definition that failed validation.
// Kind is one of ErrInvalidSize, ErrSizeMismatch, ErrInvalidRange or
// ErrDuplicateValue, so errors.Is(err, weave.ErrDuplicateValue) selects
// on the failure kind while Index and Value identify the offending element.
type PatternError struct {
	Kind  error
	Size  int // declared pattern size
	Index int // zero-based index of the offending element, -1 if none
	Value int // offending value; the sequence length for ErrSizeMismatch
}

func (e *PatternError) Error() string {
	switch e.Kind {
	case ErrInvalidSize:
		return fmt.Sprintf("weave: pattern size %d, want at least 1", e.Size)
	case ErrSizeMismatch:
		return fmt.Sprintf("weave: pattern has %d values, want %d", e.Value, e.Size)
	case ErrInvalidRange:
		return fmt.Sprintf("weave: pattern[%d] = %d, want a value in [1, %d]", e.Index, e.Value, e.Size)
	case ErrDuplicateValue:
		return fmt.Sprintf("weave: pattern[%d] = %d repeats an earlier value", e.Index, e.Value)
	default:
		return "weave: invalid pattern"
	}
}

func (e *PatternError) Unwrap() error { return e.Kind }

// BufferError reports a pixel buffer that cannot be processed.
// It wraps ErrEmptyBuffer.
type BufferError struct {
	Width  int
	Height int
}

func (e *BufferError) Error() string {
	return fmt.Sprintf("weave: buffer %dx%d has no pixels", e.Width, e.Height)
}

func (e *BufferError) Unwrap() error { return ErrEmptyBuffer }
