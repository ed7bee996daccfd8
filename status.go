package simdjson

import "github.com/kestrelstream/simdjson-go/internal/status"

// Status is the stable, integer-valued result code returned by every
// operation in this module (spec §6). It mirrors internal/status.Status so
// the Indexer and the reference Stage 2 can share the same values without
// exposing the internal package.
type Status = status.Status

const (
	StatusSuccess         = status.Success
	StatusCapacity        = status.Capacity
	StatusMemAlloc        = status.MemAlloc
	StatusTapeError       = status.TapeError
	StatusDepthError      = status.DepthError
	StatusStringError     = status.StringError
	StatusTAtomError      = status.TAtomError
	StatusFAtomError      = status.FAtomError
	StatusNAtomError      = status.NAtomError
	StatusNumberError     = status.NumberError
	StatusUTF8Error       = status.UTF8Error
	StatusUninitialized   = status.Uninitialized
	StatusEmpty           = status.Empty
	StatusUnescapedChars  = status.UnescapedChars
	StatusUnclosedString  = status.UnclosedString
	StatusUnexpectedError = status.UnexpectedError
)

// Error wraps a Status as a Go error, so callers who prefer errors.Is over
// switching on Status can do so.
type Error struct {
	Status Status
	// Context is an optional human-readable detail (e.g. the batch offset
	// at which the error occurred); it does not affect Is/Unwrap equality.
	Context string
}

func (e *Error) Error() string {
	if e.Context == "" {
		return "simdjson: " + e.Status.String()
	}
	return "simdjson: " + e.Status.String() + ": " + e.Context
}

// Is lets errors.Is(err, simdjson.ErrUnclosedString) match any *Error that
// carries the same Status, whatever its Context, by comparing on the wrapped
// status when the target is also an *Error.
func (e *Error) Is(target error) bool {
	other, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Status == other.Status
}

func newError(st Status, context string) error {
	if st == StatusSuccess {
		return nil
	}
	return &Error{Status: st, Context: context}
}

// sentinel errors for the common statuses, so callers can write
// errors.Is(err, simdjson.ErrUnclosedString) without constructing an Error.
var (
	ErrCapacity        = &Error{Status: StatusCapacity}
	ErrUnclosedString  = &Error{Status: StatusUnclosedString}
	ErrUnescapedChars  = &Error{Status: StatusUnescapedChars}
	ErrUTF8            = &Error{Status: StatusUTF8Error}
	ErrEmpty           = &Error{Status: StatusEmpty}
	ErrUnexpectedError = &Error{Status: StatusUnexpectedError}
	ErrDepth           = &Error{Status: StatusDepthError}
	ErrTape            = &Error{Status: StatusTapeError}
)
