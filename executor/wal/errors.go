package wal

import (
	"errors"
	"fmt"
)

// ErrorKind classifies failures of the log operations.
type ErrorKind int8

const (
	Unknown ErrorKind = iota
	// OpenFailed means the file could not be opened in the requested mode.
	OpenFailed
	// ShortIO means fewer bytes were written or read than requested, or the
	// write could not be completed (sync/close).
	ShortIO
	// IntegrityViolation is an implausible length or a checksum mismatch.
	// The Scanner reports it through ScanResult, never as a returned error.
	IntegrityViolation
	// TruncateFailed means the file could not be resized during recovery.
	TruncateFailed
	// InvalidRecord means the Writer refused a payload the Scanner would reject.
	InvalidRecord
)

func (k ErrorKind) String() string {
	switch k {
	case OpenFailed:
		return "OpenFailed"
	case ShortIO:
		return "ShortIO"
	case IntegrityViolation:
		return "IntegrityViolation"
	case TruncateFailed:
		return "TruncateFailed"
	case InvalidRecord:
		return "InvalidRecord"
	default:
		return "Unknown"
	}
}

// Sentinels for errors.Is comparisons, e.g. errors.Is(err, wal.ErrShortIO).
var (
	ErrOpenFailed         = &Error{Kind: OpenFailed}
	ErrShortIO            = &Error{Kind: ShortIO}
	ErrIntegrityViolation = &Error{Kind: IntegrityViolation}
	ErrTruncateFailed     = &Error{Kind: TruncateFailed}
	ErrInvalidRecord      = &Error{Kind: InvalidRecord}
)

// Error is returned by every operation of this package.
type Error struct {
	Kind ErrorKind
	Op   string
	Path string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	s := e.Kind.String()
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Path != "" {
		s += " " + e.Path
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports a match when target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the ErrorKind carried by err, or Unknown.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

func newError(kind ErrorKind, op, path string, err error, format string, args ...interface{}) *Error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{Kind: kind, Op: op, Path: path, Msg: msg, Err: err}
}
