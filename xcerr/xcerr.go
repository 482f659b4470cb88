/*
NAME
  xcerr.go

DESCRIPTION
  xcerr defines the single result-carrying error type used throughout the
  bitstream codec. Every fallible operation in header, packet, register,
  frame and the codec/* packages returns (or wraps) an *Error so that a
  caller always gets a Kind plus an originating file:line, per the
  "single result type" error design.

AUTHORS
  The openfpga xc6bit contributors.
*/

// Package xcerr provides the Kind/Error pair used to report parse and
// emission failures with an originating source location.
package xcerr

import (
	"fmt"
	"runtime"

	"github.com/pkg/errors"
)

// Kind enumerates the fatal error classes a decode or encode operation may
// fail with.
type Kind int

const (
	_ Kind = iota
	BadHeader
	BadMagic
	ShortRead
	BadPacket
	BadRegister
	BadFar
	PayloadOverflow
	AllocFailed
	DefaultBitsMissing
	UnsupportedDevice
	InternalInvariant
)

func (k Kind) String() string {
	switch k {
	case BadHeader:
		return "BadHeader"
	case BadMagic:
		return "BadMagic"
	case ShortRead:
		return "ShortRead"
	case BadPacket:
		return "BadPacket"
	case BadRegister:
		return "BadRegister"
	case BadFar:
		return "BadFar"
	case PayloadOverflow:
		return "PayloadOverflow"
	case AllocFailed:
		return "AllocFailed"
	case DefaultBitsMissing:
		return "DefaultBitsMissing"
	case UnsupportedDevice:
		return "UnsupportedDevice"
	case InternalInvariant:
		return "InternalInvariant"
	default:
		return "Unknown"
	}
}

// Error is the result type carried by every fallible codec operation: a
// Kind, a message, the originating file:line, and an optional wrapped cause.
type Error struct {
	Kind  Kind
	Msg   string
	File  string
	Line  int
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s:%d: %s: %s: %v", e.File, e.Line, e.Kind, e.Msg, e.Cause)
	}
	return fmt.Sprintf("%s:%d: %s: %s", e.File, e.Line, e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns a new *Error of the given kind, capturing the caller's
// file:line.
func New(kind Kind, msg string) *Error {
	file, line := caller()
	return &Error{Kind: kind, Msg: msg, File: file, Line: line}
}

// Newf is New with fmt.Sprintf-style formatting.
func Newf(kind Kind, format string, args ...interface{}) *Error {
	file, line := caller()
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), File: file, Line: line}
}

// Wrap annotates cause with kind, msg and the caller's file:line. If cause is
// nil, Wrap returns nil, matching errors.Wrap's convention.
func Wrap(cause error, kind Kind, msg string) error {
	if cause == nil {
		return nil
	}
	file, line := caller()
	return &Error{Kind: kind, Msg: msg, File: file, Line: line, Cause: errors.WithStack(cause)}
}

// Wrapf is Wrap with fmt.Sprintf-style formatting.
func Wrapf(cause error, kind Kind, format string, args ...interface{}) error {
	if cause == nil {
		return nil
	}
	file, line := caller()
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...), File: file, Line: line, Cause: errors.WithStack(cause)}
}

// Is reports whether err is an *Error of the given Kind.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

func caller() (string, int) {
	_, file, line, ok := runtime.Caller(2)
	if !ok {
		return "unknown", 0
	}
	return file, line
}
