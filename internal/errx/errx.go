// Package errx provides error kinds for the link service. Every layer wraps
// errors with the operation name and a Kind; the HTTP layer maps the Kind to a
// status code.
package errx

import (
	"errors"
	"fmt"
)

type Kind uint8

const (
	Unknown Kind = iota
	NotFound
	Conflict
	Invalid
	Unavailable
	Internal
)

type Error struct {
	Op   string
	Kind Kind
	Err  error
}

// E wraps err with op and kind. It returns nil when err is nil.
func E(op string, kind Kind, err error) error {
	if err == nil {
		return nil
	}
	return &Error{
		Op:   op,
		Kind: kind,
		Err:  err,
	}
}

// Wrap wraps err with op and keeps the kind already carried by err.
func Wrap(op string, err error) error {
	return E(op, KindOf(err), err)
}

// Errorf builds a new error of the given kind from a format string.
func Errorf(op string, kind Kind, format string, args ...any) error {
	return E(op, kind, fmt.Errorf(format, args...))
}

func (k Kind) String() string {
	switch k {
	case Unknown:
		return "Unknown"
	case NotFound:
		return "NotFound"
	case Conflict:
		return "Conflict"
	case Invalid:
		return "Invalid"
	case Unavailable:
		return "Unavailable"
	case Internal:
		return "Internal"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Op
	}
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the outermost Kind in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func OpOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Op
	}
	return ""
}
