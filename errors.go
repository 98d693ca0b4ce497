package destream

import (
	"errors"
	"fmt"
)

// ErrorKind identifies one of the closed set of decode/encode failure
// categories. Every kind reduces to KindCustom plus a message, so a format
// only needs to produce Custom errors to be compliant.
type ErrorKind int

const (
	KindCustom ErrorKind = iota
	KindInvalidType
	KindInvalidValue
	KindInvalidLength
	KindMissingField
	KindDuplicateField
	KindUnknownField
)

func (k ErrorKind) String() string {
	switch k {
	case KindCustom:
		return "custom"
	case KindInvalidType:
		return "invalid type"
	case KindInvalidValue:
		return "invalid value"
	case KindInvalidLength:
		return "invalid length"
	case KindMissingField:
		return "missing field"
	case KindDuplicateField:
		return "duplicate field"
	case KindUnknownField:
		return "unknown field"
	default:
		panic("invalid error kind")
	}
}

// Error is the error type produced by Decoders, Encoders and the value
// layer. It carries exactly one ErrorKind and a human-readable message.
// Error values carry no recovery state: the only lawful action on receipt
// is to abort the operation and report.
type Error struct {
	Kind ErrorKind
	msg  string
}

func (e *Error) Error() string {
	return e.msg
}

// Custom returns a generic decode/encode failure. The message should not be
// capitalized and should not end with a period.
func Custom(format string, args ...any) *Error {
	return &Error{Kind: KindCustom, msg: fmt.Sprintf(format, args...)}
}

// InvalidType is raised when a Visitor receives a shape different from what
// it was expecting.
func InvalidType(unexpected any, expecting string) *Error {
	return &Error{
		Kind: KindInvalidType,
		msg:  fmt.Sprintf("invalid type: %v, expected %s", unexpected, expecting),
	}
}

// InvalidValue is raised when a Visitor receives a value of the right shape
// whose content is wrong for some other reason.
func InvalidValue(unexpected any, expecting string) *Error {
	return &Error{
		Kind: KindInvalidValue,
		msg:  fmt.Sprintf("invalid value: %v, expected %s", unexpected, expecting),
	}
}

// InvalidLength is raised when a fixed-arity compound receives the wrong
// number of elements.
func InvalidLength(length int, expecting string) *Error {
	return &Error{
		Kind: KindInvalidLength,
		msg:  fmt.Sprintf("invalid length: %d, expected %s", length, expecting),
	}
}

// MissingField is raised when a record field is absent at the end of its map.
func MissingField(name string) *Error {
	return &Error{Kind: KindMissingField, msg: fmt.Sprintf("missing field %q", name)}
}

// DuplicateField is raised when a record field appears more than once.
func DuplicateField(name string) *Error {
	return &Error{Kind: KindDuplicateField, msg: fmt.Sprintf("duplicate field %q", name)}
}

// UnknownField is raised when a record receives a field it does not declare
// and the codec is configured to reject unknown fields.
func UnknownField(name string) *Error {
	return &Error{Kind: KindUnknownField, msg: fmt.Sprintf("unknown field %q", name)}
}

// KindOf returns the ErrorKind of err, unwrapping as needed. Errors that did
// not originate from this package report KindCustom.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindCustom
}
