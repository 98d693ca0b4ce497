package destream

import (
	"context"
)

// Context carries per-type auxiliary decoding state, used by types whose
// values may be too large to hold entirely in memory. A type fixes its
// context type once; types intended to be stored entirely in memory use a
// nil Context. Cursors forward the element type's context unchanged and
// never inspect it.
type Context any

// FromStream is implemented by types that can decode themselves from any
// supported stream format. It is ordinarily implemented on a pointer
// receiver: a successful call fills the receiver in place.
//
// An implementation calls exactly one Decoder hint method matching its own
// shape and supplies a Visitor for it.
type FromStream interface {
	FromStream(ctx context.Context, cxt Context, dec Decoder) error
}

// Decoder is a data format that can decode a well-formatted stream by
// driving one Visitor per value.
//
// Each hint method parses the minimal stream prefix needed to recognize a
// value of the named shape and invokes the single matching Visitor callback,
// or constructs a cursor for compound shapes. A hint that cannot interpret
// the next token as the requested shape fails with an invalid type error.
//
// A Decoder owns the current read position of its stream; only one hint call
// may be outstanding at a time, and a Decoder must not be reused after its
// top-level decode returns. Every hint call is a suspension point and should
// honor ctx cancellation while waiting for input.
type Decoder interface {
	// DecodeAny asks the format to determine the shape of the next value
	// itself. Only self-describing formats can support this hint; others
	// may fail it while remaining compliant for all fixed-shape hints.
	DecodeAny(ctx context.Context, v Visitor) (any, error)

	DecodeBool(ctx context.Context, v Visitor) (any, error)

	DecodeInt8(ctx context.Context, v Visitor) (any, error)
	DecodeInt16(ctx context.Context, v Visitor) (any, error)
	DecodeInt32(ctx context.Context, v Visitor) (any, error)
	DecodeInt64(ctx context.Context, v Visitor) (any, error)

	DecodeUint8(ctx context.Context, v Visitor) (any, error)
	DecodeUint16(ctx context.Context, v Visitor) (any, error)
	DecodeUint32(ctx context.Context, v Visitor) (any, error)
	DecodeUint64(ctx context.Context, v Visitor) (any, error)

	DecodeFloat32(ctx context.Context, v Visitor) (any, error)
	DecodeFloat64(ctx context.Context, v Visitor) (any, error)

	DecodeString(ctx context.Context, v Visitor) (any, error)

	// DecodeBytes hints that a byte buffer is expected. The format invokes
	// VisitBytes with an ArrayAccess so the buffer can be consumed in
	// caller-sized chunks regardless of its total length.
	DecodeBytes(ctx context.Context, v Visitor) (any, error)

	// DecodeOption hints that an optional value is expected. Formats that
	// encode an absent value as null invoke VisitNone for it and VisitSome
	// for a present value.
	DecodeOption(ctx context.Context, v Visitor) (any, error)

	DecodeSeq(ctx context.Context, v Visitor) (any, error)

	// DecodeTuple hints that a sequence of exactly size elements is
	// expected, known without looking at the encoded data. This lets
	// non-self-describing formats omit a length prefix.
	DecodeTuple(ctx context.Context, size int, v Visitor) (any, error)

	DecodeMap(ctx context.Context, v Visitor) (any, error)

	DecodeUnit(ctx context.Context, v Visitor) (any, error)

	// DecodeIgnoredAny consumes and discards the next value, whatever its
	// shape. Non-self-describing formats may not support this hint.
	DecodeIgnoredAny(ctx context.Context, v Visitor) (any, error)
}

// SeqAccess gives a Visitor stream-ordered pull access to the elements of
// one sequence, valid only for the duration of that sequence's decode.
type SeqAccess interface {
	// NextElement decodes the next element of the sequence into elem using
	// cxt as elem's decoding context, and reports whether an element was
	// present. It returns false exactly at the end of the sequence, and
	// keeps returning false if called again past exhaustion.
	//
	// The element type is chosen by the caller, not by the cursor.
	NextElement(ctx context.Context, cxt Context, elem FromStream) (bool, error)

	// SizeHint returns the number of elements remaining, if known. It is a
	// capacity hint only: callers must loop until NextElement reports
	// exhaustion and must tolerate the hint being wrong or absent.
	SizeHint() (int, bool)
}

// MapAccess gives a Visitor stream-ordered pull access to the entries of one
// map. NextKey and NextValue must strictly alternate; calling NextValue
// without a preceding NextKey is caller error with implementation-defined
// (but memory-safe) consequences. End-of-map is signaled only by NextKey.
type MapAccess interface {
	NextKey(ctx context.Context, cxt Context, key FromStream) (bool, error)
	NextValue(ctx context.Context, cxt Context, value FromStream) error
	SizeHint() (int, bool)
}

// ArrayAccess is a chunked cursor over a byte buffer. It is the mechanism by
// which a byte sequence of unbounded size can be decoded in bounded memory.
type ArrayAccess interface {
	// Buffer fills p with the next bytes of the buffer and returns how many
	// were written. A return of 0 signals exhaustion.
	Buffer(ctx context.Context, p []byte) (int, error)
}

// Visitor defines what to do with exactly one shape of decoded value.
// A Visitor is single-use: the one callback invoked on it consumes it.
//
// Only the widest callback of each numeric family is required. A format
// always reports the most accurate width it parsed through the package
// dispatch helpers (VisitInt8 and friends), which forward to the widest
// required callback unless the Visitor also implements the matching
// narrow-width interface.
//
// Embed a VisitorBase to inherit default implementations that fail with an
// invalid type error naming the expected shape, and override only the
// callbacks the Visitor actually accepts.
type Visitor interface {
	// Expecting describes the shape this Visitor expects to receive. It is
	// used only in error messages, completes the sentence "expected ...",
	// and should not be capitalized or end with a period.
	Expecting() string

	VisitBool(v bool) (any, error)
	VisitInt64(v int64) (any, error)
	VisitUint64(v uint64) (any, error)
	VisitFloat64(v float64) (any, error)
	VisitString(v string) (any, error)

	// VisitUnit receives the empty value.
	VisitUnit() (any, error)

	// VisitNone receives an absent optional.
	VisitNone() (any, error)

	// VisitSome receives a present optional; the value itself has not been
	// parsed yet and is read from dec.
	VisitSome(ctx context.Context, dec Decoder) (any, error)

	// VisitSeq receives a sequence cursor. The cursor is valid only until
	// VisitSeq returns.
	VisitSeq(ctx context.Context, seq SeqAccess) (any, error)

	// VisitMap receives a map cursor. The cursor is valid only until
	// VisitMap returns.
	VisitMap(ctx context.Context, m MapAccess) (any, error)

	// VisitBytes receives a chunked byte-buffer cursor.
	VisitBytes(ctx context.Context, a ArrayAccess) (any, error)
}

// Narrow-width numeric callbacks. A Visitor may implement any of these to
// receive the exact width the format parsed; otherwise the dispatch helpers
// widen to the required 64-bit callback.

type Int8Visitor interface {
	VisitInt8(v int8) (any, error)
}

type Int16Visitor interface {
	VisitInt16(v int16) (any, error)
}

type Int32Visitor interface {
	VisitInt32(v int32) (any, error)
}

type Uint8Visitor interface {
	VisitUint8(v uint8) (any, error)
}

type Uint16Visitor interface {
	VisitUint16(v uint16) (any, error)
}

type Uint32Visitor interface {
	VisitUint32(v uint32) (any, error)
}

type Float32Visitor interface {
	VisitFloat32(v float32) (any, error)
}

// VisitInt8 delivers an int8 to v at the most accurate width it supports.
// Formats should call this instead of widening themselves.
func VisitInt8(v Visitor, x int8) (any, error) {
	if nv, ok := v.(Int8Visitor); ok {
		return nv.VisitInt8(x)
	}
	return v.VisitInt64(int64(x))
}

// VisitInt16 delivers an int16 to v at the most accurate width it supports.
func VisitInt16(v Visitor, x int16) (any, error) {
	if nv, ok := v.(Int16Visitor); ok {
		return nv.VisitInt16(x)
	}
	return v.VisitInt64(int64(x))
}

// VisitInt32 delivers an int32 to v at the most accurate width it supports.
func VisitInt32(v Visitor, x int32) (any, error) {
	if nv, ok := v.(Int32Visitor); ok {
		return nv.VisitInt32(x)
	}
	return v.VisitInt64(int64(x))
}

// VisitUint8 delivers a uint8 to v at the most accurate width it supports.
func VisitUint8(v Visitor, x uint8) (any, error) {
	if nv, ok := v.(Uint8Visitor); ok {
		return nv.VisitUint8(x)
	}
	return v.VisitUint64(uint64(x))
}

// VisitUint16 delivers a uint16 to v at the most accurate width it supports.
func VisitUint16(v Visitor, x uint16) (any, error) {
	if nv, ok := v.(Uint16Visitor); ok {
		return nv.VisitUint16(x)
	}
	return v.VisitUint64(uint64(x))
}

// VisitUint32 delivers a uint32 to v at the most accurate width it supports.
func VisitUint32(v Visitor, x uint32) (any, error) {
	if nv, ok := v.(Uint32Visitor); ok {
		return nv.VisitUint32(x)
	}
	return v.VisitUint64(uint64(x))
}

// VisitFloat32 delivers a float32 to v at the most accurate width it
// supports.
func VisitFloat32(v Visitor, x float32) (any, error) {
	if nv, ok := v.(Float32Visitor); ok {
		return nv.VisitFloat32(x)
	}
	return v.VisitFloat64(float64(x))
}

// VisitorBase provides default implementations for every required Visitor
// callback, each failing with an invalid type error that names Expects.
// Embed it and override the callbacks the Visitor accepts.
type VisitorBase struct {
	Expects string
}

func (b VisitorBase) Expecting() string {
	if b.Expects == "" {
		return "a value"
	}
	return b.Expects
}

func (b VisitorBase) VisitBool(v bool) (any, error) {
	return nil, InvalidType(v, b.Expecting())
}

func (b VisitorBase) VisitInt64(v int64) (any, error) {
	return nil, InvalidType(v, b.Expecting())
}

func (b VisitorBase) VisitUint64(v uint64) (any, error) {
	return nil, InvalidType(v, b.Expecting())
}

func (b VisitorBase) VisitFloat64(v float64) (any, error) {
	return nil, InvalidType(v, b.Expecting())
}

func (b VisitorBase) VisitString(v string) (any, error) {
	return nil, InvalidType(v, b.Expecting())
}

func (b VisitorBase) VisitUnit() (any, error) {
	return nil, InvalidType("unit", b.Expecting())
}

func (b VisitorBase) VisitNone() (any, error) {
	return nil, InvalidType("none", b.Expecting())
}

func (b VisitorBase) VisitSome(ctx context.Context, dec Decoder) (any, error) {
	return nil, InvalidType("some", b.Expecting())
}

func (b VisitorBase) VisitSeq(ctx context.Context, seq SeqAccess) (any, error) {
	return nil, InvalidType("sequence", b.Expecting())
}

func (b VisitorBase) VisitMap(ctx context.Context, m MapAccess) (any, error) {
	return nil, InvalidType("map", b.Expecting())
}

func (b VisitorBase) VisitBytes(ctx context.Context, a ArrayAccess) (any, error) {
	return nil, InvalidType("(byte array)", b.Expecting())
}

// IgnoredAny decodes and discards a value of any shape. It is used to skip
// unwanted record fields without retaining their contents; only
// self-describing formats can drive it.
type IgnoredAny struct{}

var _ FromStream = IgnoredAny{}
var _ Visitor = IgnoredAny{}

func (IgnoredAny) FromStream(ctx context.Context, _ Context, dec Decoder) error {
	_, err := dec.DecodeIgnoredAny(ctx, IgnoredAny{})
	return err
}

func (IgnoredAny) Expecting() string {
	return "anything at all"
}

func (IgnoredAny) VisitBool(bool) (any, error)       { return nil, nil }
func (IgnoredAny) VisitInt64(int64) (any, error)     { return nil, nil }
func (IgnoredAny) VisitUint64(uint64) (any, error)   { return nil, nil }
func (IgnoredAny) VisitFloat64(float64) (any, error) { return nil, nil }
func (IgnoredAny) VisitString(string) (any, error)   { return nil, nil }
func (IgnoredAny) VisitUnit() (any, error)           { return nil, nil }
func (IgnoredAny) VisitNone() (any, error)           { return nil, nil }

func (IgnoredAny) VisitSome(ctx context.Context, dec Decoder) (any, error) {
	return dec.DecodeIgnoredAny(ctx, IgnoredAny{})
}

func (IgnoredAny) VisitSeq(ctx context.Context, seq SeqAccess) (any, error) {
	for {
		ok, err := seq.NextElement(ctx, nil, IgnoredAny{})
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
	}
}

func (IgnoredAny) VisitMap(ctx context.Context, m MapAccess) (any, error) {
	for {
		ok, err := m.NextKey(ctx, nil, IgnoredAny{})
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, nil
		}
		if err := m.NextValue(ctx, nil, IgnoredAny{}); err != nil {
			return nil, err
		}
	}
}

func (IgnoredAny) VisitBytes(ctx context.Context, a ArrayAccess) (any, error) {
	var buf [512]byte
	for {
		n, err := a.Buffer(ctx, buf[:])
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, nil
		}
	}
}
