// Package streamtest provides an in-memory, token-based codec implementing
// the destream Decoder and Encoder contracts. It exists so that data types
// and the protocol itself can be tested without a wire format: encoding
// produces a flat token list, decoding consumes one.
//
// The default decoder is self-describing. NewStrictDecoder returns one that
// fails the DecodeAny and DecodeIgnoredAny hints the way a
// non-self-describing format legitimately may, while supporting every named
// shape hint.
package streamtest

import "fmt"

type TokenKind int

const (
	KindBool TokenKind = iota
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
	KindString
	KindBytes
	KindNone
	KindSome
	KindUnit
	KindSeq
	KindSeqEnd
	KindMap
	KindMapEnd
	KindTuple
	KindTupleEnd
)

func (k TokenKind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInt8:
		return "i8"
	case KindInt16:
		return "i16"
	case KindInt32:
		return "i32"
	case KindInt64:
		return "i64"
	case KindUint8:
		return "u8"
	case KindUint16:
		return "u16"
	case KindUint32:
		return "u32"
	case KindUint64:
		return "u64"
	case KindFloat32:
		return "f32"
	case KindFloat64:
		return "f64"
	case KindString:
		return "string"
	case KindBytes:
		return "bytes"
	case KindNone:
		return "none"
	case KindSome:
		return "some"
	case KindUnit:
		return "unit"
	case KindSeq:
		return "seq"
	case KindSeqEnd:
		return "seq end"
	case KindMap:
		return "map"
	case KindMapEnd:
		return "map end"
	case KindTuple:
		return "tuple"
	case KindTupleEnd:
		return "tuple end"
	default:
		panic("invalid token kind")
	}
}

// Token is one atom of the streamtest encoding. Exactly the fields relevant
// to Kind are set; Size is the declared element count of a compound token,
// negative when unknown.
type Token struct {
	Kind  TokenKind
	Bool  bool
	Int   int64
	Uint  uint64
	Float float64
	Str   string
	Data  []byte
	Size  int
}

func (t Token) String() string {
	switch t.Kind {
	case KindBool:
		return fmt.Sprintf("bool(%v)", t.Bool)
	case KindInt8, KindInt16, KindInt32, KindInt64:
		return fmt.Sprintf("%s(%d)", t.Kind, t.Int)
	case KindUint8, KindUint16, KindUint32, KindUint64:
		return fmt.Sprintf("%s(%d)", t.Kind, t.Uint)
	case KindFloat32, KindFloat64:
		return fmt.Sprintf("%s(%g)", t.Kind, t.Float)
	case KindString:
		return fmt.Sprintf("string(%q)", t.Str)
	case KindBytes:
		return fmt.Sprintf("bytes(%d)", len(t.Data))
	case KindSeq, KindMap, KindTuple:
		return fmt.Sprintf("%s(%d)", t.Kind, t.Size)
	default:
		return t.Kind.String()
	}
}

func Bool(v bool) Token       { return Token{Kind: KindBool, Bool: v} }
func I8(v int8) Token         { return Token{Kind: KindInt8, Int: int64(v)} }
func I16(v int16) Token       { return Token{Kind: KindInt16, Int: int64(v)} }
func I32(v int32) Token       { return Token{Kind: KindInt32, Int: int64(v)} }
func I64(v int64) Token       { return Token{Kind: KindInt64, Int: v} }
func U8(v uint8) Token        { return Token{Kind: KindUint8, Uint: uint64(v)} }
func U16(v uint16) Token      { return Token{Kind: KindUint16, Uint: uint64(v)} }
func U32(v uint32) Token      { return Token{Kind: KindUint32, Uint: uint64(v)} }
func U64(v uint64) Token      { return Token{Kind: KindUint64, Uint: v} }
func F32(v float32) Token     { return Token{Kind: KindFloat32, Float: float64(v)} }
func F64(v float64) Token     { return Token{Kind: KindFloat64, Float: v} }
func Str(v string) Token      { return Token{Kind: KindString, Str: v} }
func Blob(v []byte) Token     { return Token{Kind: KindBytes, Data: v} }
func None() Token             { return Token{Kind: KindNone} }
func Some() Token             { return Token{Kind: KindSome} }
func Unit() Token             { return Token{Kind: KindUnit} }
func Seq(size int) Token      { return Token{Kind: KindSeq, Size: size} }
func SeqEnd() Token           { return Token{Kind: KindSeqEnd} }
func MapStart(size int) Token { return Token{Kind: KindMap, Size: size} }
func MapEnd() Token           { return Token{Kind: KindMapEnd} }
func Tuple(size int) Token    { return Token{Kind: KindTuple, Size: size} }
func TupleEnd() Token         { return Token{Kind: KindTupleEnd} }
