package destream

import (
	"context"

	"github.com/ddrp-org/destream/log"
)

// TraceDecoder wraps dec so that every shape hint and cursor pull is logged
// at trace level. The wrapper is a pure pass-through otherwise and is meant
// for debugging format implementations.
func TraceDecoder(dec Decoder, lgr log.Logger) Decoder {
	return &traceDecoder{dec: dec, lgr: lgr}
}

type traceDecoder struct {
	dec Decoder
	lgr log.Logger
}

func (t *traceDecoder) hint(ctx context.Context, name string, v Visitor,
	fn func(context.Context, Visitor) (any, error)) (any, error) {
	t.lgr.Trace("decode hint", "hint", name, "expecting", v.Expecting())
	r, err := fn(ctx, &traceVisitor{v: v, lgr: t.lgr})
	if err != nil {
		t.lgr.Trace("decode hint failed", "hint", name, "err", err)
	}
	return r, err
}

func (t *traceDecoder) DecodeAny(ctx context.Context, v Visitor) (any, error) {
	return t.hint(ctx, "any", v, t.dec.DecodeAny)
}

func (t *traceDecoder) DecodeBool(ctx context.Context, v Visitor) (any, error) {
	return t.hint(ctx, "bool", v, t.dec.DecodeBool)
}

func (t *traceDecoder) DecodeInt8(ctx context.Context, v Visitor) (any, error) {
	return t.hint(ctx, "i8", v, t.dec.DecodeInt8)
}

func (t *traceDecoder) DecodeInt16(ctx context.Context, v Visitor) (any, error) {
	return t.hint(ctx, "i16", v, t.dec.DecodeInt16)
}

func (t *traceDecoder) DecodeInt32(ctx context.Context, v Visitor) (any, error) {
	return t.hint(ctx, "i32", v, t.dec.DecodeInt32)
}

func (t *traceDecoder) DecodeInt64(ctx context.Context, v Visitor) (any, error) {
	return t.hint(ctx, "i64", v, t.dec.DecodeInt64)
}

func (t *traceDecoder) DecodeUint8(ctx context.Context, v Visitor) (any, error) {
	return t.hint(ctx, "u8", v, t.dec.DecodeUint8)
}

func (t *traceDecoder) DecodeUint16(ctx context.Context, v Visitor) (any, error) {
	return t.hint(ctx, "u16", v, t.dec.DecodeUint16)
}

func (t *traceDecoder) DecodeUint32(ctx context.Context, v Visitor) (any, error) {
	return t.hint(ctx, "u32", v, t.dec.DecodeUint32)
}

func (t *traceDecoder) DecodeUint64(ctx context.Context, v Visitor) (any, error) {
	return t.hint(ctx, "u64", v, t.dec.DecodeUint64)
}

func (t *traceDecoder) DecodeFloat32(ctx context.Context, v Visitor) (any, error) {
	return t.hint(ctx, "f32", v, t.dec.DecodeFloat32)
}

func (t *traceDecoder) DecodeFloat64(ctx context.Context, v Visitor) (any, error) {
	return t.hint(ctx, "f64", v, t.dec.DecodeFloat64)
}

func (t *traceDecoder) DecodeString(ctx context.Context, v Visitor) (any, error) {
	return t.hint(ctx, "string", v, t.dec.DecodeString)
}

func (t *traceDecoder) DecodeBytes(ctx context.Context, v Visitor) (any, error) {
	return t.hint(ctx, "bytes", v, t.dec.DecodeBytes)
}

func (t *traceDecoder) DecodeOption(ctx context.Context, v Visitor) (any, error) {
	return t.hint(ctx, "option", v, t.dec.DecodeOption)
}

func (t *traceDecoder) DecodeSeq(ctx context.Context, v Visitor) (any, error) {
	return t.hint(ctx, "seq", v, t.dec.DecodeSeq)
}

func (t *traceDecoder) DecodeTuple(ctx context.Context, size int, v Visitor) (any, error) {
	return t.hint(ctx, "tuple", v, func(ctx context.Context, v Visitor) (any, error) {
		return t.dec.DecodeTuple(ctx, size, v)
	})
}

func (t *traceDecoder) DecodeMap(ctx context.Context, v Visitor) (any, error) {
	return t.hint(ctx, "map", v, t.dec.DecodeMap)
}

func (t *traceDecoder) DecodeUnit(ctx context.Context, v Visitor) (any, error) {
	return t.hint(ctx, "unit", v, t.dec.DecodeUnit)
}

func (t *traceDecoder) DecodeIgnoredAny(ctx context.Context, v Visitor) (any, error) {
	return t.hint(ctx, "ignored any", v, t.dec.DecodeIgnoredAny)
}

// traceVisitor forwards callbacks to the wrapped visitor, logging each one
// and keeping cursors traced. It implements every narrow-width interface and
// re-dispatches through the package helpers so the wrapped visitor's own
// width support still decides the forwarding.
type traceVisitor struct {
	v   Visitor
	lgr log.Logger
}

func (t *traceVisitor) visited(shape string) {
	t.lgr.Trace("visit", "shape", shape)
}

func (t *traceVisitor) Expecting() string {
	return t.v.Expecting()
}

func (t *traceVisitor) VisitBool(v bool) (any, error) {
	t.visited("bool")
	return t.v.VisitBool(v)
}

func (t *traceVisitor) VisitInt8(v int8) (any, error) {
	t.visited("i8")
	return VisitInt8(t.v, v)
}

func (t *traceVisitor) VisitInt16(v int16) (any, error) {
	t.visited("i16")
	return VisitInt16(t.v, v)
}

func (t *traceVisitor) VisitInt32(v int32) (any, error) {
	t.visited("i32")
	return VisitInt32(t.v, v)
}

func (t *traceVisitor) VisitInt64(v int64) (any, error) {
	t.visited("i64")
	return t.v.VisitInt64(v)
}

func (t *traceVisitor) VisitUint8(v uint8) (any, error) {
	t.visited("u8")
	return VisitUint8(t.v, v)
}

func (t *traceVisitor) VisitUint16(v uint16) (any, error) {
	t.visited("u16")
	return VisitUint16(t.v, v)
}

func (t *traceVisitor) VisitUint32(v uint32) (any, error) {
	t.visited("u32")
	return VisitUint32(t.v, v)
}

func (t *traceVisitor) VisitUint64(v uint64) (any, error) {
	t.visited("u64")
	return t.v.VisitUint64(v)
}

func (t *traceVisitor) VisitFloat32(v float32) (any, error) {
	t.visited("f32")
	return VisitFloat32(t.v, v)
}

func (t *traceVisitor) VisitFloat64(v float64) (any, error) {
	t.visited("f64")
	return t.v.VisitFloat64(v)
}

func (t *traceVisitor) VisitString(v string) (any, error) {
	t.visited("string")
	return t.v.VisitString(v)
}

func (t *traceVisitor) VisitUnit() (any, error) {
	t.visited("unit")
	return t.v.VisitUnit()
}

func (t *traceVisitor) VisitNone() (any, error) {
	t.visited("none")
	return t.v.VisitNone()
}

func (t *traceVisitor) VisitSome(ctx context.Context, dec Decoder) (any, error) {
	t.visited("some")
	return t.v.VisitSome(ctx, TraceDecoder(dec, t.lgr))
}

func (t *traceVisitor) VisitSeq(ctx context.Context, seq SeqAccess) (any, error) {
	t.visited("seq")
	return t.v.VisitSeq(ctx, &traceSeqAccess{seq: seq, lgr: t.lgr})
}

func (t *traceVisitor) VisitMap(ctx context.Context, m MapAccess) (any, error) {
	t.visited("map")
	return t.v.VisitMap(ctx, &traceMapAccess{m: m, lgr: t.lgr})
}

func (t *traceVisitor) VisitBytes(ctx context.Context, a ArrayAccess) (any, error) {
	t.visited("bytes")
	return t.v.VisitBytes(ctx, a)
}

type traceSeqAccess struct {
	seq SeqAccess
	lgr log.Logger
	n   int
}

func (t *traceSeqAccess) NextElement(ctx context.Context, cxt Context, elem FromStream) (bool, error) {
	ok, err := t.seq.NextElement(ctx, cxt, elem)
	if ok {
		t.n++
	} else if err == nil {
		t.lgr.Trace("sequence exhausted", "elements", t.n)
	}
	return ok, err
}

func (t *traceSeqAccess) SizeHint() (int, bool) {
	return t.seq.SizeHint()
}

type traceMapAccess struct {
	m   MapAccess
	lgr log.Logger
	n   int
}

func (t *traceMapAccess) NextKey(ctx context.Context, cxt Context, key FromStream) (bool, error) {
	ok, err := t.m.NextKey(ctx, cxt, key)
	if ok {
		t.n++
	} else if err == nil {
		t.lgr.Trace("map exhausted", "entries", t.n)
	}
	return ok, err
}

func (t *traceMapAccess) NextValue(ctx context.Context, cxt Context, value FromStream) error {
	return t.m.NextValue(ctx, cxt, value)
}

func (t *traceMapAccess) SizeHint() (int, bool) {
	return t.m.SizeHint()
}
