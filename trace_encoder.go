package destream

import (
	"context"

	"github.com/ddrp-org/destream/log"
)

// TraceEncoder wraps enc so that every encode call and builder push is
// logged at trace level.
func TraceEncoder(enc Encoder, lgr log.Logger) Encoder {
	return &traceEncoder{enc: enc, lgr: lgr}
}

type traceEncoder struct {
	enc Encoder
	lgr log.Logger
}

func (t *traceEncoder) push(shape string) {
	t.lgr.Trace("encode", "shape", shape)
}

func (t *traceEncoder) EncodeBool(ctx context.Context, v bool) error {
	t.push("bool")
	return t.enc.EncodeBool(ctx, v)
}

func (t *traceEncoder) EncodeInt8(ctx context.Context, v int8) error {
	t.push("i8")
	return t.enc.EncodeInt8(ctx, v)
}

func (t *traceEncoder) EncodeInt16(ctx context.Context, v int16) error {
	t.push("i16")
	return t.enc.EncodeInt16(ctx, v)
}

func (t *traceEncoder) EncodeInt32(ctx context.Context, v int32) error {
	t.push("i32")
	return t.enc.EncodeInt32(ctx, v)
}

func (t *traceEncoder) EncodeInt64(ctx context.Context, v int64) error {
	t.push("i64")
	return t.enc.EncodeInt64(ctx, v)
}

func (t *traceEncoder) EncodeUint8(ctx context.Context, v uint8) error {
	t.push("u8")
	return t.enc.EncodeUint8(ctx, v)
}

func (t *traceEncoder) EncodeUint16(ctx context.Context, v uint16) error {
	t.push("u16")
	return t.enc.EncodeUint16(ctx, v)
}

func (t *traceEncoder) EncodeUint32(ctx context.Context, v uint32) error {
	t.push("u32")
	return t.enc.EncodeUint32(ctx, v)
}

func (t *traceEncoder) EncodeUint64(ctx context.Context, v uint64) error {
	t.push("u64")
	return t.enc.EncodeUint64(ctx, v)
}

func (t *traceEncoder) EncodeFloat32(ctx context.Context, v float32) error {
	t.push("f32")
	return t.enc.EncodeFloat32(ctx, v)
}

func (t *traceEncoder) EncodeFloat64(ctx context.Context, v float64) error {
	t.push("f64")
	return t.enc.EncodeFloat64(ctx, v)
}

func (t *traceEncoder) EncodeString(ctx context.Context, v string) error {
	t.push("string")
	return t.enc.EncodeString(ctx, v)
}

func (t *traceEncoder) EncodeBytes(ctx context.Context, v []byte) error {
	t.lgr.Trace("encode", "shape", "bytes", "len", len(v))
	return t.enc.EncodeBytes(ctx, v)
}

func (t *traceEncoder) EncodeNone(ctx context.Context) error {
	t.push("none")
	return t.enc.EncodeNone(ctx)
}

func (t *traceEncoder) EncodeSome(ctx context.Context, v ToStream) error {
	t.push("some")
	return t.enc.EncodeSome(ctx, traceStream{v: v, lgr: t.lgr})
}

func (t *traceEncoder) EncodeUnit(ctx context.Context) error {
	t.push("unit")
	return t.enc.EncodeUnit(ctx)
}

func (t *traceEncoder) EncodeSeq(ctx context.Context, size int) (EncodeSeq, error) {
	t.lgr.Trace("encode", "shape", "seq", "size", size)
	seq, err := t.enc.EncodeSeq(ctx, size)
	if err != nil {
		return nil, err
	}
	return &traceEncodeSeq{seq: seq, lgr: t.lgr}, nil
}

func (t *traceEncoder) EncodeMap(ctx context.Context, size int) (EncodeMap, error) {
	t.lgr.Trace("encode", "shape", "map", "size", size)
	m, err := t.enc.EncodeMap(ctx, size)
	if err != nil {
		return nil, err
	}
	return &traceEncodeMap{m: m, lgr: t.lgr}, nil
}

func (t *traceEncoder) EncodeTuple(ctx context.Context, size int) (EncodeTuple, error) {
	t.lgr.Trace("encode", "shape", "tuple", "size", size)
	tuple, err := t.enc.EncodeTuple(ctx, size)
	if err != nil {
		return nil, err
	}
	return &traceEncodeSeq{seq: tuple, lgr: t.lgr}, nil
}

// traceStream keeps nested values traced when they encode themselves.
type traceStream struct {
	v   ToStream
	lgr log.Logger
}

func (t traceStream) ToStream(ctx context.Context, enc Encoder) error {
	return t.v.ToStream(ctx, TraceEncoder(enc, t.lgr))
}

type traceEncodeSeq struct {
	seq interface {
		EncodeElement(ctx context.Context, v ToStream) error
		End(ctx context.Context) error
	}
	lgr log.Logger
	n   int
}

func (t *traceEncodeSeq) EncodeElement(ctx context.Context, v ToStream) error {
	t.n++
	return t.seq.EncodeElement(ctx, traceStream{v: v, lgr: t.lgr})
}

func (t *traceEncodeSeq) End(ctx context.Context) error {
	t.lgr.Trace("encode end", "elements", t.n)
	return t.seq.End(ctx)
}

type traceEncodeMap struct {
	m   EncodeMap
	lgr log.Logger
	n   int
}

func (t *traceEncodeMap) EncodeKey(ctx context.Context, k ToStream) error {
	t.n++
	return t.m.EncodeKey(ctx, traceStream{v: k, lgr: t.lgr})
}

func (t *traceEncodeMap) EncodeValue(ctx context.Context, v ToStream) error {
	return t.m.EncodeValue(ctx, traceStream{v: v, lgr: t.lgr})
}

func (t *traceEncodeMap) End(ctx context.Context) error {
	t.lgr.Trace("encode end", "entries", t.n)
	return t.m.End(ctx)
}
