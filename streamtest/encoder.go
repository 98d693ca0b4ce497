package streamtest

import (
	"context"

	"github.com/ddrp-org/destream"
	"github.com/pkg/errors"
)

// Encoder records pushed values as a token list. Tokens are appended as
// calls arrive, so a partially failed encode leaves the prefix that was
// produced before the failure.
type Encoder struct {
	tokens []Token
}

var _ destream.Encoder = (*Encoder)(nil)

func NewEncoder() *Encoder {
	return &Encoder{}
}

// Tokens returns the tokens recorded so far.
func (e *Encoder) Tokens() []Token {
	return e.tokens
}

func (e *Encoder) emit(ctx context.Context, tok Token) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	e.tokens = append(e.tokens, tok)
	return nil
}

func (e *Encoder) EncodeBool(ctx context.Context, v bool) error {
	return e.emit(ctx, Bool(v))
}

func (e *Encoder) EncodeInt8(ctx context.Context, v int8) error {
	return e.emit(ctx, I8(v))
}

func (e *Encoder) EncodeInt16(ctx context.Context, v int16) error {
	return e.emit(ctx, I16(v))
}

func (e *Encoder) EncodeInt32(ctx context.Context, v int32) error {
	return e.emit(ctx, I32(v))
}

func (e *Encoder) EncodeInt64(ctx context.Context, v int64) error {
	return e.emit(ctx, I64(v))
}

func (e *Encoder) EncodeUint8(ctx context.Context, v uint8) error {
	return e.emit(ctx, U8(v))
}

func (e *Encoder) EncodeUint16(ctx context.Context, v uint16) error {
	return e.emit(ctx, U16(v))
}

func (e *Encoder) EncodeUint32(ctx context.Context, v uint32) error {
	return e.emit(ctx, U32(v))
}

func (e *Encoder) EncodeUint64(ctx context.Context, v uint64) error {
	return e.emit(ctx, U64(v))
}

func (e *Encoder) EncodeFloat32(ctx context.Context, v float32) error {
	return e.emit(ctx, F32(v))
}

func (e *Encoder) EncodeFloat64(ctx context.Context, v float64) error {
	return e.emit(ctx, F64(v))
}

func (e *Encoder) EncodeString(ctx context.Context, v string) error {
	return e.emit(ctx, Str(v))
}

func (e *Encoder) EncodeBytes(ctx context.Context, v []byte) error {
	return e.emit(ctx, Blob(v))
}

func (e *Encoder) EncodeNone(ctx context.Context) error {
	return e.emit(ctx, None())
}

func (e *Encoder) EncodeSome(ctx context.Context, v destream.ToStream) error {
	if err := e.emit(ctx, Some()); err != nil {
		return err
	}
	return v.ToStream(ctx, e)
}

func (e *Encoder) EncodeUnit(ctx context.Context) error {
	return e.emit(ctx, Unit())
}

func (e *Encoder) EncodeSeq(ctx context.Context, size int) (destream.EncodeSeq, error) {
	if err := e.emit(ctx, Seq(size)); err != nil {
		return nil, err
	}
	return &encodeSeq{e: e, end: SeqEnd()}, nil
}

func (e *Encoder) EncodeTuple(ctx context.Context, size int) (destream.EncodeTuple, error) {
	if err := e.emit(ctx, Tuple(size)); err != nil {
		return nil, err
	}
	return &encodeSeq{e: e, end: TupleEnd()}, nil
}

func (e *Encoder) EncodeMap(ctx context.Context, size int) (destream.EncodeMap, error) {
	if err := e.emit(ctx, MapStart(size)); err != nil {
		return nil, err
	}
	return &encodeMap{e: e}, nil
}

type encodeSeq struct {
	e    *Encoder
	end  Token
	done bool
}

func (s *encodeSeq) EncodeElement(ctx context.Context, v destream.ToStream) error {
	if s.done {
		return errors.New("EncodeElement called after End")
	}
	return v.ToStream(ctx, s.e)
}

func (s *encodeSeq) End(ctx context.Context) error {
	if s.done {
		return errors.New("End called twice")
	}
	s.done = true
	return s.e.emit(ctx, s.end)
}

type encodeMap struct {
	e           *Encoder
	done        bool
	expectValue bool
}

func (m *encodeMap) EncodeKey(ctx context.Context, k destream.ToStream) error {
	if m.done {
		return errors.New("EncodeKey called after End")
	}
	if m.expectValue {
		return errors.New("EncodeKey called with a value outstanding")
	}
	if err := k.ToStream(ctx, m.e); err != nil {
		return err
	}
	m.expectValue = true
	return nil
}

func (m *encodeMap) EncodeValue(ctx context.Context, v destream.ToStream) error {
	if m.done {
		return errors.New("EncodeValue called after End")
	}
	if !m.expectValue {
		return errors.New("EncodeValue called without a preceding EncodeKey")
	}
	m.expectValue = false
	return v.ToStream(ctx, m.e)
}

// EncodeEntry writes a key and value back to back, exercising the entry
// fast path of destream.EncodeEntry.
func (m *encodeMap) EncodeEntry(ctx context.Context, k, v destream.ToStream) error {
	if err := m.EncodeKey(ctx, k); err != nil {
		return err
	}
	return m.EncodeValue(ctx, v)
}

func (m *encodeMap) End(ctx context.Context) error {
	if m.done {
		return errors.New("End called twice")
	}
	if m.expectValue {
		return errors.New("End called with a value outstanding")
	}
	m.done = true
	return m.e.emit(ctx, MapEnd())
}
