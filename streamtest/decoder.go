package streamtest

import (
	"context"

	"github.com/ddrp-org/destream"
	"github.com/pkg/errors"
)

// Decoder drives destream Visitors from a token list. It is single-use:
// one decode session, tokens consumed in order.
type Decoder struct {
	tokens []Token
	pos    int
	strict bool
}

var _ destream.Decoder = (*Decoder)(nil)

// NewDecoder returns a self-describing decoder over tokens.
func NewDecoder(tokens ...Token) *Decoder {
	return &Decoder{tokens: tokens}
}

// NewStrictDecoder returns a decoder that fails DecodeAny and
// DecodeIgnoredAny, modeling a non-self-describing format. All named shape
// hints behave as in NewDecoder.
func NewStrictDecoder(tokens ...Token) *Decoder {
	return &Decoder{tokens: tokens, strict: true}
}

// Remaining reports how many tokens were not consumed. A complete decode of
// a well-formed token list leaves zero.
func (d *Decoder) Remaining() int {
	return len(d.tokens) - d.pos
}

func (d *Decoder) next(ctx context.Context) (Token, error) {
	if err := ctx.Err(); err != nil {
		return Token{}, err
	}
	if d.pos >= len(d.tokens) {
		return Token{}, destream.Custom("unexpected end of token stream")
	}
	tok := d.tokens[d.pos]
	d.pos++
	return tok, nil
}

func (d *Decoder) peek() (Token, bool) {
	if d.pos >= len(d.tokens) {
		return Token{}, false
	}
	return d.tokens[d.pos], true
}

func isNumeric(k TokenKind) bool {
	switch k {
	case KindInt8, KindInt16, KindInt32, KindInt64,
		KindUint8, KindUint16, KindUint32, KindUint64,
		KindFloat32, KindFloat64:
		return true
	default:
		return false
	}
}

// visitNumeric delivers tok at its own width through the dispatch helpers,
// so the Visitor's width support decides the widening.
func visitNumeric(tok Token, v destream.Visitor) (any, error) {
	switch tok.Kind {
	case KindInt8:
		return destream.VisitInt8(v, int8(tok.Int))
	case KindInt16:
		return destream.VisitInt16(v, int16(tok.Int))
	case KindInt32:
		return destream.VisitInt32(v, int32(tok.Int))
	case KindInt64:
		return v.VisitInt64(tok.Int)
	case KindUint8:
		return destream.VisitUint8(v, uint8(tok.Uint))
	case KindUint16:
		return destream.VisitUint16(v, uint16(tok.Uint))
	case KindUint32:
		return destream.VisitUint32(v, uint32(tok.Uint))
	case KindUint64:
		return v.VisitUint64(tok.Uint)
	case KindFloat32:
		return destream.VisitFloat32(v, float32(tok.Float))
	default:
		return v.VisitFloat64(tok.Float)
	}
}

func (d *Decoder) decodeNumber(ctx context.Context, v destream.Visitor) (any, error) {
	tok, err := d.next(ctx)
	if err != nil {
		return nil, err
	}
	if tok.Kind == KindString {
		// Self-describing: a string sitting where a number was hinted is
		// handed to the visitor, which accepts it (timestamps) or rejects
		// it with invalid type through its defaults.
		return v.VisitString(tok.Str)
	}
	if !isNumeric(tok.Kind) {
		return nil, destream.InvalidType(tok, v.Expecting())
	}
	return visitNumeric(tok, v)
}

func (d *Decoder) DecodeBool(ctx context.Context, v destream.Visitor) (any, error) {
	tok, err := d.next(ctx)
	if err != nil {
		return nil, err
	}
	if tok.Kind != KindBool {
		return nil, destream.InvalidType(tok, v.Expecting())
	}
	return v.VisitBool(tok.Bool)
}

func (d *Decoder) DecodeInt8(ctx context.Context, v destream.Visitor) (any, error) {
	return d.decodeNumber(ctx, v)
}

func (d *Decoder) DecodeInt16(ctx context.Context, v destream.Visitor) (any, error) {
	return d.decodeNumber(ctx, v)
}

func (d *Decoder) DecodeInt32(ctx context.Context, v destream.Visitor) (any, error) {
	return d.decodeNumber(ctx, v)
}

func (d *Decoder) DecodeInt64(ctx context.Context, v destream.Visitor) (any, error) {
	return d.decodeNumber(ctx, v)
}

func (d *Decoder) DecodeUint8(ctx context.Context, v destream.Visitor) (any, error) {
	return d.decodeNumber(ctx, v)
}

func (d *Decoder) DecodeUint16(ctx context.Context, v destream.Visitor) (any, error) {
	return d.decodeNumber(ctx, v)
}

func (d *Decoder) DecodeUint32(ctx context.Context, v destream.Visitor) (any, error) {
	return d.decodeNumber(ctx, v)
}

func (d *Decoder) DecodeUint64(ctx context.Context, v destream.Visitor) (any, error) {
	return d.decodeNumber(ctx, v)
}

func (d *Decoder) DecodeFloat32(ctx context.Context, v destream.Visitor) (any, error) {
	return d.decodeNumber(ctx, v)
}

func (d *Decoder) DecodeFloat64(ctx context.Context, v destream.Visitor) (any, error) {
	return d.decodeNumber(ctx, v)
}

func (d *Decoder) DecodeString(ctx context.Context, v destream.Visitor) (any, error) {
	tok, err := d.next(ctx)
	if err != nil {
		return nil, err
	}
	if tok.Kind != KindString {
		return nil, destream.InvalidType(tok, v.Expecting())
	}
	return v.VisitString(tok.Str)
}

func (d *Decoder) DecodeBytes(ctx context.Context, v destream.Visitor) (any, error) {
	tok, err := d.next(ctx)
	if err != nil {
		return nil, err
	}
	switch tok.Kind {
	case KindBytes:
		return v.VisitBytes(ctx, &arrayAccess{data: tok.Data})
	case KindString:
		return v.VisitString(tok.Str)
	case KindSeq:
		return d.visitSeq(ctx, tok, v)
	default:
		return nil, destream.InvalidType(tok, v.Expecting())
	}
}

func (d *Decoder) DecodeOption(ctx context.Context, v destream.Visitor) (any, error) {
	tok, err := d.next(ctx)
	if err != nil {
		return nil, err
	}
	switch tok.Kind {
	case KindNone:
		return v.VisitNone()
	case KindSome:
		return v.VisitSome(ctx, d)
	case KindUnit:
		return v.VisitUnit()
	default:
		return nil, destream.InvalidType(tok, v.Expecting())
	}
}

func (d *Decoder) DecodeUnit(ctx context.Context, v destream.Visitor) (any, error) {
	tok, err := d.next(ctx)
	if err != nil {
		return nil, err
	}
	switch tok.Kind {
	case KindUnit:
		return v.VisitUnit()
	case KindNone:
		return v.VisitNone()
	default:
		return nil, destream.InvalidType(tok, v.Expecting())
	}
}

func (d *Decoder) DecodeSeq(ctx context.Context, v destream.Visitor) (any, error) {
	tok, err := d.next(ctx)
	if err != nil {
		return nil, err
	}
	if tok.Kind != KindSeq && tok.Kind != KindTuple {
		return nil, destream.InvalidType(tok, v.Expecting())
	}
	return d.visitSeq(ctx, tok, v)
}

func (d *Decoder) visitSeq(ctx context.Context, tok Token, v destream.Visitor) (any, error) {
	acc := &seqAccess{d: d, end: endOf(tok.Kind), size: tok.Size}
	r, err := v.VisitSeq(ctx, acc)
	if err != nil {
		return nil, err
	}
	if _, err := d.drain(acc); err != nil {
		return nil, err
	}
	return r, nil
}

func (d *Decoder) DecodeTuple(ctx context.Context, size int, v destream.Visitor) (any, error) {
	tok, err := d.next(ctx)
	if err != nil {
		return nil, err
	}
	if tok.Kind != KindSeq && tok.Kind != KindTuple {
		return nil, destream.InvalidType(tok, v.Expecting())
	}
	acc := &seqAccess{d: d, end: endOf(tok.Kind), size: tok.Size}
	r, err := v.VisitSeq(ctx, acc)
	if err != nil {
		return nil, err
	}
	extra, err := d.drain(acc)
	if err != nil {
		return nil, err
	}
	if extra > 0 {
		return nil, destream.InvalidLength(size+extra, v.Expecting())
	}
	return r, nil
}

// drain consumes any elements the visitor left behind, plus the compound's
// end token, and reports how many elements were skipped.
func (d *Decoder) drain(acc *seqAccess) (int, error) {
	skipped := 0
	for !acc.done {
		tok, ok := d.peek()
		if !ok {
			return skipped, destream.Custom("unexpected end of token stream")
		}
		if tok.Kind == acc.end {
			d.pos++
			acc.done = true
			break
		}
		if err := d.skipValue(); err != nil {
			return skipped, err
		}
		skipped++
	}
	return skipped, nil
}

func (d *Decoder) DecodeMap(ctx context.Context, v destream.Visitor) (any, error) {
	tok, err := d.next(ctx)
	if err != nil {
		return nil, err
	}
	if tok.Kind != KindMap {
		return nil, destream.InvalidType(tok, v.Expecting())
	}
	acc := &mapAccess{d: d, size: tok.Size}
	r, err := v.VisitMap(ctx, acc)
	if err != nil {
		return nil, err
	}
	for !acc.done {
		next, ok := d.peek()
		if !ok {
			return nil, destream.Custom("unexpected end of token stream")
		}
		if next.Kind == KindMapEnd {
			d.pos++
			acc.done = true
			break
		}
		if err := d.skipValue(); err != nil {
			return nil, err
		}
		if err := d.skipValue(); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (d *Decoder) DecodeAny(ctx context.Context, v destream.Visitor) (any, error) {
	if d.strict {
		return nil, destream.Custom("decode_any is not supported by a non-self-describing format")
	}
	tok, ok := d.peek()
	if !ok {
		return nil, destream.Custom("unexpected end of token stream")
	}
	switch tok.Kind {
	case KindBool:
		return d.DecodeBool(ctx, v)
	case KindInt8, KindInt16, KindInt32, KindInt64,
		KindUint8, KindUint16, KindUint32, KindUint64,
		KindFloat32, KindFloat64:
		return d.decodeNumber(ctx, v)
	case KindString:
		return d.DecodeString(ctx, v)
	case KindBytes:
		return d.DecodeBytes(ctx, v)
	case KindNone, KindSome:
		return d.DecodeOption(ctx, v)
	case KindUnit:
		return d.DecodeUnit(ctx, v)
	case KindSeq, KindTuple:
		return d.DecodeSeq(ctx, v)
	case KindMap:
		return d.DecodeMap(ctx, v)
	default:
		return nil, destream.Custom("unexpected %s token", tok.Kind)
	}
}

func (d *Decoder) DecodeIgnoredAny(ctx context.Context, v destream.Visitor) (any, error) {
	if d.strict {
		return nil, destream.Custom("decode_ignored_any is not supported by a non-self-describing format")
	}
	return d.DecodeAny(ctx, v)
}

// skipValue consumes one complete value, descending into nested compounds.
func (d *Decoder) skipValue() error {
	if d.pos >= len(d.tokens) {
		return destream.Custom("unexpected end of token stream")
	}
	tok := d.tokens[d.pos]
	d.pos++

	switch tok.Kind {
	case KindSome:
		return d.skipValue()
	case KindSeq, KindTuple:
		end := endOf(tok.Kind)
		for {
			next, ok := d.peek()
			if !ok {
				return destream.Custom("unexpected end of token stream")
			}
			if next.Kind == end {
				d.pos++
				return nil
			}
			if err := d.skipValue(); err != nil {
				return err
			}
		}
	case KindMap:
		for {
			next, ok := d.peek()
			if !ok {
				return destream.Custom("unexpected end of token stream")
			}
			if next.Kind == KindMapEnd {
				d.pos++
				return nil
			}
			if err := d.skipValue(); err != nil {
				return err
			}
			if err := d.skipValue(); err != nil {
				return err
			}
		}
	case KindSeqEnd, KindMapEnd, KindTupleEnd:
		return destream.Custom("unexpected %s token", tok.Kind)
	default:
		return nil
	}
}

func endOf(k TokenKind) TokenKind {
	if k == KindTuple {
		return KindTupleEnd
	}
	return KindSeqEnd
}

type seqAccess struct {
	d    *Decoder
	end  TokenKind
	size int
	done bool
}

func (a *seqAccess) NextElement(ctx context.Context, cxt destream.Context, elem destream.FromStream) (bool, error) {
	if a.done {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	tok, ok := a.d.peek()
	if !ok {
		return false, destream.Custom("unexpected end of token stream")
	}
	if tok.Kind == a.end {
		a.d.pos++
		a.done = true
		return false, nil
	}
	if err := elem.FromStream(ctx, cxt, a.d); err != nil {
		return false, err
	}
	if a.size > 0 {
		a.size--
	}
	return true, nil
}

func (a *seqAccess) SizeHint() (int, bool) {
	if a.size < 0 {
		return 0, false
	}
	return a.size, true
}

type mapAccess struct {
	d           *Decoder
	size        int
	done        bool
	expectValue bool
}

func (a *mapAccess) NextKey(ctx context.Context, cxt destream.Context, key destream.FromStream) (bool, error) {
	if a.done {
		return false, nil
	}
	if err := ctx.Err(); err != nil {
		return false, err
	}
	tok, ok := a.d.peek()
	if !ok {
		return false, destream.Custom("unexpected end of token stream")
	}
	if tok.Kind == KindMapEnd {
		a.d.pos++
		a.done = true
		return false, nil
	}
	if err := key.FromStream(ctx, cxt, a.d); err != nil {
		return false, err
	}
	a.expectValue = true
	if a.size > 0 {
		a.size--
	}
	return true, nil
}

func (a *mapAccess) NextValue(ctx context.Context, cxt destream.Context, value destream.FromStream) error {
	if !a.expectValue {
		return errors.New("NextValue called without a preceding NextKey")
	}
	a.expectValue = false
	return value.FromStream(ctx, cxt, a.d)
}

func (a *mapAccess) SizeHint() (int, bool) {
	if a.size < 0 {
		return 0, false
	}
	return a.size, true
}

// arrayAccess yields one token's byte payload in caller-sized chunks.
type arrayAccess struct {
	data []byte
	pos  int
}

func (a *arrayAccess) Buffer(ctx context.Context, p []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	n := copy(p, a.data[a.pos:])
	a.pos += n
	return n, nil
}
