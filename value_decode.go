package destream

import (
	"context"
	"encoding/base64"
	"fmt"
	"math"
	"reflect"
)

const (
	// DefaultMaxSizeHint caps how much capacity a cursor size hint may
	// pre-allocate before the elements have actually arrived.
	DefaultMaxSizeHint = 4096

	byteChunkSize = 4096
)

// ConfiguredCodec is the value layer: it decodes into and encodes from
// plain Go values (primitives, slices, arrays, maps, options, records) by
// driving the shape-hint protocol on the caller's behalf. The zero value is
// usable; the package-level Decode and Encode functions use a shared
// default.
type ConfiguredCodec struct {
	// DenyUnknownFields makes record decoding fail with an unknown field
	// error when the stream carries a field the struct does not declare.
	// When false, unknown fields are consumed and discarded.
	DenyUnknownFields bool

	// MaxSizeHint bounds how much capacity a cursor size hint may reserve.
	// Zero means DefaultMaxSizeHint.
	MaxSizeHint int
}

var defaultCodec = &ConfiguredCodec{}

// Decode decodes the next value from dec into out using the default codec.
// out must be a pointer; see ConfiguredCodec.DecodeContext for the
// supported target types.
func Decode(ctx context.Context, dec Decoder, out any) error {
	return defaultCodec.DecodeContext(ctx, nil, dec, out)
}

// DecodeContext is Decode with an explicit decoding context, forwarded to
// out's FromStream implementation or to the elements of a decoded sequence
// or option.
func DecodeContext(ctx context.Context, cxt Context, dec Decoder, out any) error {
	return defaultCodec.DecodeContext(ctx, cxt, dec, out)
}

// Decode decodes the next value from dec into out. out must be a pointer.
func (c *ConfiguredCodec) Decode(ctx context.Context, dec Decoder, out any) error {
	return c.DecodeContext(ctx, nil, dec, out)
}

// DecodeContext decodes the next value from dec into out, threading cxt as
// the decoding context.
//
// Supported targets: any FromStream implementation; pointers to bool, the
// fixed-width integers, int, uint, float32/64, string, []byte and struct{};
// pointers to pointers (options, nil for an absent value); and pointers to
// slices, arrays, maps and structs of supported types. Byte slices and byte
// arrays take the chunked byte-buffer path. Struct targets follow
// the record contract: field names come from `destream` tags, duplicate and
// missing fields are errors, and unknown fields are skipped or rejected per
// DenyUnknownFields.
func (c *ConfiguredCodec) DecodeContext(ctx context.Context, cxt Context, dec Decoder, out any) error {
	switch it := out.(type) {
	case FromStream:
		return it.FromStream(ctx, cxt, dec)
	case *bool:
		r, err := dec.DecodeBool(ctx, boolVis)
		if err != nil {
			return err
		}
		*it = r.(bool)
	case *int8:
		r, err := dec.DecodeInt8(ctx, newIntVisitor(8))
		if err != nil {
			return err
		}
		*it = int8(r.(int64))
	case *int16:
		r, err := dec.DecodeInt16(ctx, newIntVisitor(16))
		if err != nil {
			return err
		}
		*it = int16(r.(int64))
	case *int32:
		r, err := dec.DecodeInt32(ctx, newIntVisitor(32))
		if err != nil {
			return err
		}
		*it = int32(r.(int64))
	case *int64:
		r, err := dec.DecodeInt64(ctx, newIntVisitor(64))
		if err != nil {
			return err
		}
		*it = r.(int64)
	case *int:
		r, err := dec.DecodeInt64(ctx, newIntVisitor(64))
		if err != nil {
			return err
		}
		n := r.(int64)
		if int64(int(n)) != n {
			return InvalidValue(n, "an int")
		}
		*it = int(n)
	case *uint8:
		r, err := dec.DecodeUint8(ctx, newUintVisitor(8))
		if err != nil {
			return err
		}
		*it = uint8(r.(uint64))
	case *uint16:
		r, err := dec.DecodeUint16(ctx, newUintVisitor(16))
		if err != nil {
			return err
		}
		*it = uint16(r.(uint64))
	case *uint32:
		r, err := dec.DecodeUint32(ctx, newUintVisitor(32))
		if err != nil {
			return err
		}
		*it = uint32(r.(uint64))
	case *uint64:
		r, err := dec.DecodeUint64(ctx, newUintVisitor(64))
		if err != nil {
			return err
		}
		*it = r.(uint64)
	case *uint:
		r, err := dec.DecodeUint64(ctx, newUintVisitor(64))
		if err != nil {
			return err
		}
		n := r.(uint64)
		if uint64(uint(n)) != n {
			return InvalidValue(n, "a uint")
		}
		*it = uint(n)
	case *float32:
		r, err := dec.DecodeFloat32(ctx, newFloatVisitor(32))
		if err != nil {
			return err
		}
		*it = float32(r.(float64))
	case *float64:
		r, err := dec.DecodeFloat64(ctx, newFloatVisitor(64))
		if err != nil {
			return err
		}
		*it = r.(float64)
	case *string:
		r, err := dec.DecodeString(ctx, stringVis)
		if err != nil {
			return err
		}
		*it = r.(string)
	case *[]byte:
		r, err := dec.DecodeBytes(ctx, bytesVis)
		if err != nil {
			return err
		}
		*it = r.([]byte)
	case *struct{}:
		_, err := dec.DecodeUnit(ctx, unitVis)
		return err
	default:
		return c.decodeReflect(ctx, cxt, dec, out)
	}

	return nil
}

// value adapts a decode target to the FromStream contract so cursors can
// pull into it.
type value struct {
	c   *ConfiguredCodec
	out any
}

func (v value) FromStream(ctx context.Context, cxt Context, dec Decoder) error {
	return v.c.DecodeContext(ctx, cxt, dec, v.out)
}

// ValueOf adapts a plain decode target to the FromStream contract, so a
// custom Visitor can pull ordinary Go values through a cursor.
func ValueOf(out any) FromStream {
	return value{defaultCodec, out}
}

func (c *ConfiguredCodec) maxSizeHint() int {
	if c.MaxSizeHint > 0 {
		return c.MaxSizeHint
	}
	return DefaultMaxSizeHint
}

// cautiousSize turns a cursor size hint into a capacity. Hints are advisory
// only, so the capacity is clamped rather than trusted.
func (c *ConfiguredCodec) cautiousSize(hint int, ok bool) int {
	if !ok || hint < 0 {
		return 0
	}
	if max := c.maxSizeHint(); hint > max {
		return max
	}
	return hint
}

func (c *ConfiguredCodec) decodeReflect(ctx context.Context, cxt Context, dec Decoder, out any) error {
	outT := reflect.TypeOf(out)
	if outT == nil || outT.Kind() != reflect.Ptr {
		return Custom("can only decode into pointer types, got %T", out)
	}

	elemT := outT.Elem()
	if dfn := wellKnownDecoders[elemT]; dfn != nil {
		return dfn(ctx, dec, out)
	}

	var (
		r   any
		err error
	)
	switch elemT.Kind() {
	case reflect.Bool:
		r, err = dec.DecodeBool(ctx, boolVis)
		if err == nil {
			reflect.ValueOf(out).Elem().SetBool(r.(bool))
		}
		return err
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var n int64
		if err := c.DecodeContext(ctx, cxt, dec, &n); err != nil {
			return err
		}
		outV := reflect.ValueOf(out).Elem()
		if outV.OverflowInt(n) {
			return InvalidValue(n, elemT.String())
		}
		outV.SetInt(n)
		return nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		var n uint64
		if err := c.DecodeContext(ctx, cxt, dec, &n); err != nil {
			return err
		}
		outV := reflect.ValueOf(out).Elem()
		if outV.OverflowUint(n) {
			return InvalidValue(n, elemT.String())
		}
		outV.SetUint(n)
		return nil
	case reflect.Float32, reflect.Float64:
		var f float64
		if err := c.DecodeContext(ctx, cxt, dec, &f); err != nil {
			return err
		}
		reflect.ValueOf(out).Elem().SetFloat(f)
		return nil
	case reflect.String:
		r, err = dec.DecodeString(ctx, stringVis)
		if err == nil {
			reflect.ValueOf(out).Elem().SetString(r.(string))
		}
		return err
	case reflect.Ptr:
		r, err = dec.DecodeOption(ctx, &optionVisitor{
			VisitorBase: VisitorBase{Expects: "an optional " + elemT.Elem().String()},
			c:           c,
			cxt:         cxt,
			typ:         elemT,
		})
	case reflect.Slice:
		if elemT.Elem().Kind() == reflect.Uint8 {
			r, err = dec.DecodeBytes(ctx, bytesVis)
			if err == nil {
				reflect.ValueOf(out).Elem().SetBytes(r.([]byte))
				return nil
			}
			return err
		}
		r, err = dec.DecodeSeq(ctx, &seqVisitor{
			VisitorBase: VisitorBase{Expects: "a sequence"},
			c:           c,
			cxt:         cxt,
			typ:         elemT,
		})
	case reflect.Array:
		if elemT.Elem().Kind() == reflect.Uint8 {
			r, err = dec.DecodeBytes(ctx, &byteArrayVisitor{
				VisitorBase: VisitorBase{Expects: fmt.Sprintf("a byte array of length %d", elemT.Len())},
				typ:         elemT,
			})
			break
		}
		r, err = dec.DecodeTuple(ctx, elemT.Len(), &arrayVisitor{
			VisitorBase: VisitorBase{Expects: fmt.Sprintf("an array of length %d", elemT.Len())},
			c:           c,
			cxt:         cxt,
			typ:         elemT,
		})
	case reflect.Map:
		r, err = dec.DecodeMap(ctx, &mapVisitor{
			VisitorBase: VisitorBase{Expects: "a map"},
			c:           c,
			typ:         elemT,
		})
	case reflect.Struct:
		r, err = dec.DecodeMap(ctx, &structVisitor{
			VisitorBase: VisitorBase{Expects: elemT.String()},
			c:           c,
			typ:         elemT,
		})
	default:
		return Custom("type %s cannot be decoded", outT.String())
	}

	if err != nil {
		return err
	}
	reflect.ValueOf(out).Elem().Set(r.(reflect.Value))
	return nil
}

////////////////////////////////////////////////////////////////////////////////

type boolVisitor struct {
	VisitorBase
}

var boolVis = boolVisitor{VisitorBase{Expects: "a bool"}}

func (v boolVisitor) VisitBool(b bool) (any, error) {
	return b, nil
}

// intVisitor accepts a signed integer of up to bits width, widened to int64.
type intVisitor struct {
	VisitorBase
	bits int
}

func newIntVisitor(bits int) intVisitor {
	return intVisitor{
		VisitorBase: VisitorBase{Expects: fmt.Sprintf("a %d-bit integer", bits)},
		bits:        bits,
	}
}

func (v intVisitor) VisitInt64(n int64) (any, error) {
	if v.bits < 64 {
		limit := int64(1) << (v.bits - 1)
		if n < -limit || n >= limit {
			return nil, InvalidValue(n, v.Expecting())
		}
	}
	return n, nil
}

func (v intVisitor) VisitUint64(n uint64) (any, error) {
	if n > math.MaxInt64 {
		return nil, InvalidValue(n, v.Expecting())
	}
	return v.VisitInt64(int64(n))
}

// uintVisitor accepts an unsigned integer of up to bits width, widened to
// uint64.
type uintVisitor struct {
	VisitorBase
	bits int
}

func newUintVisitor(bits int) uintVisitor {
	return uintVisitor{
		VisitorBase: VisitorBase{Expects: fmt.Sprintf("a %d-bit unsigned integer", bits)},
		bits:        bits,
	}
}

func (v uintVisitor) VisitUint64(n uint64) (any, error) {
	if v.bits < 64 && n >= uint64(1)<<v.bits {
		return nil, InvalidValue(n, v.Expecting())
	}
	return n, nil
}

func (v uintVisitor) VisitInt64(n int64) (any, error) {
	if n < 0 {
		return nil, InvalidValue(n, v.Expecting())
	}
	return v.VisitUint64(uint64(n))
}

type floatVisitor struct {
	VisitorBase
	bits int
}

func newFloatVisitor(bits int) floatVisitor {
	return floatVisitor{
		VisitorBase: VisitorBase{Expects: fmt.Sprintf("a %d-bit float", bits)},
		bits:        bits,
	}
}

func (v floatVisitor) VisitFloat64(f float64) (any, error) {
	return f, nil
}

func (v floatVisitor) VisitInt64(n int64) (any, error) {
	return float64(n), nil
}

func (v floatVisitor) VisitUint64(n uint64) (any, error) {
	return float64(n), nil
}

type stringVisitor struct {
	VisitorBase
}

var stringVis = stringVisitor{VisitorBase{Expects: "a string"}}

func (v stringVisitor) VisitString(s string) (any, error) {
	return s, nil
}

type unitVisitor struct {
	VisitorBase
}

var unitVis = unitVisitor{VisitorBase{Expects: "a unit value"}}

func (v unitVisitor) VisitUnit() (any, error) {
	return nil, nil
}

func (v unitVisitor) VisitNone() (any, error) {
	return nil, nil
}

// bytesVisitor accepts a byte buffer in chunks, a base64 string, or a plain
// sequence of bytes. Chunked consumption keeps the intermediate memory
// bounded no matter how long the buffer is.
type bytesVisitor struct {
	VisitorBase
}

var bytesVis = bytesVisitor{VisitorBase{Expects: "bytes"}}

func (v bytesVisitor) VisitBytes(ctx context.Context, a ArrayAccess) (any, error) {
	var out []byte
	buf := make([]byte, byteChunkSize)
	for {
		n, err := a.Buffer(ctx, buf)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return out, nil
		}
		out = append(out, buf[:n]...)
	}
}

func (v bytesVisitor) VisitString(s string) (any, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, InvalidValue(s, "a base64-encoded string")
	}
	return raw, nil
}

func (v bytesVisitor) VisitSeq(ctx context.Context, seq SeqAccess) (any, error) {
	var out []byte
	for {
		var b uint8
		ok, err := seq.NextElement(ctx, nil, value{defaultCodec, &b})
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, b)
	}
}

// byteArrayVisitor decodes a fixed-size byte array in place, pulling chunks
// from the cursor straight into the array's backing storage. It takes the
// same string and sequence fallbacks as bytesVisitor, with a length check.
type byteArrayVisitor struct {
	VisitorBase
	typ reflect.Type // the array type [N]byte
}

func (v *byteArrayVisitor) VisitBytes(ctx context.Context, a ArrayAccess) (any, error) {
	out := reflect.New(v.typ).Elem()
	buf := out.Slice(0, v.typ.Len()).Bytes()
	filled := 0
	for filled < len(buf) {
		n, err := a.Buffer(ctx, buf[filled:])
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, InvalidLength(filled, v.Expecting())
		}
		filled += n
	}
	var spill [1]byte
	extra, err := a.Buffer(ctx, spill[:])
	if err != nil {
		return nil, err
	}
	if extra != 0 {
		return nil, InvalidLength(filled+extra, v.Expecting())
	}
	return out, nil
}

func (v *byteArrayVisitor) VisitString(s string) (any, error) {
	raw, err := bytesVis.VisitString(s)
	if err != nil {
		return nil, err
	}
	return v.fromSlice(raw.([]byte))
}

func (v *byteArrayVisitor) VisitSeq(ctx context.Context, seq SeqAccess) (any, error) {
	raw, err := bytesVis.VisitSeq(ctx, seq)
	if err != nil {
		return nil, err
	}
	return v.fromSlice(raw.([]byte))
}

func (v *byteArrayVisitor) fromSlice(raw []byte) (any, error) {
	if len(raw) != v.typ.Len() {
		return nil, InvalidLength(len(raw), v.Expecting())
	}
	out := reflect.New(v.typ).Elem()
	reflect.Copy(out, reflect.ValueOf(raw))
	return out, nil
}

////////////////////////////////////////////////////////////////////////////////

// optionVisitor decodes **T targets: none leaves the pointer nil, some
// allocates and decodes into it with the element's context.
type optionVisitor struct {
	VisitorBase
	c   *ConfiguredCodec
	cxt Context
	typ reflect.Type // the pointer type *T
}

func (v *optionVisitor) VisitNone() (any, error) {
	return reflect.Zero(v.typ), nil
}

func (v *optionVisitor) VisitUnit() (any, error) {
	return reflect.Zero(v.typ), nil
}

func (v *optionVisitor) VisitSome(ctx context.Context, dec Decoder) (any, error) {
	elem := reflect.New(v.typ.Elem())
	if err := v.c.DecodeContext(ctx, v.cxt, dec, elem.Interface()); err != nil {
		return nil, err
	}
	return elem, nil
}

// seqVisitor decodes a slice by pulling elements until the cursor reports
// exhaustion, forwarding the slice's context to each element.
type seqVisitor struct {
	VisitorBase
	c   *ConfiguredCodec
	cxt Context
	typ reflect.Type // the slice type []T
}

func (v *seqVisitor) VisitSeq(ctx context.Context, seq SeqAccess) (any, error) {
	values := reflect.MakeSlice(v.typ, 0, v.c.cautiousSize(seq.SizeHint()))
	for {
		elem := reflect.New(v.typ.Elem())
		ok, err := seq.NextElement(ctx, v.cxt, value{v.c, elem.Interface()})
		if err != nil {
			return nil, err
		}
		if !ok {
			return values, nil
		}
		values = reflect.Append(values, elem.Elem())
	}
}

// arrayVisitor decodes a fixed-size array, failing with an invalid length
// error if the stream runs out of elements early.
type arrayVisitor struct {
	VisitorBase
	c   *ConfiguredCodec
	cxt Context
	typ reflect.Type // the array type [N]T
}

func (v *arrayVisitor) VisitSeq(ctx context.Context, seq SeqAccess) (any, error) {
	out := reflect.New(v.typ).Elem()
	for i := 0; i < v.typ.Len(); i++ {
		ok, err := seq.NextElement(ctx, v.cxt, value{v.c, out.Index(i).Addr().Interface()})
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, InvalidLength(i, v.Expecting())
		}
	}
	return out, nil
}

// mapVisitor decodes a Go map, alternating key and value pulls until the
// cursor reports exhaustion.
type mapVisitor struct {
	VisitorBase
	c   *ConfiguredCodec
	typ reflect.Type // the map type map[K]V
}

func (v *mapVisitor) VisitMap(ctx context.Context, m MapAccess) (any, error) {
	hint, ok := m.SizeHint()
	values := reflect.MakeMapWithSize(v.typ, v.c.cautiousSize(hint, ok))
	for {
		key := reflect.New(v.typ.Key())
		ok, err := m.NextKey(ctx, nil, value{v.c, key.Interface()})
		if err != nil {
			return nil, err
		}
		if !ok {
			return values, nil
		}
		val := reflect.New(v.typ.Elem())
		if err := m.NextValue(ctx, nil, value{v.c, val.Interface()}); err != nil {
			return nil, err
		}
		values.SetMapIndex(key.Elem(), val.Elem())
	}
}

// structVisitor decodes a record: a field-name dispatch loop over the map
// cursor, duplicate and unknown field detection, and a final check that
// every required field was set.
type structVisitor struct {
	VisitorBase
	c   *ConfiguredCodec
	typ reflect.Type
}

func (v *structVisitor) VisitMap(ctx context.Context, m MapAccess) (any, error) {
	fields := cachedStructFields(v.typ)
	out := reflect.New(v.typ).Elem()
	seen := make([]bool, len(fields.list))

	for {
		var key string
		ok, err := m.NextKey(ctx, nil, value{v.c, &key})
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}

		idx, known := fields.byName[key]
		if !known {
			if v.c.DenyUnknownFields {
				return nil, UnknownField(key)
			}
			if err := m.NextValue(ctx, nil, IgnoredAny{}); err != nil {
				return nil, err
			}
			continue
		}
		if seen[idx] {
			return nil, DuplicateField(key)
		}
		seen[idx] = true

		field := fields.list[idx]
		target := out.Field(field.index).Addr().Interface()
		if err := m.NextValue(ctx, nil, value{v.c, target}); err != nil {
			return nil, err
		}
	}

	for i, field := range fields.list {
		if !seen[i] && !field.optional {
			return nil, MissingField(field.name)
		}
	}
	return out, nil
}
