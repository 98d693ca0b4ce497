package destream

import (
	"context"
	"reflect"
)

// Encode pushes v into enc using the default codec. See
// ConfiguredCodec.Encode for the supported source types.
func Encode(ctx context.Context, enc Encoder, v any) error {
	return defaultCodec.Encode(ctx, enc, v)
}

// Encode pushes v into enc.
//
// Supported sources mirror the decode targets: any ToStream implementation;
// bool, the fixed-width integers, int, uint, float32/64, string, []byte and
// struct{}; pointers (nil encodes as an absent optional); and slices,
// arrays, maps and structs of supported types. Maps encode in Go iteration
// order, so round trips preserve contents but not entry order.
func (c *ConfiguredCodec) Encode(ctx context.Context, enc Encoder, v any) error {
	switch it := v.(type) {
	case ToStream:
		return it.ToStream(ctx, enc)
	case nil:
		return enc.EncodeNone(ctx)
	case bool:
		return enc.EncodeBool(ctx, it)
	case int8:
		return enc.EncodeInt8(ctx, it)
	case int16:
		return enc.EncodeInt16(ctx, it)
	case int32:
		return enc.EncodeInt32(ctx, it)
	case int64:
		return enc.EncodeInt64(ctx, it)
	case int:
		return enc.EncodeInt64(ctx, int64(it))
	case uint8:
		return enc.EncodeUint8(ctx, it)
	case uint16:
		return enc.EncodeUint16(ctx, it)
	case uint32:
		return enc.EncodeUint32(ctx, it)
	case uint64:
		return enc.EncodeUint64(ctx, it)
	case uint:
		return enc.EncodeUint64(ctx, uint64(it))
	case float32:
		return enc.EncodeFloat32(ctx, it)
	case float64:
		return enc.EncodeFloat64(ctx, it)
	case string:
		return enc.EncodeString(ctx, it)
	case []byte:
		return enc.EncodeBytes(ctx, it)
	case struct{}:
		return enc.EncodeUnit(ctx)
	default:
		return c.encodeReflect(ctx, enc, v)
	}
}

// streamValue adapts an arbitrary encode source to the ToStream contract so
// builders can push it.
type streamValue struct {
	c *ConfiguredCodec
	v any
}

func (s streamValue) ToStream(ctx context.Context, enc Encoder) error {
	return s.c.Encode(ctx, enc, s.v)
}

func (c *ConfiguredCodec) encodeReflect(ctx context.Context, enc Encoder, v any) error {
	val := reflect.ValueOf(v)
	if efn := wellKnownEncoders[val.Type()]; efn != nil {
		return efn(ctx, enc, v)
	}

	switch val.Kind() {
	case reflect.Bool:
		return enc.EncodeBool(ctx, val.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return enc.EncodeInt64(ctx, val.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return enc.EncodeUint64(ctx, val.Uint())
	case reflect.Float32, reflect.Float64:
		return enc.EncodeFloat64(ctx, val.Float())
	case reflect.String:
		return enc.EncodeString(ctx, val.String())
	case reflect.Ptr:
		if val.IsNil() {
			return enc.EncodeNone(ctx)
		}
		return enc.EncodeSome(ctx, streamValue{c, val.Elem().Interface()})
	case reflect.Slice:
		if val.Type().Elem().Kind() == reflect.Uint8 {
			return enc.EncodeBytes(ctx, val.Bytes())
		}
		seq, err := enc.EncodeSeq(ctx, val.Len())
		if err != nil {
			return err
		}
		for i := 0; i < val.Len(); i++ {
			if err := seq.EncodeElement(ctx, streamValue{c, val.Index(i).Interface()}); err != nil {
				return err
			}
		}
		return seq.End(ctx)
	case reflect.Array:
		if val.Type().Elem().Kind() == reflect.Uint8 {
			buf := make([]byte, val.Len())
			reflect.Copy(reflect.ValueOf(buf), val)
			return enc.EncodeBytes(ctx, buf)
		}
		tuple, err := enc.EncodeTuple(ctx, val.Len())
		if err != nil {
			return err
		}
		for i := 0; i < val.Len(); i++ {
			if err := tuple.EncodeElement(ctx, streamValue{c, val.Index(i).Interface()}); err != nil {
				return err
			}
		}
		return tuple.End(ctx)
	case reflect.Map:
		m, err := enc.EncodeMap(ctx, val.Len())
		if err != nil {
			return err
		}
		iter := val.MapRange()
		for iter.Next() {
			k := streamValue{c, iter.Key().Interface()}
			v := streamValue{c, iter.Value().Interface()}
			if err := EncodeEntry(ctx, m, k, v); err != nil {
				return err
			}
		}
		return m.End(ctx)
	case reflect.Struct:
		return c.encodeStruct(ctx, enc, val)
	default:
		return Custom("type %s cannot be encoded", val.Type().String())
	}
}

// encodeStruct pushes a record as a map of field name to field value.
// Nil pointer fields are encoded as absent optionals rather than omitted,
// so a record always round-trips through its full field set.
func (c *ConfiguredCodec) encodeStruct(ctx context.Context, enc Encoder, val reflect.Value) error {
	fields := cachedStructFields(val.Type())
	m, err := enc.EncodeMap(ctx, len(fields.list))
	if err != nil {
		return err
	}
	for _, field := range fields.list {
		k := streamValue{c, field.name}
		v := streamValue{c, val.Field(field.index).Interface()}
		if err := EncodeEntry(ctx, m, k, v); err != nil {
			return err
		}
	}
	return m.End(ctx)
}
