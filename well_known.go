package destream

import (
	"context"
	"reflect"
	"time"

	"github.com/google/uuid"
)

// Well-known standard types get hand-written shape implementations the
// value layer dispatches to by type, so callers can pass them to Decode and
// Encode like any other value.

type wellKnownDecoder func(ctx context.Context, dec Decoder, out any) error
type wellKnownEncoder func(ctx context.Context, enc Encoder, v any) error

var (
	wellKnownDecoders = make(map[reflect.Type]wellKnownDecoder)
	wellKnownEncoders = make(map[reflect.Type]wellKnownEncoder)
)

func init() {
	timeType := reflect.TypeOf(time.Time{})
	wellKnownDecoders[timeType] = decodeTime
	wellKnownEncoders[timeType] = encodeTime

	uuidType := reflect.TypeOf(uuid.UUID{})
	wellKnownDecoders[uuidType] = decodeUUID
	wellKnownEncoders[uuidType] = encodeUUID
}

// timeVisitor accepts seconds since the UNIX epoch, or an RFC 3339 string
// from self-describing formats that deliver strings through numeric hints.
type timeVisitor struct {
	VisitorBase
}

var timeVis = timeVisitor{VisitorBase{Expects: "a timestamp"}}

func (v timeVisitor) VisitInt64(n int64) (any, error) {
	return time.Unix(n, 0).UTC(), nil
}

func (v timeVisitor) VisitUint64(n uint64) (any, error) {
	return time.Unix(int64(n), 0).UTC(), nil
}

func (v timeVisitor) VisitString(s string) (any, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, InvalidValue(s, "an RFC 3339 timestamp")
	}
	return t, nil
}

func decodeTime(ctx context.Context, dec Decoder, out any) error {
	r, err := dec.DecodeInt64(ctx, timeVis)
	if err != nil {
		return err
	}
	*out.(*time.Time) = r.(time.Time)
	return nil
}

func encodeTime(ctx context.Context, enc Encoder, v any) error {
	return enc.EncodeInt64(ctx, v.(time.Time).Unix())
}

// uuidVisitor accepts a 16-byte buffer, a canonical string form, or the
// four-field (u32, u16, u16, [8]byte) sequence form.
type uuidVisitor struct {
	VisitorBase
}

var uuidVis = uuidVisitor{VisitorBase{Expects: "a UUID"}}

func (v uuidVisitor) VisitBytes(ctx context.Context, a ArrayAccess) (any, error) {
	var buf [16]byte
	n, err := a.Buffer(ctx, buf[:])
	if err != nil {
		return nil, err
	}
	if n != len(buf) {
		return nil, InvalidLength(n, v.Expecting())
	}
	var spill [1]byte
	extra, err := a.Buffer(ctx, spill[:])
	if err != nil {
		return nil, err
	}
	if extra != 0 {
		return nil, InvalidLength(len(buf)+extra, v.Expecting())
	}
	return uuid.UUID(buf), nil
}

func (v uuidVisitor) VisitString(s string) (any, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, InvalidValue(s, v.Expecting())
	}
	return id, nil
}

func (v uuidVisitor) VisitSeq(ctx context.Context, seq SeqAccess) (any, error) {
	var (
		one   uint32
		two   uint16
		three uint16
		four  [8]byte
	)
	for i, field := range []any{&one, &two, &three, &four} {
		ok, err := seq.NextElement(ctx, nil, value{defaultCodec, field})
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, InvalidLength(i, v.Expecting())
		}
	}

	var id uuid.UUID
	id[0] = byte(one >> 24)
	id[1] = byte(one >> 16)
	id[2] = byte(one >> 8)
	id[3] = byte(one)
	id[4] = byte(two >> 8)
	id[5] = byte(two)
	id[6] = byte(three >> 8)
	id[7] = byte(three)
	copy(id[8:], four[:])
	return id, nil
}

func decodeUUID(ctx context.Context, dec Decoder, out any) error {
	r, err := dec.DecodeBytes(ctx, uuidVis)
	if err != nil {
		return err
	}
	*out.(*uuid.UUID) = r.(uuid.UUID)
	return nil
}

func encodeUUID(ctx context.Context, enc Encoder, v any) error {
	id := v.(uuid.UUID)
	return enc.EncodeBytes(ctx, id[:])
}
