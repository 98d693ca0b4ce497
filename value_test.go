package destream_test

import (
	"context"
	"testing"

	"github.com/ddrp-org/destream"
	"github.com/ddrp-org/destream/streamtest"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, in any, out any) {
	t.Helper()
	ctx := context.Background()
	tokens, err := streamtest.Encode(ctx, in)
	require.NoError(t, err)
	require.NoError(t, streamtest.Decode(ctx, tokens, out))
}

func TestRoundTripPrimitives(t *testing.T) {
	var b bool
	roundTrip(t, true, &b)
	require.True(t, b)

	var i8 int8
	roundTrip(t, int8(-42), &i8)
	require.Equal(t, int8(-42), i8)

	var i16 int16
	roundTrip(t, int16(-3000), &i16)
	require.Equal(t, int16(-3000), i16)

	var i32 int32
	roundTrip(t, int32(1<<20), &i32)
	require.Equal(t, int32(1<<20), i32)

	var i64 int64
	roundTrip(t, int64(-1<<40), &i64)
	require.Equal(t, int64(-1<<40), i64)

	var u8 uint8
	roundTrip(t, uint8(200), &u8)
	require.Equal(t, uint8(200), u8)

	var u64 uint64
	roundTrip(t, uint64(1<<60), &u64)
	require.Equal(t, uint64(1<<60), u64)

	var f32 float32
	roundTrip(t, float32(1.5), &f32)
	require.Equal(t, float32(1.5), f32)

	var f64 float64
	roundTrip(t, 3.25, &f64)
	require.Equal(t, 3.25, f64)

	var s string
	roundTrip(t, "hello", &s)
	require.Equal(t, "hello", s)

	var raw []byte
	roundTrip(t, []byte{0xde, 0xad}, &raw)
	require.Equal(t, []byte{0xde, 0xad}, raw)

	var unit struct{}
	roundTrip(t, struct{}{}, &unit)
}

func TestRoundTripCompounds(t *testing.T) {
	var xs []string
	roundTrip(t, []string{"a", "b", "c"}, &xs)
	require.Equal(t, []string{"a", "b", "c"}, xs)

	var arr [3]int32
	roundTrip(t, [3]int32{7, 8, 9}, &arr)
	require.Equal(t, [3]int32{7, 8, 9}, arr)

	var m map[string]int64
	roundTrip(t, map[string]int64{"x": 1, "y": 2}, &m)
	require.Equal(t, map[string]int64{"x": 1, "y": 2}, m)

	var nested [][]uint16
	roundTrip(t, [][]uint16{{1}, {2, 3}}, &nested)
	require.Equal(t, [][]uint16{{1}, {2, 3}}, nested)
}

func TestRoundTripOption(t *testing.T) {
	seven := int64(7)

	var some *int64
	roundTrip(t, &seven, &some)
	require.NotNil(t, some)
	require.Equal(t, int64(7), *some)

	none := &seven
	roundTrip(t, (*int64)(nil), &none)
	require.Nil(t, none)
}

func TestSequenceTokenShape(t *testing.T) {
	tokens, err := streamtest.Encode(context.Background(), []int{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, []streamtest.Token{
		streamtest.Seq(3),
		streamtest.I64(1),
		streamtest.I64(2),
		streamtest.I64(3),
		streamtest.SeqEnd(),
	}, tokens)
}

func TestDecodeSeqOfUnknownSize(t *testing.T) {
	var xs []int64
	err := streamtest.Decode(context.Background(), []streamtest.Token{
		streamtest.Seq(-1),
		streamtest.I64(10),
		streamtest.I64(20),
		streamtest.SeqEnd(),
	}, &xs)
	require.NoError(t, err)
	require.Equal(t, []int64{10, 20}, xs)
}

func TestDecodeMismatchedShape(t *testing.T) {
	var b bool
	err := streamtest.Decode(context.Background(),
		[]streamtest.Token{streamtest.Str("true")}, &b)
	require.Error(t, err)
	require.Equal(t, destream.KindInvalidType, destream.KindOf(err))
	require.Contains(t, err.Error(), "a bool")
}

func TestDecodeNumericOverflow(t *testing.T) {
	var i8 int8
	err := streamtest.Decode(context.Background(),
		[]streamtest.Token{streamtest.I64(300)}, &i8)
	require.Error(t, err)
	require.Equal(t, destream.KindInvalidValue, destream.KindOf(err))

	var u16 uint16
	err = streamtest.Decode(context.Background(),
		[]streamtest.Token{streamtest.I64(-1)}, &u16)
	require.Error(t, err)
	require.Equal(t, destream.KindInvalidValue, destream.KindOf(err))
}

func TestDecodeCrossSignedness(t *testing.T) {
	// An unsigned token into a signed target, and vice versa, is fine when
	// the value fits.
	var n int32
	require.NoError(t, streamtest.Decode(context.Background(),
		[]streamtest.Token{streamtest.U8(200)}, &n))
	require.Equal(t, int32(200), n)

	var u uint64
	require.NoError(t, streamtest.Decode(context.Background(),
		[]streamtest.Token{streamtest.I16(300)}, &u))
	require.Equal(t, uint64(300), u)
}

func TestDecodeNumericFromString(t *testing.T) {
	// A string where a number was hinted reaches the visitor, whose
	// defaults reject it naming the shape it wanted.
	var i8 int8
	err := streamtest.Decode(context.Background(),
		[]streamtest.Token{streamtest.Str("7")}, &i8)
	require.Error(t, err)
	require.Equal(t, destream.KindInvalidType, destream.KindOf(err))
	require.Contains(t, err.Error(), "8-bit integer")

	var f float64
	err = streamtest.Decode(context.Background(),
		[]streamtest.Token{streamtest.Str("1.5")}, &f)
	require.Error(t, err)
	require.Equal(t, destream.KindInvalidType, destream.KindOf(err))
	require.Contains(t, err.Error(), "64-bit float")
}

func TestDecodeFloatFromInteger(t *testing.T) {
	var f float64
	require.NoError(t, streamtest.Decode(context.Background(),
		[]streamtest.Token{streamtest.I64(-3)}, &f))
	require.Equal(t, float64(-3), f)
}

func TestDecodeShortArray(t *testing.T) {
	var arr [3]int64
	err := streamtest.Decode(context.Background(), []streamtest.Token{
		streamtest.Seq(2),
		streamtest.I64(1),
		streamtest.I64(2),
		streamtest.SeqEnd(),
	}, &arr)
	require.Error(t, err)
	require.Equal(t, destream.KindInvalidLength, destream.KindOf(err))
}

func TestDecodeBytesFromFallbacks(t *testing.T) {
	ctx := context.Background()

	// Base64 string fallback.
	var fromStr []byte
	require.NoError(t, streamtest.Decode(ctx,
		[]streamtest.Token{streamtest.Str("3q0=")}, &fromStr))
	require.Equal(t, []byte{0xde, 0xad}, fromStr)

	var badStr []byte
	err := streamtest.Decode(ctx,
		[]streamtest.Token{streamtest.Str("not base64!")}, &badStr)
	require.Error(t, err)
	require.Equal(t, destream.KindInvalidValue, destream.KindOf(err))

	// Sequence-of-bytes fallback.
	var fromSeq []byte
	require.NoError(t, streamtest.Decode(ctx, []streamtest.Token{
		streamtest.Seq(2),
		streamtest.U8(0xde),
		streamtest.U8(0xad),
		streamtest.SeqEnd(),
	}, &fromSeq))
	require.Equal(t, []byte{0xde, 0xad}, fromSeq)
}

func TestByteArrayRoundTrip(t *testing.T) {
	in := [4]byte{1, 2, 3, 4}

	tokens, err := streamtest.Encode(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, []streamtest.Token{streamtest.Blob(in[:])}, tokens)

	var out [4]byte
	require.NoError(t, streamtest.Decode(context.Background(), tokens, &out))
	require.Equal(t, in, out)
}

func TestByteArrayWrongLength(t *testing.T) {
	var out [4]byte

	err := streamtest.Decode(context.Background(),
		[]streamtest.Token{streamtest.Blob([]byte{1, 2})}, &out)
	require.Error(t, err)
	require.Equal(t, destream.KindInvalidLength, destream.KindOf(err))

	err = streamtest.Decode(context.Background(),
		[]streamtest.Token{streamtest.Blob([]byte{1, 2, 3, 4, 5})}, &out)
	require.Error(t, err)
	require.Equal(t, destream.KindInvalidLength, destream.KindOf(err))
}

func TestByteArrayFromFallbacks(t *testing.T) {
	var out [2]byte
	require.NoError(t, streamtest.Decode(context.Background(),
		[]streamtest.Token{streamtest.Str("3q0=")}, &out))
	require.Equal(t, [2]byte{0xde, 0xad}, out)

	require.NoError(t, streamtest.Decode(context.Background(), []streamtest.Token{
		streamtest.Seq(2),
		streamtest.U8(0xde),
		streamtest.U8(0xad),
		streamtest.SeqEnd(),
	}, &out))
	require.Equal(t, [2]byte{0xde, 0xad}, out)
}

func TestDecodeBytesAcrossChunks(t *testing.T) {
	// Larger than one 4096-byte pull, so the visitor has to concatenate
	// several chunks before the cursor signals exhaustion.
	in := make([]byte, 10000)
	for i := range in {
		in[i] = byte(i)
	}

	var out []byte
	roundTrip(t, in, &out)
	require.Equal(t, in, out)
}

func TestDecodeIntoNonPointer(t *testing.T) {
	err := streamtest.Decode(context.Background(),
		[]streamtest.Token{streamtest.I64(1)}, "not a pointer")
	require.Error(t, err)
	require.Equal(t, destream.KindCustom, destream.KindOf(err))
}

func TestDecodeCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var n int64
	err := streamtest.Decode(ctx, []streamtest.Token{streamtest.I64(1)}, &n)
	require.ErrorIs(t, err, context.Canceled)
}
