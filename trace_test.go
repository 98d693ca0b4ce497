package destream_test

import (
	"context"
	"testing"

	"github.com/ddrp-org/destream"
	"github.com/ddrp-org/destream/log"
	"github.com/ddrp-org/destream/streamtest"
	"github.com/stretchr/testify/require"
)

// Tracing must be transparent: the same values and the same errors flow
// through, it only logs along the way.

func TestTraceDecoderTransparent(t *testing.T) {
	lgr := log.WithModule("trace-test")

	dec := destream.TraceDecoder(streamtest.NewDecoder(
		streamtest.MapStart(3),
		streamtest.Str("name"), streamtest.Str("a"),
		streamtest.Str("size"), streamtest.U64(9),
		streamtest.Str("comment"), streamtest.Some(), streamtest.Str("hi"),
		streamtest.MapEnd(),
	), lgr)

	var out manifest
	require.NoError(t, destream.Decode(context.Background(), dec, &out))
	require.Equal(t, "a", out.Name)
	require.Equal(t, uint64(9), out.Size)
	require.NotNil(t, out.Comment)
	require.Equal(t, "hi", *out.Comment)
}

func TestTraceDecoderPropagatesErrors(t *testing.T) {
	lgr := log.WithModule("trace-test")

	dec := destream.TraceDecoder(
		streamtest.NewDecoder(streamtest.Str("nope")), lgr)

	var n int64
	err := destream.Decode(context.Background(), dec, &n)
	require.Error(t, err)
	require.Equal(t, destream.KindInvalidType, destream.KindOf(err))
}

func TestTraceEncoderTransparent(t *testing.T) {
	lgr := log.WithModule("trace-test")

	plain := streamtest.NewEncoder()
	require.NoError(t, destream.Encode(context.Background(), plain,
		manifest{Name: "a", Size: 9}))

	traced := streamtest.NewEncoder()
	enc := destream.TraceEncoder(traced, lgr)
	require.NoError(t, destream.Encode(context.Background(), enc,
		manifest{Name: "a", Size: 9}))

	require.Equal(t, plain.Tokens(), traced.Tokens())
}
