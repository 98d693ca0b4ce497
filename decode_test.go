package destream_test

import (
	"context"
	"testing"

	"github.com/ddrp-org/destream"
	"github.com/ddrp-org/destream/streamtest"
	"github.com/stretchr/testify/require"
)

// wideVisitor implements only the required 64-bit callbacks and records
// which one was invoked.
type wideVisitor struct {
	destream.VisitorBase
	got any
}

func (v *wideVisitor) VisitInt64(n int64) (any, error) {
	v.got = n
	return n, nil
}

func (v *wideVisitor) VisitUint64(n uint64) (any, error) {
	v.got = n
	return n, nil
}

func (v *wideVisitor) VisitFloat64(f float64) (any, error) {
	v.got = f
	return f, nil
}

// narrowVisitor additionally accepts the exact narrow widths.
type narrowVisitor struct {
	destream.VisitorBase
	got any
}

func (v *narrowVisitor) VisitInt64(n int64) (any, error)     { v.got = n; return n, nil }
func (v *narrowVisitor) VisitUint64(n uint64) (any, error)   { v.got = n; return n, nil }
func (v *narrowVisitor) VisitFloat64(f float64) (any, error) { v.got = f; return f, nil }
func (v *narrowVisitor) VisitInt8(n int8) (any, error)       { v.got = n; return n, nil }
func (v *narrowVisitor) VisitInt16(n int16) (any, error)     { v.got = n; return n, nil }
func (v *narrowVisitor) VisitInt32(n int32) (any, error)     { v.got = n; return n, nil }
func (v *narrowVisitor) VisitUint8(n uint8) (any, error)     { v.got = n; return n, nil }
func (v *narrowVisitor) VisitUint16(n uint16) (any, error)   { v.got = n; return n, nil }
func (v *narrowVisitor) VisitUint32(n uint32) (any, error)   { v.got = n; return n, nil }
func (v *narrowVisitor) VisitFloat32(f float32) (any, error) { v.got = f; return f, nil }

func TestNumericForwardingWidens(t *testing.T) {
	v := &wideVisitor{}

	_, err := destream.VisitInt8(v, int8(-5))
	require.NoError(t, err)
	require.Equal(t, int64(-5), v.got)

	_, err = destream.VisitInt16(v, int16(-300))
	require.NoError(t, err)
	require.Equal(t, int64(-300), v.got)

	_, err = destream.VisitInt32(v, int32(70000))
	require.NoError(t, err)
	require.Equal(t, int64(70000), v.got)

	_, err = destream.VisitUint8(v, uint8(200))
	require.NoError(t, err)
	require.Equal(t, uint64(200), v.got)

	_, err = destream.VisitUint16(v, uint16(60000))
	require.NoError(t, err)
	require.Equal(t, uint64(60000), v.got)

	_, err = destream.VisitUint32(v, uint32(4e9))
	require.NoError(t, err)
	require.Equal(t, uint64(4e9), v.got)

	_, err = destream.VisitFloat32(v, float32(1.5))
	require.NoError(t, err)
	require.Equal(t, float64(1.5), v.got)
}

func TestNumericForwardingExactWidth(t *testing.T) {
	v := &narrowVisitor{}

	_, err := destream.VisitInt8(v, int8(-5))
	require.NoError(t, err)
	require.Equal(t, int8(-5), v.got)

	_, err = destream.VisitInt32(v, int32(70000))
	require.NoError(t, err)
	require.Equal(t, int32(70000), v.got)

	_, err = destream.VisitUint16(v, uint16(60000))
	require.NoError(t, err)
	require.Equal(t, uint16(60000), v.got)

	_, err = destream.VisitFloat32(v, float32(1.5))
	require.NoError(t, err)
	require.Equal(t, float32(1.5), v.got)
}

func TestVisitorBaseDefaults(t *testing.T) {
	base := destream.VisitorBase{Expects: "a checksum"}

	_, err := base.VisitBool(true)
	require.Equal(t, destream.KindInvalidType, destream.KindOf(err))
	require.Contains(t, err.Error(), "a checksum")

	_, err = base.VisitString("nope")
	require.Equal(t, destream.KindInvalidType, destream.KindOf(err))

	_, err = base.VisitUnit()
	require.Equal(t, destream.KindInvalidType, destream.KindOf(err))
}

func TestVisitorBaseDefaultExpecting(t *testing.T) {
	var base destream.VisitorBase
	require.Equal(t, "a value", base.Expecting())
}

func TestIgnoredAnyDrainsCompound(t *testing.T) {
	ctx := context.Background()

	// A map whose value is a nested sequence, followed by a trailing bool.
	dec := streamtest.NewDecoder(
		streamtest.MapStart(1),
		streamtest.Str("xs"),
		streamtest.Seq(2), streamtest.I64(1), streamtest.I64(2), streamtest.SeqEnd(),
		streamtest.MapEnd(),
		streamtest.Bool(true),
	)

	require.NoError(t, destream.IgnoredAny{}.FromStream(ctx, nil, dec))

	var tail bool
	require.NoError(t, destream.Decode(ctx, dec, &tail))
	require.True(t, tail)
	require.Zero(t, dec.Remaining())
}
