package destream_test

import (
	"context"
	"testing"

	"github.com/ddrp-org/destream"
	"github.com/ddrp-org/destream/streamtest"
	"github.com/stretchr/testify/require"
)

type manifest struct {
	Name    string `destream:"name"`
	Size    uint64 `destream:"size"`
	Comment *string
	hidden  int
	Skipped bool `destream:"-"`
}

func TestRecordRoundTrip(t *testing.T) {
	note := "pinned"
	in := manifest{Name: "blob-0001", Size: 4096, Comment: &note}

	var out manifest
	roundTrip(t, in, &out)
	require.Equal(t, in, out)
}

func TestRecordTokenShape(t *testing.T) {
	tokens, err := streamtest.Encode(context.Background(),
		manifest{Name: "a", Size: 1})
	require.NoError(t, err)
	require.Equal(t, []streamtest.Token{
		streamtest.MapStart(3),
		streamtest.Str("name"), streamtest.Str("a"),
		streamtest.Str("size"), streamtest.U64(1),
		streamtest.Str("comment"), streamtest.None(),
		streamtest.MapEnd(),
	}, tokens)
}

func TestRecordOptionalFieldAbsent(t *testing.T) {
	var out manifest
	err := streamtest.Decode(context.Background(), []streamtest.Token{
		streamtest.MapStart(2),
		streamtest.Str("name"), streamtest.Str("a"),
		streamtest.Str("size"), streamtest.U64(1),
		streamtest.MapEnd(),
	}, &out)
	require.NoError(t, err)
	require.Nil(t, out.Comment)
}

func TestRecordMissingField(t *testing.T) {
	var out manifest
	err := streamtest.Decode(context.Background(), []streamtest.Token{
		streamtest.MapStart(1),
		streamtest.Str("name"), streamtest.Str("a"),
		streamtest.MapEnd(),
	}, &out)
	require.Error(t, err)
	require.Equal(t, destream.KindMissingField, destream.KindOf(err))
	require.Contains(t, err.Error(), "size")
}

func TestRecordDuplicateField(t *testing.T) {
	var out manifest
	err := streamtest.Decode(context.Background(), []streamtest.Token{
		streamtest.MapStart(3),
		streamtest.Str("name"), streamtest.Str("a"),
		streamtest.Str("name"), streamtest.Str("b"),
		streamtest.Str("size"), streamtest.U64(1),
		streamtest.MapEnd(),
	}, &out)
	require.Error(t, err)
	require.Equal(t, destream.KindDuplicateField, destream.KindOf(err))
}

func TestRecordUnknownFieldSkipped(t *testing.T) {
	var out manifest
	err := streamtest.Decode(context.Background(), []streamtest.Token{
		streamtest.MapStart(3),
		streamtest.Str("name"), streamtest.Str("a"),
		// The unknown field carries a nested compound, which must be
		// discarded in full.
		streamtest.Str("extras"),
		streamtest.Seq(2), streamtest.I64(1), streamtest.I64(2), streamtest.SeqEnd(),
		streamtest.Str("size"), streamtest.U64(1),
		streamtest.MapEnd(),
	}, &out)
	require.NoError(t, err)
	require.Equal(t, "a", out.Name)
	require.Equal(t, uint64(1), out.Size)
}

func TestRecordUnknownFieldDenied(t *testing.T) {
	codec := &destream.ConfiguredCodec{DenyUnknownFields: true}

	var out manifest
	dec := streamtest.NewDecoder(
		streamtest.MapStart(3),
		streamtest.Str("name"), streamtest.Str("a"),
		streamtest.Str("extras"), streamtest.I64(1),
		streamtest.Str("size"), streamtest.U64(1),
		streamtest.MapEnd(),
	)
	err := codec.Decode(context.Background(), dec, &out)
	require.Error(t, err)
	require.Equal(t, destream.KindUnknownField, destream.KindOf(err))
	require.Contains(t, err.Error(), "extras")
}

func TestRecordIgnoresUntaggedCases(t *testing.T) {
	// Unexported and "-"-tagged fields never appear on the wire.
	tokens, err := streamtest.Encode(context.Background(),
		manifest{Name: "a", Size: 1, Skipped: true})
	require.NoError(t, err)
	for _, tok := range tokens {
		require.NotEqual(t, streamtest.Str("skipped"), tok)
		require.NotEqual(t, streamtest.Str("hidden"), tok)
	}
}

type envelope struct {
	Inner manifest `destream:"inner"`
	Tags  []string `destream:"tags"`
}

func TestNestedRecordRoundTrip(t *testing.T) {
	in := envelope{
		Inner: manifest{Name: "x", Size: 2},
		Tags:  []string{"p", "q"},
	}
	var out envelope
	roundTrip(t, in, &out)
	require.Equal(t, in, out)
}
