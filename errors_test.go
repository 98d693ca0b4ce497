package destream_test

import (
	"testing"

	"github.com/ddrp-org/destream"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		err  error
		kind destream.ErrorKind
	}{
		{destream.Custom("something went %s", "wrong"), destream.KindCustom},
		{destream.InvalidType("a string", "a bool"), destream.KindInvalidType},
		{destream.InvalidValue(300, "an 8-bit integer"), destream.KindInvalidValue},
		{destream.InvalidLength(2, "an array of length 3"), destream.KindInvalidLength},
		{destream.MissingField("name"), destream.KindMissingField},
		{destream.DuplicateField("name"), destream.KindDuplicateField},
		{destream.UnknownField("nmae"), destream.KindUnknownField},
	}
	for _, tt := range tests {
		require.Equal(t, tt.kind, destream.KindOf(tt.err), tt.err.Error())
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := errors.Wrap(destream.MissingField("checksum"), "decoding header")
	require.Equal(t, destream.KindMissingField, destream.KindOf(err))
}

func TestKindOfForeign(t *testing.T) {
	require.Equal(t, destream.KindCustom, destream.KindOf(errors.New("boom")))
}

func TestErrorMessages(t *testing.T) {
	require.Equal(t, "invalid type: true, expected a string",
		destream.InvalidType(true, "a string").Error())
	require.Equal(t, "invalid length: 2, expected an array of length 3",
		destream.InvalidLength(2, "an array of length 3").Error())
	require.Equal(t, `missing field "checksum"`,
		destream.MissingField("checksum").Error())
}
