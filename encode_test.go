package destream_test

import (
	"context"
	"testing"

	"github.com/ddrp-org/destream"
	"github.com/ddrp-org/destream/streamtest"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type num int64

func (n num) ToStream(ctx context.Context, enc destream.Encoder) error {
	return enc.EncodeInt64(ctx, int64(n))
}

type word string

func (w word) ToStream(ctx context.Context, enc destream.Encoder) error {
	return enc.EncodeString(ctx, string(w))
}

func TestCollectSeq(t *testing.T) {
	enc := streamtest.NewEncoder()
	err := destream.CollectSeq(context.Background(), enc, 3,
		func(yield func(destream.ToStream) bool) {
			for i := 1; i <= 3; i++ {
				if !yield(num(i)) {
					return
				}
			}
		})
	require.NoError(t, err)
	require.Equal(t, []streamtest.Token{
		streamtest.Seq(3),
		streamtest.I64(1),
		streamtest.I64(2),
		streamtest.I64(3),
		streamtest.SeqEnd(),
	}, enc.Tokens())
}

func TestCollectMap(t *testing.T) {
	enc := streamtest.NewEncoder()
	err := destream.CollectMap(context.Background(), enc, 2,
		func(yield func(destream.ToStream, destream.ToStream) bool) {
			if !yield(word("x"), num(1)) {
				return
			}
			yield(word("y"), num(2))
		})
	require.NoError(t, err)
	require.Equal(t, []streamtest.Token{
		streamtest.MapStart(2),
		streamtest.Str("x"), streamtest.I64(1),
		streamtest.Str("y"), streamtest.I64(2),
		streamtest.MapEnd(),
	}, enc.Tokens())
}

func TestStreamSeq(t *testing.T) {
	enc := streamtest.NewEncoder()
	elements := make(chan destream.ToStream)

	var group errgroup.Group
	group.Go(func() error {
		defer close(elements)
		for i := 1; i <= 3; i++ {
			elements <- num(i)
		}
		return nil
	})
	require.NoError(t, destream.StreamSeq(context.Background(), enc, elements))
	require.NoError(t, group.Wait())

	require.Equal(t, []streamtest.Token{
		streamtest.Seq(-1),
		streamtest.I64(1),
		streamtest.I64(2),
		streamtest.I64(3),
		streamtest.SeqEnd(),
	}, enc.Tokens())
}

func TestStreamSeqCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	enc := streamtest.NewEncoder()

	// The producer never closes the channel; cancellation must end the
	// encode instead.
	elements := make(chan destream.ToStream)
	go func() {
		elements <- num(1)
		cancel()
	}()

	err := destream.StreamSeq(ctx, enc, elements)
	require.ErrorIs(t, err, context.Canceled)
}

func TestStreamMap(t *testing.T) {
	enc := streamtest.NewEncoder()
	entries := make(chan destream.Entry)

	var group errgroup.Group
	group.Go(func() error {
		defer close(entries)
		entries <- destream.Entry{Key: word("a"), Value: num(1)}
		entries <- destream.Entry{Key: word("b"), Value: num(2)}
		return nil
	})
	require.NoError(t, destream.StreamMap(context.Background(), enc, entries))
	require.NoError(t, group.Wait())

	require.Equal(t, []streamtest.Token{
		streamtest.MapStart(-1),
		streamtest.Str("a"), streamtest.I64(1),
		streamtest.Str("b"), streamtest.I64(2),
		streamtest.MapEnd(),
	}, enc.Tokens())
}

func TestEncodeSome(t *testing.T) {
	enc := streamtest.NewEncoder()
	require.NoError(t, enc.EncodeSome(context.Background(), num(7)))
	require.Equal(t, []streamtest.Token{
		streamtest.Some(),
		streamtest.I64(7),
	}, enc.Tokens())
}

func TestEncodeCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	enc := streamtest.NewEncoder()
	require.ErrorIs(t, enc.EncodeBool(ctx, true), context.Canceled)
	require.Empty(t, enc.Tokens())
}
