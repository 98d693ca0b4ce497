package destream

import (
	"context"
	"iter"
)

// ToStream is implemented by types that can encode themselves into any
// supported stream format. An implementation pushes the value into enc with
// exactly one encode call matching its own shape.
type ToStream interface {
	ToStream(ctx context.Context, enc Encoder) error
}

// EncodeSeq is the builder returned by Encoder.EncodeSeq. It must receive
// zero or more EncodeElement calls followed by exactly one End call; End
// consumes the builder.
type EncodeSeq interface {
	EncodeElement(ctx context.Context, v ToStream) error
	End(ctx context.Context) error
}

// EncodeTuple is the builder returned by Encoder.EncodeTuple. It differs
// from EncodeSeq only in that its length is fixed at the type level, letting
// non-self-describing formats omit a length prefix.
type EncodeTuple interface {
	EncodeElement(ctx context.Context, v ToStream) error
	End(ctx context.Context) error
}

// EncodeMap is the builder returned by Encoder.EncodeMap. Keys and values
// must strictly alternate; calling EncodeValue before EncodeKey is caller
// error with implementation-defined (but memory-safe) consequences.
type EncodeMap interface {
	EncodeKey(ctx context.Context, k ToStream) error
	EncodeValue(ctx context.Context, v ToStream) error
	End(ctx context.Context) error
}

// EntryEncoder is an optional upgrade interface for EncodeMap builders that
// can encode a complete entry more efficiently than a key call followed by a
// value call. Use EncodeEntry to take advantage of it.
type EntryEncoder interface {
	EncodeEntry(ctx context.Context, k, v ToStream) error
}

// EncodeEntry encodes one key-value entry into m, using the builder's
// EntryEncoder fast path when it has one.
func EncodeEntry(ctx context.Context, m EncodeMap, k, v ToStream) error {
	if em, ok := m.(EntryEncoder); ok {
		return em.EncodeEntry(ctx, k, v)
	}
	if err := m.EncodeKey(ctx, k); err != nil {
		return err
	}
	return m.EncodeValue(ctx, v)
}

// Encoder is a data format that can encode any supported data structure
// into a stream.
//
// Primitive encode calls are immediate and terminal. Compound encode calls
// return a builder that is consumed by its End call. Output is produced
// incrementally through whatever sink the format was constructed over; the
// protocol itself never buffers a complete value. Every call is a suspension
// point and should honor ctx cancellation while flushing output.
type Encoder interface {
	EncodeBool(ctx context.Context, v bool) error

	EncodeInt8(ctx context.Context, v int8) error
	EncodeInt16(ctx context.Context, v int16) error
	EncodeInt32(ctx context.Context, v int32) error
	EncodeInt64(ctx context.Context, v int64) error

	EncodeUint8(ctx context.Context, v uint8) error
	EncodeUint16(ctx context.Context, v uint16) error
	EncodeUint32(ctx context.Context, v uint32) error
	EncodeUint64(ctx context.Context, v uint64) error

	EncodeFloat32(ctx context.Context, v float32) error
	EncodeFloat64(ctx context.Context, v float64) error

	EncodeString(ctx context.Context, v string) error
	EncodeBytes(ctx context.Context, v []byte) error

	// EncodeNone encodes an absent optional.
	EncodeNone(ctx context.Context) error

	// EncodeSome encodes a present optional carrying v.
	EncodeSome(ctx context.Context, v ToStream) error

	// EncodeUnit encodes the empty value.
	EncodeUnit(ctx context.Context) error

	// EncodeSeq begins a variably sized sequence. size is the number of
	// elements if known in advance, or negative if not.
	EncodeSeq(ctx context.Context, size int) (EncodeSeq, error)

	// EncodeMap begins a map. size is the number of entries if known in
	// advance, or negative if not.
	EncodeMap(ctx context.Context, size int) (EncodeMap, error)

	// EncodeTuple begins a sequence of exactly size elements whose length
	// is known at decoding time without looking at the encoded data.
	EncodeTuple(ctx context.Context, size int) (EncodeTuple, error)
}

// CollectSeq folds an iterator into the sequence builder protocol. size is
// the element count if known in advance, or negative if not.
func CollectSeq(ctx context.Context, enc Encoder, size int, items iter.Seq[ToStream]) error {
	seq, err := enc.EncodeSeq(ctx, size)
	if err != nil {
		return err
	}
	for item := range items {
		if err := seq.EncodeElement(ctx, item); err != nil {
			return err
		}
	}
	return seq.End(ctx)
}

// CollectMap folds a pair iterator into the map builder protocol. size is
// the entry count if known in advance, or negative if not.
func CollectMap(ctx context.Context, enc Encoder, size int, entries iter.Seq2[ToStream, ToStream]) error {
	m, err := enc.EncodeMap(ctx, size)
	if err != nil {
		return err
	}
	for k, v := range entries {
		if err := EncodeEntry(ctx, m, k, v); err != nil {
			return err
		}
	}
	return m.End(ctx)
}

// Entry is one key-value pair of a streamed map.
type Entry struct {
	Key   ToStream
	Value ToStream
}

// StreamSeq encodes elements received from a channel as a sequence of
// unknown length, without collecting them first. The producer signals the
// end of the sequence by closing the channel. Encoding stops with ctx's
// error if ctx is canceled while waiting for an element, so an unbounded
// producer can be encoded under a caller-controlled lifetime.
func StreamSeq(ctx context.Context, enc Encoder, elements <-chan ToStream) error {
	seq, err := enc.EncodeSeq(ctx, -1)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case elem, ok := <-elements:
			if !ok {
				return seq.End(ctx)
			}
			if err := seq.EncodeElement(ctx, elem); err != nil {
				return err
			}
		}
	}
}

// StreamMap encodes entries received from a channel as a map of unknown
// size, without collecting them first. The producer signals the end of the
// map by closing the channel.
func StreamMap(ctx context.Context, enc Encoder, entries <-chan Entry) error {
	m, err := enc.EncodeMap(ctx, -1)
	if err != nil {
		return err
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case entry, ok := <-entries:
			if !ok {
				return m.End(ctx)
			}
			if err := EncodeEntry(ctx, m, entry.Key, entry.Value); err != nil {
				return err
			}
		}
	}
}
