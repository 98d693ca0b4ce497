/*
Package destream defines a format-agnostic protocol for converting between
in-memory values and byte streams, decoding and encoding incrementally as
bytes arrive or are produced.

Neither side of the protocol knows about the other. A data type describes its
shape once by implementing FromStream and ToStream, and any stream format can
drive or consume that shape by implementing Decoder and Encoder. The package
defines no byte layout of its own.

Decoding is pull-based double dispatch: a FromStream implementation calls the
one Decoder hint method matching its shape and supplies a Visitor; the
Decoder parses the stream and invokes the matching Visitor callback, or hands
the Visitor a cursor (SeqAccess, MapAccess, ArrayAccess) from which elements
are pulled one at a time, recursing through the same protocol. Encoding is
the structural mirror, push-based: a ToStream implementation pushes itself
into the Encoder, using builders for compound values.

The easiest way to use this package is through the value layer, which drives
the protocol for plain Go values:

	var value []uint32
	err := destream.Decode(ctx, decoder, &value)

and to encode:

	err := destream.Encode(ctx, encoder, value)

Struct values follow the record contract: they encode as maps of field name
to field value, with names taken from `destream` struct tags. Types with
custom shapes implement FromStream and ToStream directly:

	type Checksum struct {
		Sum [8]byte
	}

	func (c *Checksum) FromStream(ctx context.Context, cxt destream.Context, dec destream.Decoder) error {
		return destream.DecodeContext(ctx, cxt, dec, &c.Sum)
	}

	func (c *Checksum) ToStream(ctx context.Context, enc destream.Encoder) error {
		return destream.Encode(ctx, enc, c.Sum)
	}

Types whose values may be too large to hold in memory declare a non-nil
Context and receive their data incrementally; cursors forward the element
type's context unchanged, so generic collection decoding works for bounded
and unbounded element types alike.

Decoding with a format is a single session: one hint call at a time, no reuse
after the top-level value is produced, elements always in stream order. Every
hint call and cursor pull takes a context.Context and may suspend while
waiting on the underlying transport; canceling it abandons the operation with
no partial effects to reverse.
*/
package destream
