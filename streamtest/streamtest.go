package streamtest

import (
	"context"

	"github.com/ddrp-org/destream"
	"github.com/pkg/errors"
)

// Encode encodes v through the value layer and returns the tokens it
// produced.
func Encode(ctx context.Context, v any) ([]Token, error) {
	enc := NewEncoder()
	if err := destream.Encode(ctx, enc, v); err != nil {
		return nil, err
	}
	return enc.Tokens(), nil
}

// Decode decodes tokens into out through the value layer. It fails if the
// decode does not consume every token.
func Decode(ctx context.Context, tokens []Token, out any) error {
	dec := NewDecoder(tokens...)
	if err := destream.Decode(ctx, dec, out); err != nil {
		return err
	}
	if n := dec.Remaining(); n > 0 {
		return errors.Errorf("%d tokens left over after decode", n)
	}
	return nil
}
