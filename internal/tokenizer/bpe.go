package tokenizer

import (
	"fmt"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
	tiktoken "github.com/tiktoken-go/tokenizer"
)

// BPE encodes text with one of the tiktoken byte-pair encodings.
type BPE struct {
	codec tiktoken.Codec
	opts  Options
}

// NewBPE loads the named encoding (e.g. "cl100k_base"). Padding uses id 0.
func NewBPE(encoding string, opts Options) (*BPE, error) {
	if encoding == "" {
		encoding = string(tiktoken.Cl100kBase)
	}

	codec, err := tiktoken.Get(tiktoken.Encoding(encoding))
	if err != nil {
		return nil, fmt.Errorf("%w: bpe encoding %q: %v", shared.ErrInvalidConfig, encoding, err)
	}
	return &BPE{codec: codec, opts: opts}, nil
}

// Encode implements [Tokenizer].
func (b *BPE) Encode(text string) (models.Encoding, error) {
	raw, _, err := b.codec.Encode(text)
	if err != nil {
		return models.Encoding{}, fmt.Errorf("bpe encode: %w", err)
	}

	ids := make([]uint32, len(raw))
	for i, id := range raw {
		ids[i] = uint32(id)
	}
	return shape(ids, b.opts, special{}), nil
}
