package tokenizer

import (
	"fmt"
	"strings"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
)

// Tokenizer encodes text into token ids.
type Tokenizer interface {
	Encode(text string) (models.Encoding, error)
}

// Options controls the shape of an [models.Encoding].
type Options struct {
	Lowercase        bool // WordPiece only
	AddSpecialTokens bool // wrap in [CLS] ... [SEP]; WordPiece only
	MaxLength        int  // truncate to this many ids; 0 disables truncation and padding
	Padding          bool // pad to MaxLength
	AttentionMask    bool // emit a mask alongside the ids
}

// OptionsFromConfig maps tokenizer settings onto [Options].
func OptionsFromConfig(cfg shared.TokenizerConfig) Options {
	return Options{
		Lowercase:        cfg.Lowercase,
		AddSpecialTokens: cfg.AddSpecialTokens,
		MaxLength:        cfg.MaxLength,
		Padding:          cfg.Padding,
		AttentionMask:    cfg.AttentionMask,
	}
}

// New builds the tokenizer selected by cfg.Kind.
func New(cfg shared.TokenizerConfig) (Tokenizer, error) {
	opts := OptionsFromConfig(cfg)

	switch strings.ToLower(cfg.Kind) {
	case "wordpiece":
		return LoadWordPiece(cfg.VocabPath, opts)
	case "bpe":
		return NewBPE(cfg.Encoding, opts)
	default:
		return nil, fmt.Errorf("%w: unknown tokenizer kind %q", shared.ErrInvalidConfig, cfg.Kind)
	}
}

// special holds the ids used when shaping output.
type special struct {
	cls, sep, pad uint32
	wrap          bool
}

// shape truncates, wraps and pads ids according to opts.
func shape(ids []uint32, opts Options, sp special) models.Encoding {
	wrap := sp.wrap && (opts.MaxLength == 0 || opts.MaxLength >= 2)

	budget := len(ids)
	if opts.MaxLength > 0 {
		limit := opts.MaxLength
		if wrap {
			limit -= 2
		}
		budget = min(budget, limit)
	}

	size := budget
	if wrap {
		size += 2
	}
	if opts.Padding && opts.MaxLength > size {
		size = opts.MaxLength
	}

	out := make([]uint32, 0, size)
	if wrap {
		out = append(out, sp.cls)
	}
	out = append(out, ids[:budget]...)
	if wrap {
		out = append(out, sp.sep)
	}
	filled := len(out)
	for len(out) < size {
		out = append(out, sp.pad)
	}

	enc := models.Encoding{IDs: out}
	if opts.AttentionMask {
		enc.AttentionMask = make([]uint8, len(out))
		for i := range filled {
			enc.AttentionMask[i] = 1
		}
	}
	return enc
}
