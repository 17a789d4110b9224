package tokenizer

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
)

const (
	unkToken = "[UNK]"
	clsToken = "[CLS]"
	sepToken = "[SEP]"
	padToken = "[PAD]"

	continuationPrefix = "##"
	maxWordRunes       = 100
)

// WordPiece is a greedy longest-match-first sub-word tokenizer over a
// BERT-style vocabulary.
type WordPiece struct {
	vocab map[string]uint32
	opts  Options
	unk   uint32
	sp    special
}

// LoadWordPiece reads a vocab.txt file from path.
func LoadWordPiece(path string, opts Options) (*WordPiece, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open vocabulary: %v", shared.ErrInvalidConfig, err)
	}
	defer f.Close()

	return NewWordPiece(f, opts)
}

// NewWordPiece reads a vocabulary with one token per line; the line index is the token id.
func NewWordPiece(r io.Reader, opts Options) (*WordPiece, error) {
	vocab := make(map[string]uint32)
	scanner := bufio.NewScanner(r)

	var id uint32
	for scanner.Scan() {
		token := strings.TrimRight(scanner.Text(), "\r")
		if _, ok := vocab[token]; !ok {
			vocab[token] = id
		}
		id++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: read vocabulary: %v", shared.ErrInvalidConfig, err)
	}

	unk, ok := vocab[unkToken]
	if !ok {
		return nil, fmt.Errorf("%w: vocabulary has no %s token", shared.ErrInvalidConfig, unkToken)
	}

	sp := special{pad: vocab[padToken], wrap: opts.AddSpecialTokens}
	if opts.AddSpecialTokens {
		if sp.cls, ok = vocab[clsToken]; !ok {
			return nil, fmt.Errorf("%w: vocabulary has no %s token", shared.ErrInvalidConfig, clsToken)
		}
		if sp.sep, ok = vocab[sepToken]; !ok {
			return nil, fmt.Errorf("%w: vocabulary has no %s token", shared.ErrInvalidConfig, sepToken)
		}
	}

	return &WordPiece{vocab: vocab, opts: opts, unk: unk, sp: sp}, nil
}

// Encode implements [Tokenizer].
func (w *WordPiece) Encode(text string) (models.Encoding, error) {
	if w.opts.Lowercase {
		text = strings.ToLower(text)
	}

	var ids []uint32
	for _, word := range splitWords(text) {
		ids = append(ids, w.pieces(word)...)
	}
	return shape(ids, w.opts, w.sp), nil
}

// pieces splits one word into vocabulary entries, or [UNK] when it cannot.
func (w *WordPiece) pieces(word string) []uint32 {
	runes := []rune(word)
	if len(runes) > maxWordRunes {
		return []uint32{w.unk}
	}

	var out []uint32
	for start := 0; start < len(runes); {
		end := len(runes)
		found := false
		var id uint32
		for ; end > start; end-- {
			sub := string(runes[start:end])
			if start > 0 {
				sub = continuationPrefix + sub
			}
			if id, found = w.vocab[sub]; found {
				break
			}
		}
		if !found {
			return []uint32{w.unk}
		}
		out = append(out, id)
		start = end
	}
	return out
}

// splitWords splits on whitespace and isolates punctuation and symbols as
// single-rune words.
func splitWords(text string) []string {
	var words []string
	var cur strings.Builder

	flush := func() {
		if cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
	}

	for _, r := range text {
		switch {
		case unicode.IsSpace(r), unicode.IsControl(r):
			flush()
		case unicode.IsPunct(r), unicode.IsSymbol(r):
			flush()
			words = append(words, string(r))
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return words
}
