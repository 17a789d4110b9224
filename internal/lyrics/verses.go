package lyrics

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/desertthunder/lyrx/internal/shared"
)

var (
	creditMarker = regexp.MustCompile(`\[[^\[\]\n]*:[^\[\]\n]*\]`)
	headerLine   = regexp.MustCompile(`^\[([^\[\]\n]+)\]$`)
)

const sectionLabels = `Verse|Chorus|Bridge|Outro|Intro|Pre-Chorus|Hook|Refrain`

type section struct {
	header string
	body   []string
}

// IsolateVerses keeps only the sections of text credited to artistName.
//
// A section is credited to the artist when its header is a structural label
// ending in the artist's name ("[Verse 2: Some Rapper]") or starts with the
// artist's name ("[Some Rapper & Friend]"). Text without any "[x: y]" marker
// is returned unchanged with Solo set.
func IsolateVerses(text, artistName string) (*Result, error) {
	if !creditMarker.MatchString(text) {
		return &Result{Text: text, Solo: true}, nil
	}

	name := regexp.QuoteMeta(strings.TrimSpace(artistName))
	if name == "" {
		return nil, fmt.Errorf("%w: artist name is empty", shared.ErrInvalidInput)
	}
	labelled := regexp.MustCompile(`(?i)^(?:` + sectionLabels + `)(?:\s*\d+)?\s*:?\s*` + name + `\s*$`)
	leading := regexp.MustCompile(`(?i)^` + name + `(?:$|[^\p{L}\p{N}])`)

	var verses []string
	for _, s := range sections(text) {
		if !labelled.MatchString(s.header) && !leading.MatchString(s.header) {
			continue
		}
		if body := strings.TrimSpace(strings.Join(s.body, "\n")); body != "" {
			verses = append(verses, body)
		}
	}

	if len(verses) == 0 {
		return nil, shared.ErrNoAttributableVerses
	}
	return &Result{Text: strings.Join(verses, "\n\n"), Sections: len(verses)}, nil
}

// sections splits text at header lines. Text before the first header is dropped.
func sections(text string) []section {
	var out []section
	for _, line := range strings.Split(text, "\n") {
		if m := headerLine.FindStringSubmatch(strings.TrimSpace(line)); m != nil {
			out = append(out, section{header: strings.TrimSpace(m[1])})
			continue
		}
		if n := len(out); n > 0 {
			out[n-1].body = append(out[n-1].body, line)
		}
	}
	return out
}
