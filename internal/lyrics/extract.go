package lyrics

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/desertthunder/lyrx/internal/shared"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultSelector matches the lyrics containers on a song page.
const DefaultSelector = `div[data-lyrics-container="true"]`

// PageFetcher downloads raw song pages.
type PageFetcher interface {
	FetchPage(ctx context.Context, pageURL string) ([]byte, error)
}

// Result is the text kept for one song.
type Result struct {
	Text     string
	Solo     bool // no credited headers were found; Text is the whole song
	Sections int  // number of sections attributed to the artist
}

// Extractor fetches song pages and reduces them to the requesting artist's lyrics.
type Extractor struct {
	fetcher  PageFetcher
	selector cascadia.Sel
}

// NewExtractor compiles selector (or [DefaultSelector] when empty).
func NewExtractor(fetcher PageFetcher, selector string) (*Extractor, error) {
	if selector == "" {
		selector = DefaultSelector
	}
	sel, err := cascadia.Parse(selector)
	if err != nil {
		return nil, fmt.Errorf("%w: lyrics selector %q: %v", shared.ErrInvalidConfig, selector, err)
	}
	return &Extractor{fetcher: fetcher, selector: sel}, nil
}

// Extract fetches pageURL and returns the lyrics attributable to artistName.
//
// Returns [shared.ErrExtractionFailed] when the page has no lyrics containers
// and [shared.ErrNoAttributableVerses] when none of the credited sections
// belong to the artist.
func (e *Extractor) Extract(ctx context.Context, pageURL, artistName string) (*Result, error) {
	body, err := e.fetcher.FetchPage(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	text, err := e.Text(body)
	if err != nil {
		return nil, err
	}
	return IsolateVerses(text, artistName)
}

// Text returns the plain text of every lyrics container in the page, in
// document order.
func (e *Extractor) Text(page []byte) (string, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("%w: parse page: %v", shared.ErrExtractionFailed, err)
	}

	containers := cascadia.QueryAll(doc, e.selector)
	if len(containers) == 0 {
		return "", shared.ErrExtractionFailed
	}

	parts := make([]string, 0, len(containers))
	for _, c := range containers {
		var sb strings.Builder
		iterText(c, &sb)
		if text := tidy(sb.String()); text != "" {
			parts = append(parts, text)
		}
	}

	if len(parts) == 0 {
		return "", fmt.Errorf("%w: lyrics containers are empty", shared.ErrExtractionFailed)
	}
	return strings.Join(parts, "\n"), nil
}

func iterText(n *html.Node, sb *strings.Builder) {
	if n == nil {
		return
	}

	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Script, atom.Style:
			return
		case atom.Br:
			sb.WriteByte('\n')
			return
		}
		// annotation widgets embedded in the container
		if attr(n, "data-exclude-from-selection") == "true" {
			return
		}
	}

	block := isBlock(n)
	if block {
		newline(sb)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		iterText(c, sb)
	}
	if block {
		newline(sb)
	}
}

func isBlock(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch n.DataAtom {
	case atom.Div, atom.P, atom.Li, atom.Ul, atom.Ol, atom.Section,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return true
	}
	return false
}

func newline(sb *strings.Builder) {
	s := sb.String()
	if s != "" && !strings.HasSuffix(s, "\n") {
		sb.WriteByte('\n')
	}
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// tidy trims each line and collapses runs of blank lines into one.
func tidy(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			if blank {
				continue
			}
			blank = true
		} else {
			blank = false
		}
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
