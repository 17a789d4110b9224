// package testing contains shared testing utilities
package testing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/lyrx/internal/models"
)

// SongFixture describes one song in a canned /artists/{id}/songs page.
type SongFixture struct {
	ID     int64
	Title  string
	URL    string
	Artist string // primary artist; defaults to the page artist
}

// SearchResponse builds a /search body whose only hit has the given primary artist.
func SearchResponse(artistID int64, artistName string) string {
	body := map[string]any{
		"meta": map[string]any{"status": 200},
		"response": map[string]any{
			"hits": []any{
				map[string]any{
					"type": "song",
					"result": map[string]any{
						"title": "Some Song",
						"url":   "https://genius.test/some-song",
						"primary_artist": map[string]any{
							"id":   artistID,
							"name": artistName,
						},
					},
				},
			},
		},
	}
	b, _ := json.Marshal(body)
	return string(b)
}

// EmptySearchResponse is a /search body with zero hits.
const EmptySearchResponse = `{"meta":{"status":200},"response":{"hits":[]}}`

// SongsResponse builds a /artists/{id}/songs body.
func SongsResponse(artist string, songs ...SongFixture) string {
	items := make([]any, 0, len(songs))
	for i, s := range songs {
		id := s.ID
		if id == 0 {
			id = int64(i + 1)
		}
		primary := s.Artist
		if primary == "" {
			primary = artist
		}
		items = append(items, map[string]any{
			"id":             id,
			"title":          s.Title,
			"url":            s.URL,
			"primary_artist": map[string]any{"id": 1, "name": primary},
		})
	}
	body := map[string]any{
		"meta":     map[string]any{"status": 200},
		"response": map[string]any{"songs": items, "next_page": nil},
	}
	b, _ := json.Marshal(body)
	return string(b)
}

// LyricsPage renders a song page with one lyrics container per block.
// Newlines inside a block become <br/> tags the way the site renders them.
func LyricsPage(blocks ...string) string {
	var sb strings.Builder
	sb.WriteString("<html><head><title>Lyrics</title></head><body><main>")
	sb.WriteString(`<div class="SongHeader">Header text</div>`)
	for _, block := range blocks {
		sb.WriteString(`<div data-lyrics-container="true">`)
		sb.WriteString(strings.ReplaceAll(block, "\n", "<br/>"))
		sb.WriteString("</div>")
	}
	sb.WriteString(`<div class="Footer">Footer text</div>`)
	sb.WriteString("</main></body></html>")
	return sb.String()
}

// StubRunner is a tokenizer runner double returning canned encodings.
type StubRunner struct {
	mu       sync.Mutex
	Encoding models.Encoding
	Err      error
	Inputs   []string
}

func (s *StubRunner) Tokenize(ctx context.Context, text string) (models.Encoding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Inputs = append(s.Inputs, text)
	if s.Err != nil {
		return models.Encoding{}, s.Err
	}
	return s.Encoding, nil
}

// Calls reports how many times Tokenize was invoked.
func (s *StubRunner) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Inputs)
}

// RecordingReporter collects log calls made through a Reporter.
type RecordingReporter struct {
	mu      sync.Mutex
	Entries []string
}

func (r *RecordingReporter) record(level string, msg any, keyvals ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Entries = append(r.Entries, fmt.Sprintf("%s %v %v", level, msg, keyvals))
}

func (r *RecordingReporter) Info(msg any, keyvals ...any)  { r.record("INFO", msg, keyvals...) }
func (r *RecordingReporter) Warn(msg any, keyvals ...any)  { r.record("WARN", msg, keyvals...) }
func (r *RecordingReporter) Error(msg any, keyvals ...any) { r.record("ERROR", msg, keyvals...) }

// Contains reports whether any entry contains substr.
func (r *RecordingReporter) Contains(substr string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.Entries {
		if strings.Contains(e, substr) {
			return true
		}
	}
	return false
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

var _ io.ReadCloser = (*FCloser)(nil)

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}

// MustWriteFile writes content to path, creating it with 0644 permissions.
func MustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}
