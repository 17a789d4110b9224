// package formatter provides functions to export stored lyrics to various formats (plain text, JSON, CSV)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/shared"
)

// Format names accepted by [Export].
const (
	FormatText = "txt"
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// Song is the exported shape of one stored song.
type Song struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	Lyrics        string   `json:"lyrics"`
	TokenIDs      []uint32 `json:"token_ids,omitempty"`
	AttentionMask []uint8  `json:"attention_mask,omitempty"`
}

// ArtistExport is the JSON document written for one artist table.
type ArtistExport struct {
	Table string `json:"table"`
	Songs []Song `json:"songs"`
}

// Join pairs lyrics records with their token records by id.
func Join(table string, records []models.LyricsRecord, tokens map[int64]models.TokenRecord) *ArtistExport {
	export := &ArtistExport{Table: table, Songs: make([]Song, 0, len(records))}
	for _, rec := range records {
		song := Song{ID: rec.ID, Title: rec.SongTitle, Lyrics: rec.Lyrics}
		if tok, ok := tokens[rec.ID]; ok {
			song.TokenIDs = tok.Encoding.IDs
			song.AttentionMask = tok.Encoding.AttentionMask
		}
		export.Songs = append(export.Songs, song)
	}
	return export
}

// ExportToText writes every song as a "--- title ---" block followed by its lyrics.
func ExportToText(export *ArtistExport) ([]byte, error) {
	var buf bytes.Buffer
	for _, song := range export.Songs {
		fmt.Fprintf(&buf, "\n\n--- %s ---\n", song.Title)
		buf.WriteString(song.Lyrics + "\n")
	}
	return buf.Bytes(), nil
}

// ExportToJSON converts an ArtistExport to indented JSON.
func ExportToJSON(export *ArtistExport) ([]byte, error) {
	return shared.MarshalJSON(export, true)
}

// ExportToCSV converts an ArtistExport to CSV with columns: ID, Title, Lyrics, TokenIDs
func ExportToCSV(export *ArtistExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Lyrics", "TokenIDs"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, song := range export.Songs {
		record := []string{
			strconv.FormatInt(song.ID, 10),
			song.Title,
			song.Lyrics,
			models.JoinIDs(song.TokenIDs),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// Export renders export in the named format.
func Export(export *ArtistExport, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", FormatText:
		return ExportToText(export)
	case FormatJSON:
		return ExportToJSON(export)
	case FormatCSV:
		return ExportToCSV(export)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q (use txt, json or csv)", shared.ErrInvalidArgument, format)
	}
}

// WriteExport writes data to path, creating parent directories, or to w when path is empty.
func WriteExport(data []byte, path string, w io.Writer) error {
	if path == "" {
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}
	return nil
}
