// package models defines the data model shared by the ingest pipeline
package models

import (
	"database/sql"
	"strconv"
	"strings"
	"time"
)

// RunStatus is the terminal state recorded for an ingest run.
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunAborted   RunStatus = "aborted"
	RunFailed    RunStatus = "failed"
)

// Artist is the canonical identity a free-text query resolves to. Immutable for a run.
type Artist struct {
	ID    int64  // ID is the provider-assigned artist id
	Name  string // Name is the provider display name, used for verse matching
	Table string // Table is the sanitized per-artist table name
}

// SongReference is a discovered song, produced by discovery and consumed by extraction.
type SongReference struct {
	Title string
	URL   string
}

// LyricsRecord is a persisted lyrics row. SongTitle is unique within Table.
type LyricsRecord struct {
	ID        int64
	Table     string
	SongTitle string
	Lyrics    string
}

// Encoding is the tokenized form of a block of text.
//
// AttentionMask is either nil or the same length as IDs with values in {0,1}.
type Encoding struct {
	IDs           []uint32 `json:"ids"`
	AttentionMask []uint8  `json:"attention_mask,omitempty"`
}

// TokenRecord is a persisted tokens row. ID equals the paired [LyricsRecord.ID].
type TokenRecord struct {
	ID       int64
	Table    string
	Encoding Encoding
}

// Run is one row of the ingest log.
type Run struct {
	ID          string
	Query       string
	ArtistTable string
	Stored      int
	Skipped     int
	Status      RunStatus
	StartedAt   time.Time
	FinishedAt  sql.NullTime
}

// ArtistTable is a registered per-artist table and its row counts.
type ArtistTable struct {
	Table       string
	ProviderID  int64
	DisplayName string
	Songs       int
	Tokenized   int
	CreatedAt   time.Time
}

// JoinIDs serializes token ids as a comma-delimited string.
func JoinIDs(ids []uint32) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(uint64(id), 10)
	}
	return strings.Join(parts, ",")
}

// JoinMask serializes an attention mask as a comma-delimited string.
func JoinMask(mask []uint8) string {
	parts := make([]string, len(mask))
	for i, m := range mask {
		parts[i] = strconv.Itoa(int(m))
	}
	return strings.Join(parts, ",")
}

// SplitIDs parses a comma-delimited id sequence written by [JoinIDs].
func SplitIDs(s string) ([]uint32, error) {
	if s == "" {
		return []uint32{}, nil
	}
	fields := strings.Split(s, ",")
	ids := make([]uint32, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseUint(strings.TrimSpace(f), 10, 32)
		if err != nil {
			return nil, err
		}
		ids[i] = uint32(v)
	}
	return ids, nil
}
