// package shared defines shared helpers
package shared

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

// TablePrefix is prepended to sanitized identifiers that would otherwise start with a digit.
const TablePrefix = "artist_"

// reservedTables are the lyrics store's bookkeeping tables.
var reservedTables = map[string]bool{"artists": true, "runs": true, "schema_migrations": true}

var (
	parenthetical = regexp.MustCompile(`\s*\(.*?\)`)
	identInvalid  = regexp.MustCompile(`[^A-Za-z0-9_]`)
)

// NewLogger creates a new [log.Logger] instance with the specified [io.Writer], with timestamps and caller reporting enabled.
//
// The writer defaults to [os.Stderr]
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	opts := log.Options{ReportTimestamp: true, ReportCaller: true}
	return log.NewWithOptions(w, opts)
}

// NewFileLogger creates a [log.Logger] that appends to the file at path, creating parent directories as needed.
//
// Entries are written in logfmt so they stay greppable without a terminal.
func NewFileLogger(path string) (*log.Logger, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	opts := log.Options{ReportTimestamp: true, Formatter: log.LogfmtFormatter}
	return log.NewWithOptions(f, opts), nil
}

// WithLogger creates a child [log.Logger] with the specified key-value pairs added to all log entries.
func WithLogger(l *log.Logger, kv ...any) *log.Logger {
	return l.With(kv...)
}

// SetLogLevel sets the [log.Level] for the given [log.Logger].
func SetLogLevel(l *log.Logger, ll log.Level) {
	l.SetLevel(ll)
}

// GenerateID generates a new v4 [uuid.UUID] as a string
func GenerateID() string {
	return uuid.New().String()
}

// NormalizeTitle strips parenthetical qualifiers and folds case so that
// "Track A (Remix)" and "track a" compare equal.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(parenthetical.ReplaceAllString(title, "")))
}

// SanitizeIdentifier derives a SQL-safe table name from an artist display name.
//
// The result only contains [A-Za-z0-9_], never starts with a digit, is never
// a reserved name (see [IsReservedIdentifier]), and
// SanitizeIdentifier(SanitizeIdentifier(x)) == SanitizeIdentifier(x).
func SanitizeIdentifier(name string) string {
	ident := strings.ReplaceAll(strings.ToLower(name), " ", "_")
	ident = identInvalid.ReplaceAllString(ident, "")

	if ident == "" || (ident[0] >= '0' && ident[0] <= '9') || IsReservedIdentifier(ident) {
		ident = TablePrefix + ident
	}
	return ident
}

// IsReservedIdentifier reports whether name is a bookkeeping table or lies in
// SQLite's internal sqlite_ namespace. Comparison is case-insensitive.
func IsReservedIdentifier(name string) bool {
	lower := strings.ToLower(name)
	return reservedTables[lower] || strings.HasPrefix(lower, "sqlite_")
}

// MarshalJSON marshals v, indenting with two spaces when pretty is set.
func MarshalJSON(v any, pretty bool) ([]byte, error) {
	if pretty {
		return json.MarshalIndent(v, "", "  ")
	}
	return json.Marshal(v)
}
