package tasks

import (
	"fmt"

	"github.com/desertthunder/lyrx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase; 0 when unknown
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	ResolveArtist Phase = iota
	DiscoverSongs
	ExtractLyrics
	TokenizeLyrics
	PersistSong
	Finalize
)

func (p Phase) String() string {
	switch p {
	case ResolveArtist:
		return "resolve_artist"
	case DiscoverSongs:
		return "discover_songs"
	case ExtractLyrics:
		return "extract_lyrics"
	case TokenizeLyrics:
		return "tokenize_lyrics"
	case PersistSong:
		return "persist_song"
	case Finalize:
		return "finalize"
	default:
		return ""
	}
}

func resolvingUpdate(query string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveArtist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Resolving %q...", query),
	}
}

func resolvedUpdate(artist *models.Artist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ResolveArtist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Resolved %s (table %s)", artist.Name, artist.Table),
		Data:    artist,
	}
}

func songUpdate(phase Phase, step, total int, title string) ProgressUpdate {
	prefix := fmt.Sprintf("[%d]", step)
	if total > 0 {
		prefix = fmt.Sprintf("[%d/%d]", step, total)
	}

	var verb string
	switch phase {
	case ExtractLyrics:
		verb = "Extracting"
	case TokenizeLyrics:
		verb = "Tokenizing"
	case PersistSong:
		verb = "Saving"
	default:
		verb = "Discovered"
	}

	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("%s %s: %s", prefix, verb, title),
	}
}

func skippedUpdate(step, total int, title, reason string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PersistSong,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("✗ %s (%s)", title, reason),
	}
}

func finalizeUpdate(result *RunResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Finalize,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("✓ %d stored, %d skipped", result.Stored, result.SkippedTotal()),
		Data:    result,
	}
}
