package shared

import "fmt"

var (
	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// API and service errors
	ErrAPIRequest     = fmt.Errorf("API request failed")
	ErrNetwork        = fmt.Errorf("transient network error")
	ErrArtistNotFound = fmt.Errorf("artist not found")

	// Per-song outcomes; the pipeline skips the song and keeps going
	ErrExtractionFailed     = fmt.Errorf("lyrics container not found")
	ErrNoAttributableVerses = fmt.Errorf("no verses attributable to artist")
	ErrDuplicateSong        = fmt.Errorf("duplicate song title")

	// Tokenizer worker errors
	ErrWorkerCrashed = fmt.Errorf("tokenizer worker crashed")
	ErrWorkerTimeout = fmt.Errorf("tokenizer worker timed out")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)
