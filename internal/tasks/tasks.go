package tasks

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/desertthunder/lyrx/internal/lyrics"
	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/repositories"
	"github.com/desertthunder/lyrx/internal/shared"
	"github.com/desertthunder/lyrx/internal/tokenizer"
)

// Skip reasons reported in [RunResult.Skipped].
const (
	SkipExtraction = "extraction_failed"
	SkipNoVerses   = "no_verses"
	SkipDuplicate  = "duplicate"
	SkipTokenizer  = "tokenizer"
	SkipNetwork    = "network"
	SkipAPI        = "api"
)

// NetworkPolicy decides what a transient network error does to a run.
type NetworkPolicy int

const (
	SkipOnNetworkError NetworkPolicy = iota
	AbortOnNetworkError
)

// ParseNetworkPolicy maps "skip" (or "") and "abort" to a [NetworkPolicy].
func ParseNetworkPolicy(s string) (NetworkPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "skip":
		return SkipOnNetworkError, nil
	case "abort":
		return AbortOnNetworkError, nil
	default:
		return 0, fmt.Errorf("%w: network policy %q", shared.ErrInvalidConfig, s)
	}
}

// Catalog resolves artists and lists their songs.
type Catalog interface {
	ResolveArtist(ctx context.Context, query string) (*models.Artist, error)
	Songs(ctx context.Context, artist models.Artist, includeFeatures bool) iter.Seq2[models.SongReference, error]
}

// LyricsSource extracts the verses credited to an artist from a song page.
type LyricsSource interface {
	Extract(ctx context.Context, pageURL, artistName string) (*lyrics.Result, error)
}

// Reporter receives structured log events. [*log.Logger] satisfies it.
type Reporter interface {
	Info(msg any, keyvals ...any)
	Warn(msg any, keyvals ...any)
	Error(msg any, keyvals ...any)
}

// Indicator is a busy indicator shown while songs are processed.
type Indicator interface {
	Start(msg string)
	Stop()
}

// Request describes one ingest run.
type Request struct {
	Artist          string // Free-text artist query
	MaxSongs        int    // Stop after this many stored songs; 0 means no limit
	IncludeFeatures bool   // Keep songs whose primary artist is someone else
}

// RunResult summarizes an ingest run.
type RunResult struct {
	RunID   string
	Artist  models.Artist
	Stored  int
	Skipped map[string]int
}

// SkippedTotal sums skipped songs over every reason.
func (r *RunResult) SkippedTotal() int {
	total := 0
	for _, n := range r.Skipped {
		total += n
	}
	return total
}

// PipelineOpts contains the dependencies of a [Pipeline].
type PipelineOpts struct {
	Catalog   Catalog
	Source    LyricsSource
	Runner    tokenizer.Runner
	Stores    *repositories.Stores
	Reporter  Reporter
	Indicator Indicator // Optional
	Policy    NetworkPolicy
}

// Pipeline runs the resolve, discover, extract, tokenize and persist loop.
type Pipeline struct {
	catalog   Catalog
	source    LyricsSource
	runner    tokenizer.Runner
	stores    *repositories.Stores
	runs      *repositories.RunRepository
	reporter  Reporter
	indicator Indicator
	policy    NetworkPolicy
}

// NewPipeline creates a new Pipeline with the provided dependencies.
func NewPipeline(opts PipelineOpts) *Pipeline {
	indicator := opts.Indicator
	if indicator == nil {
		indicator = noopIndicator{}
	}

	return &Pipeline{
		catalog:   opts.Catalog,
		source:    opts.Source,
		runner:    opts.Runner,
		stores:    opts.Stores,
		runs:      repositories.NewRunRepository(opts.Stores.Lyrics),
		reporter:  opts.Reporter,
		indicator: indicator,
		policy:    opts.Policy,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (p *Pipeline) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// Run ingests the songs of the artist matching req.Artist.
//
// On resolution failure nothing is provisioned and the error is returned with
// a nil result. Once the session is open, the returned result always reflects
// what was stored, even alongside an error.
func (p *Pipeline) Run(ctx context.Context, req Request, progress chan<- ProgressUpdate) (*RunResult, error) {
	query := strings.TrimSpace(req.Artist)
	if query == "" {
		return nil, fmt.Errorf("%w: artist query is empty", shared.ErrInvalidInput)
	}

	runID, err := p.runs.Start(ctx, query)
	if err != nil {
		return nil, err
	}

	result := &RunResult{RunID: runID, Skipped: make(map[string]int)}
	status := models.RunCompleted
	defer func() {
		err := p.runs.Finish(context.WithoutCancel(ctx), runID, result.Artist.Table, result.Stored, result.SkippedTotal(), status)
		if err != nil {
			p.reporter.Error("failed to record run", "run", runID, "error", err)
		}
	}()

	p.sendProgress(progress, resolvingUpdate(query))
	artist, err := p.catalog.ResolveArtist(ctx, query)
	if err != nil {
		status = models.RunFailed
		return nil, err
	}
	result.Artist = *artist
	p.sendProgress(progress, resolvedUpdate(artist))
	p.reporter.Info("resolved artist", "query", query, "artist", artist.Name, "id", artist.ID, "table", artist.Table)

	p.indicator.Start(fmt.Sprintf("Scraping %s", artist.Name))
	defer p.indicator.Stop()

	err = p.stores.WithSession(ctx, func(s *repositories.Session) error {
		if err := s.Provision(ctx, *artist); err != nil {
			return err
		}
		return p.ingest(ctx, s, req, result, progress)
	})

	p.sendProgress(progress, finalizeUpdate(result))
	if err != nil {
		status = models.RunAborted
		p.reporter.Error("run aborted", "artist", artist.Name, "stored", result.Stored, "error", err)
		return result, err
	}

	p.reporter.Info("run complete", "artist", artist.Name, "stored", result.Stored, "skipped", result.SkippedTotal())
	return result, nil
}

func (p *Pipeline) ingest(ctx context.Context, s *repositories.Session, req Request, result *RunResult, progress chan<- ProgressUpdate) error {
	artist := result.Artist
	step := 0

	for song, err := range p.catalog.Songs(ctx, artist, req.IncludeFeatures) {
		if err != nil {
			if errors.Is(err, shared.ErrNetwork) && p.policy == SkipOnNetworkError {
				p.reporter.Warn("song discovery interrupted", "artist", artist.Name, "error", err)
				return nil
			}
			return fmt.Errorf("song discovery: %w", err)
		}

		step++
		p.sendProgress(progress, songUpdate(DiscoverSongs, step, req.MaxSongs, song.Title))

		id, err := p.process(ctx, s, artist, song, step, req.MaxSongs, progress)
		if err == nil {
			result.Stored++
			p.reporter.Info("stored song", "title", song.Title, "id", id)
			if req.MaxSongs > 0 && result.Stored >= req.MaxSongs {
				return nil
			}
			continue
		}

		reason, fatal := p.classify(ctx, err)
		if fatal {
			return err
		}

		result.Skipped[reason]++
		p.sendProgress(progress, skippedUpdate(step, req.MaxSongs, song.Title, reason))
		if reason == SkipTokenizer {
			p.reporter.Error("tokenizer failed", "title", song.Title, "url", song.URL, "error", err)
		} else {
			p.reporter.Warn("skipped song", "title", song.Title, "reason", reason, "error", err)
		}
	}
	return nil
}

func (p *Pipeline) process(ctx context.Context, s *repositories.Session, artist models.Artist, song models.SongReference, step, total int, progress chan<- ProgressUpdate) (int64, error) {
	p.sendProgress(progress, songUpdate(ExtractLyrics, step, total, song.Title))
	res, err := p.source.Extract(ctx, song.URL, artist.Name)
	if err != nil {
		return 0, err
	}
	if res.Solo {
		p.reporter.Info("extracted solo song", "title", song.Title)
	} else {
		p.reporter.Info("isolated artist verses", "title", song.Title, "sections", res.Sections)
	}

	p.sendProgress(progress, songUpdate(TokenizeLyrics, step, total, song.Title))
	enc, err := p.runner.Tokenize(ctx, res.Text)
	if err != nil {
		return 0, err
	}

	p.sendProgress(progress, songUpdate(PersistSong, step, total, song.Title))
	return s.Save(ctx, artist.Table, song.Title, res.Text, enc)
}

// classify maps a per-song error to a skip reason, or reports it as fatal.
func (p *Pipeline) classify(ctx context.Context, err error) (string, bool) {
	if ctx.Err() != nil {
		return "", true
	}

	switch {
	case errors.Is(err, shared.ErrNetwork):
		return SkipNetwork, p.policy == AbortOnNetworkError
	case errors.Is(err, shared.ErrExtractionFailed):
		return SkipExtraction, false
	case errors.Is(err, shared.ErrNoAttributableVerses):
		return SkipNoVerses, false
	case errors.Is(err, shared.ErrDuplicateSong):
		return SkipDuplicate, false
	case errors.Is(err, shared.ErrWorkerCrashed),
		errors.Is(err, shared.ErrWorkerTimeout),
		errors.Is(err, tokenizer.ErrTokenize):
		return SkipTokenizer, false
	case errors.Is(err, shared.ErrAPIRequest):
		return SkipAPI, false
	default:
		return "", true
	}
}

type noopIndicator struct{}

func (noopIndicator) Start(string) {}
func (noopIndicator) Stop()        {}
