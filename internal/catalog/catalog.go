package catalog

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/desertthunder/lyrx/internal/models"
	"github.com/desertthunder/lyrx/internal/services"
	"github.com/desertthunder/lyrx/internal/shared"
)

// DefaultPerPage is the page size requested from the artist songs endpoint.
const DefaultPerPage = 50

// Options configures a [Catalog].
type Options struct {
	PerPage          int      // Songs per page; defaults to [DefaultPerPage]
	ExcludedKeywords []string // Case-insensitive substrings that disqualify a title
}

// Catalog resolves artists and discovers their songs through a [services.Provider].
type Catalog struct {
	provider services.Provider
	perPage  int
	keywords []string
}

// New creates a Catalog backed by provider.
func New(provider services.Provider, opts Options) *Catalog {
	perPage := opts.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}

	keywords := make([]string, 0, len(opts.ExcludedKeywords))
	for _, k := range opts.ExcludedKeywords {
		if k = strings.TrimSpace(k); k != "" {
			keywords = append(keywords, strings.ToLower(k))
		}
	}

	return &Catalog{provider: provider, perPage: perPage, keywords: keywords}
}

// ResolveArtist maps query to the primary artist of the top search hit.
//
// Returns [shared.ErrArtistNotFound] when the search has no hits.
func (c *Catalog) ResolveArtist(ctx context.Context, query string) (*models.Artist, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: artist query is empty", shared.ErrInvalidInput)
	}

	hits, err := c.provider.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve artist: %w", err)
	}
	if len(hits) == 0 {
		return nil, fmt.Errorf("%w: %q", shared.ErrArtistNotFound, query)
	}

	primary := hits[0].Result.PrimaryArtist
	if primary.Name == "" {
		return nil, fmt.Errorf("%w: top hit for %q has no primary artist", shared.ErrArtistNotFound, query)
	}

	return &models.Artist{
		ID:    primary.ID,
		Name:  primary.Name,
		Table: shared.SanitizeIdentifier(primary.Name),
	}, nil
}

// Songs lists the artist's songs, deduplicated by normalized title and
// filtered by the keyword denylist. Unless includeFeatures is set, songs
// whose primary artist is someone else are dropped.
//
// Each call starts over from page 1. A page error is yielded once and ends
// the sequence.
func (c *Catalog) Songs(ctx context.Context, artist models.Artist, includeFeatures bool) iter.Seq2[models.SongReference, error] {
	return func(yield func(models.SongReference, error) bool) {
		seen := make(map[string]struct{})

		for page := 1; ; page++ {
			if err := ctx.Err(); err != nil {
				yield(models.SongReference{}, err)
				return
			}

			result, err := c.provider.ArtistSongs(ctx, artist.ID, page, c.perPage)
			if err != nil {
				yield(models.SongReference{}, err)
				return
			}
			if len(result.Songs) == 0 {
				return
			}

			for _, song := range result.Songs {
				key := shared.NormalizeTitle(song.Title)
				if _, dup := seen[key]; dup {
					continue
				}
				if c.excluded(song.Title) {
					continue
				}
				if !includeFeatures && !strings.EqualFold(song.PrimaryArtist.Name, artist.Name) {
					continue
				}

				seen[key] = struct{}{}
				if !yield(models.SongReference{Title: song.Title, URL: song.URL}, nil) {
					return
				}
			}
		}
	}
}

func (c *Catalog) excluded(title string) bool {
	lower := strings.ToLower(title)
	for _, k := range c.keywords {
		if strings.Contains(lower, k) {
			return true
		}
	}
	return false
}
