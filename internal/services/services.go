// package services defines interface Provider for interacting with lyrics provider HTTP APIs
//
// Genius
package services

import (
	"context"
)

// Provider defines the narrow slice of a lyrics provider used by the ingest pipeline:
// artist search, paginated artist songs and raw song pages.
type Provider interface {
	// Search returns the hits for a free-text query, in provider ranking order.
	Search(ctx context.Context, query string) ([]SearchHit, error)

	// ArtistSongs returns one page (1-based) of an artist's songs.
	// An empty Songs slice means there are no more pages.
	ArtistSongs(ctx context.Context, artistID int64, page, perPage int) (*SongsPage, error)

	// FetchPage returns the raw HTML body of a song page.
	FetchPage(ctx context.Context, pageURL string) ([]byte, error)

	// Name returns the name of the provider (e.g., "Genius")
	Name() string
}

// ArtistRef is the artist object embedded in provider payloads.
type ArtistRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// SearchHit is one result of a search query.
type SearchHit struct {
	Type   string    `json:"type"`
	Result HitResult `json:"result"`
}

// HitResult carries the fields of a search hit the resolver needs.
type HitResult struct {
	Title         string    `json:"title"`
	URL           string    `json:"url"`
	PrimaryArtist ArtistRef `json:"primary_artist"`
}

// Song is a song listed on an artist's songs page.
type Song struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	URL           string    `json:"url"`
	PrimaryArtist ArtistRef `json:"primary_artist"`
}

// SongsPage is one page of an artist's songs.
type SongsPage struct {
	Songs    []Song `json:"songs"`
	NextPage *int   `json:"next_page"`
}
