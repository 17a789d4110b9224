// Genius API implementation of [Provider]
//
// Response shapes based on https://docs.genius.com/
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/lyrx/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const geniusBaseURL = "https://api.genius.com"

type searchEnvelope struct {
	Response struct {
		Hits []SearchHit `json:"hits"`
	} `json:"response"`
}

type songsEnvelope struct {
	Response SongsPage `json:"response"`
}

// GeniusOpts contains configuration for creating a [GeniusService].
type GeniusOpts struct {
	BaseURL    string        // API root, defaults to https://api.genius.com
	Token      string        // Bearer token (required)
	Delay      time.Duration // Minimum spacing between requests; 0 disables limiting
	HTTPClient *http.Client  // Base client whose transport carries the requests
}

// GeniusService implements [Provider] against the Genius REST API.
type GeniusService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewGeniusService creates a rate-limited, bearer-authenticated Genius client.
func NewGeniusService(opts GeniusOpts) (*GeniusService, error) {
	if strings.TrimSpace(opts.Token) == "" {
		return nil, fmt.Errorf("%w: genius token is empty", shared.ErrMissingCredentials)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = geniusBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, opts.HTTPClient)
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.Token, TokenType: "Bearer"})

	limit := rate.Inf
	if opts.Delay > 0 {
		limit = rate.Every(opts.Delay)
	}

	return &GeniusService{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: oauth2.NewClient(ctx, src),
		limiter:    rate.NewLimiter(limit, 1),
	}, nil
}

func (g *GeniusService) Name() string {
	return "Genius"
}

// Search queries /search and returns the hits in ranking order.
func (g *GeniusService) Search(ctx context.Context, query string) ([]SearchHit, error) {
	params := url.Values{"q": {query}}

	var envelope searchEnvelope
	if err := g.getJSON(ctx, g.baseURL+"/search?"+params.Encode(), &envelope); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return envelope.Response.Hits, nil
}

// ArtistSongs fetches one page of /artists/{id}/songs.
func (g *GeniusService) ArtistSongs(ctx context.Context, artistID int64, page, perPage int) (*SongsPage, error) {
	params := url.Values{
		"per_page": {strconv.Itoa(perPage)},
		"page":     {strconv.Itoa(page)},
	}
	endpoint := fmt.Sprintf("%s/artists/%d/songs?%s", g.baseURL, artistID, params.Encode())

	var envelope songsEnvelope
	if err := g.getJSON(ctx, endpoint, &envelope); err != nil {
		return nil, fmt.Errorf("artist %d songs page %d: %w", artistID, page, err)
	}
	return &envelope.Response, nil
}

// FetchPage downloads a song page.
func (g *GeniusService) FetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	body, err := g.get(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	return body, nil
}

func (g *GeniusService) getJSON(ctx context.Context, endpoint string, result any) error {
	body, err := g.get(ctx, endpoint)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
	}
	return nil
}

// get performs a rate-limited GET and classifies failures into [shared.ErrNetwork] or [shared.ErrAPIRequest].
func (g *GeniusService) get(ctx context.Context, endpoint string) ([]byte, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", shared.ErrAPIRequest, err)
	}
	req.Header.Set("Accept", "application/json, text/html")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: request failed: %v", shared.ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrNetwork, err)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", shared.ErrNetwork, resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("%w: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	return body, nil
}
