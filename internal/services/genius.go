// Genius API implementation of [Lyrics]
//
// Song search goes through the documented API (https://docs.genius.com/#search-h2);
// lyrics are not exposed by the API and are scraped from the song page.
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"github.com/desertthunder/hearify/internal/models"
	"github.com/desertthunder/hearify/internal/shared"
	"golang.org/x/time/rate"
)

const (
	geniusBaseURL        = "https://api.genius.com"
	geniusTimeout        = 15 * time.Second
	geniusRetries        = 3
	geniusLyricsSelector = `div[data-lyrics-container="true"]`
)

var (
	sectionHeaderPattern = regexp.MustCompile(`(?m)^[ \t]*\[[^\]\n]*\][ \t]*(\n|$)`)
	blankLinesPattern    = regexp.MustCompile(`\n{3,}`)
)

// GeniusArtist is the primary artist attached to a search hit.
type GeniusArtist struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// GeniusSong is the song payload of a search hit.
type GeniusSong struct {
	ID            int          `json:"id"`
	Title         string       `json:"title"`
	URL           string       `json:"url"`
	LyricsState   string       `json:"lyrics_state"`
	PrimaryArtist GeniusArtist `json:"primary_artist"`
}

// GeniusHit is a single search hit.
type GeniusHit struct {
	Type   string     `json:"type"`
	Result GeniusSong `json:"result"`
}

// GeniusSearchResponse represents the /search envelope.
type GeniusSearchResponse struct {
	Meta struct {
		Status int `json:"status"`
	} `json:"meta"`
	Response struct {
		Hits []GeniusHit `json:"hits"`
	} `json:"response"`
}

// GeniusOpts configures a [GeniusService].
type GeniusOpts struct {
	AccessToken       string
	BaseURL           string        // Defaults to https://api.genius.com
	HTTPClient        *http.Client  // Defaults to a client with a 15s timeout
	Retries           int           // Retries for transient failures, defaults to 3
	RetryInterval     time.Duration // Initial backoff interval, defaults to the backoff package default
	RequestsPerSecond float64       // Zero or less disables throttling
}

// GeniusService implements [Lyrics] against the Genius API and song pages.
type GeniusService struct {
	token         string
	baseURL       string
	httpClient    *http.Client
	limiter       *rate.Limiter
	retries       int
	retryInterval time.Duration
}

// NewGeniusService creates a Genius client. The access token is required.
func NewGeniusService(opts GeniusOpts) (*GeniusService, error) {
	if opts.AccessToken == "" {
		return nil, fmt.Errorf("%w: missing genius access token", shared.ErrMissingCredentials)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = geniusBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: geniusTimeout}
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	} else if opts.Retries == 0 {
		opts.Retries = geniusRetries
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &GeniusService{
		token:         opts.AccessToken,
		baseURL:       strings.TrimSuffix(opts.BaseURL, "/"),
		httpClient:    opts.HTTPClient,
		limiter:       rate.NewLimiter(limit, 1),
		retries:       opts.Retries,
		retryInterval: opts.RetryInterval,
	}, nil
}

func (g *GeniusService) Name() string {
	return "Genius"
}

// SearchLyrics finds the best song hit for title and artist and scrapes its lyrics.
func (g *GeniusService) SearchLyrics(ctx context.Context, title, artist string) (*models.Lyrics, error) {
	hits, err := g.Search(ctx, strings.TrimSpace(title+" "+artist))
	if err != nil {
		return nil, err
	}

	song := bestHit(hits, title, artist)
	if song == nil {
		return nil, fmt.Errorf("%w: no genius match for %q by %q", shared.ErrLyricsNotFound, title, artist)
	}

	text, err := g.ScrapeLyrics(ctx, song.URL)
	if err != nil {
		return nil, err
	}

	return &models.Lyrics{
		Title:  song.Title,
		Artist: song.PrimaryArtist.Name,
		URL:    song.URL,
		Text:   text,
	}, nil
}

// Search queries the Genius search endpoint.
func (g *GeniusService) Search(ctx context.Context, query string) ([]GeniusHit, error) {
	params := url.Values{}
	params.Set("q", query)

	body, err := g.fetch(ctx, g.baseURL+"/search?"+params.Encode(), true)
	if err != nil {
		return nil, err
	}

	var response GeniusSearchResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("%w: failed to decode genius response: %v", shared.ErrAPIRequest, err)
	}
	return response.Response.Hits, nil
}

// ScrapeLyrics downloads a song page and extracts the lyric text with section headers removed.
func (g *GeniusService) ScrapeLyrics(ctx context.Context, pageURL string) (string, error) {
	body, err := g.fetch(ctx, pageURL, false)
	if err != nil {
		return "", err
	}

	text, err := ExtractLyrics(strings.NewReader(string(body)))
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", fmt.Errorf("%w: empty lyrics at %s", shared.ErrLyricsNotFound, pageURL)
	}
	return text, nil
}

// ExtractLyrics parses a Genius song page.
//
// Line breaks inside lyric containers become newlines and bracketed section headers
// such as "[Chorus]" are dropped.
func ExtractLyrics(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("%w: failed to parse lyrics page: %v", shared.ErrAPIRequest, err)
	}

	var parts []string
	doc.Find(geniusLyricsSelector).Each(func(_ int, s *goquery.Selection) {
		s.Find(`[data-exclude-from-selection="true"]`).Remove()
		s.Find("br").ReplaceWithHtml("\n")
		parts = append(parts, s.Text())
	})

	return CleanLyrics(strings.Join(parts, "\n")), nil
}

// CleanLyrics removes section header lines and collapses runs of blank lines.
func CleanLyrics(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = sectionHeaderPattern.ReplaceAllString(text, "")
	text = blankLinesPattern.ReplaceAllString(text, "\n\n")
	return strings.TrimSpace(text)
}

// bestHit prefers a song whose title and primary artist match exactly (ignoring case),
// otherwise the first song hit.
func bestHit(hits []GeniusHit, title, artist string) *GeniusSong {
	var first *GeniusSong
	for i := range hits {
		if hits[i].Type != "song" || hits[i].Result.URL == "" {
			continue
		}

		song := &hits[i].Result
		if first == nil {
			first = song
		}
		if strings.EqualFold(song.Title, title) && strings.EqualFold(song.PrimaryArtist.Name, artist) {
			return song
		}
	}
	return first
}

// fetch performs a throttled GET with retries on network errors, 429 and 5xx responses.
func (g *GeniusService) fetch(ctx context.Context, target string, authorized bool) ([]byte, error) {
	var opts []backoff.ExponentialBackOffOpts
	if g.retryInterval > 0 {
		opts = append(opts, backoff.WithInitialInterval(g.retryInterval))
	}
	policy := backoff.NewExponentialBackOff(opts...)

	var body []byte
	operation := func() error {
		if err := g.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		if authorized {
			req.Header.Set("Authorization", "Bearer "+g.token)
			req.Header.Set("Accept", "application/json")
		}

		resp, err := g.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			return fmt.Errorf("%w: %w: genius request failed: %v", shared.ErrAPIRequest, shared.ErrServiceUnavailable, err)
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusTooManyRequests:
			return fmt.Errorf("%w: %w: genius status %d", shared.ErrAPIRequest, shared.ErrRateLimited, resp.StatusCode)
		case resp.StatusCode >= 500:
			return fmt.Errorf("%w: %w: genius status %d", shared.ErrAPIRequest, shared.ErrServiceUnavailable, resp.StatusCode)
		case resp.StatusCode == http.StatusNotFound:
			return backoff.Permanent(fmt.Errorf("%w: genius page not found", shared.ErrLyricsNotFound))
		case resp.StatusCode < 200 || resp.StatusCode >= 300:
			return backoff.Permanent(fmt.Errorf("%w: genius status %d", shared.ErrAPIRequest, resp.StatusCode))
		}

		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%w: %w: failed to read genius response: %v", shared.ErrAPIRequest, shared.ErrServiceUnavailable, err)
		}
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(policy, uint64(g.retries)), ctx)); err != nil {
		return nil, err
	}
	return body, nil
}
