// Spotify API implementation of [Catalog]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/desertthunder/hearify/internal/models"
	"github.com/desertthunder/hearify/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// Page size limits enforced by the Web API.
	spotifyPlaylistPageSize = 50
	spotifySearchMaxLimit   = 50
)

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

type externalURLs struct {
	Spotify string `json:"spotify"`
}

// SpotifyArtist represents a simplified Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// SpotifyAlbum represents a simplified Spotify album.
type SpotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []SpotifyImage `json:"images"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Artists      []SpotifyArtist `json:"artists"`
	Album        SpotifyAlbum    `json:"album"`
	ExternalURLs externalURLs    `json:"external_urls"`
	PreviewURL   *string         `json:"preview_url"`
	URI          string          `json:"uri"`
}

// Track converts the API representation into a [models.Track].
func (t SpotifyTrack) Track() models.Track {
	track := models.Track{
		ID:         t.ID,
		Title:      t.Name,
		URL:        t.ExternalURLs.Spotify,
		PreviewURL: t.PreviewURL,
	}

	if len(t.Artists) > 0 {
		track.Artist = t.Artists[0].Name
	}

	for _, img := range t.Album.Images {
		track.AlbumCovers = append(track.AlbumCovers, img.URL)
	}

	return track
}

// SpotifyPlaylistTrack represents a track within a playlist context.
//
// Track is nil when the track was removed from Spotify.
type SpotifyPlaylistTrack struct {
	AddedAt string        `json:"added_at"`
	Track   *SpotifyTrack `json:"track"`
}

// SpotifyPlaylistTracksPage represents one page of playlist items.
type SpotifyPlaylistTracksPage struct {
	Items  []SpotifyPlaylistTrack `json:"items"`
	Total  int                    `json:"total"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
	Next   *string                `json:"next"`
}

// SpotifySearchResponse represents the response of a track search.
type SpotifySearchResponse struct {
	Tracks struct {
		Items []SpotifyTrack `json:"items"`
		Total int            `json:"total"`
	} `json:"tracks"`
}

// SpotifyOpts configures a [SpotifyService].
type SpotifyOpts struct {
	ClientID     string
	ClientSecret string
	TokenURL     string       // Defaults to the Spotify accounts service
	BaseURL      string       // Defaults to the Spotify Web API
	HTTPClient   *http.Client // Transport used for both token and API requests
}

// SpotifyService implements [Catalog] against the Spotify Web API.
//
// Requests are authenticated with the OAuth2 client-credentials flow; tokens are fetched and refreshed by [oauth2].
type SpotifyService struct {
	baseURL    string
	httpClient *http.Client
}

// NewSpotifyService creates a Spotify client. Both client id and secret are required.
func NewSpotifyService(opts SpotifyOpts) (*SpotifyService, error) {
	if opts.ClientID == "" {
		return nil, fmt.Errorf("%w: missing spotify client_id", shared.ErrMissingCredentials)
	}
	if opts.ClientSecret == "" {
		return nil, fmt.Errorf("%w: missing spotify client_secret", shared.ErrMissingCredentials)
	}
	if opts.TokenURL == "" {
		opts.TokenURL = spotifyTokenURL
	}
	if opts.BaseURL == "" {
		opts.BaseURL = spotifyBaseURL
	}

	config := &clientcredentials.Config{
		ClientID:     opts.ClientID,
		ClientSecret: opts.ClientSecret,
		TokenURL:     opts.TokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}

	tokenCtx := context.Background()
	if opts.HTTPClient != nil {
		tokenCtx = context.WithValue(tokenCtx, oauth2.HTTPClient, opts.HTTPClient)
	}

	return &SpotifyService{
		baseURL:    opts.BaseURL,
		httpClient: config.Client(tokenCtx),
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// doRequest performs an authenticated GET against the Spotify API and decodes the JSON response into result.
//
// A 404 is reported as notFound, which callers pick for the resource they asked for.
func (s *SpotifyService) doRequest(ctx context.Context, endpoint string, notFound error, result any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: spotify request failed: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: spotify API error: status %d", notFound, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %w: spotify retry after %ss", shared.ErrAPIRequest, shared.ErrRateLimited, resp.Header.Get("Retry-After"))
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return fmt.Errorf("%w: spotify API error: status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", shared.ErrAPIRequest, err)
	}
	return nil
}

// PlaylistTracksPage retrieves one page of playlist items.
func (s *SpotifyService) PlaylistTracksPage(ctx context.Context, playlistID string, limit, offset int) (*SpotifyPlaylistTracksPage, error) {
	if limit <= 0 || limit > spotifyPlaylistPageSize {
		limit = spotifyPlaylistPageSize
	}

	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(offset))
	endpoint := fmt.Sprintf("/playlists/%s/tracks?%s", url.PathEscape(playlistID), params.Encode())

	var page SpotifyPlaylistTracksPage
	if err := s.doRequest(ctx, endpoint, shared.ErrPlaylistNotFound, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// PlaylistTracks pages through a playlist until limit entries were read or the playlist ends.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, playlistID string, limit int) ([]*models.Track, error) {
	if playlistID == "" {
		return nil, fmt.Errorf("%w: playlist id is required", shared.ErrMissingArgument)
	}
	if limit <= 0 {
		return nil, nil
	}

	tracks := make([]*models.Track, 0, min(limit, spotifyPlaylistPageSize))
	offset := 0

	for len(tracks) < limit {
		page, err := s.PlaylistTracksPage(ctx, playlistID, min(limit-len(tracks), spotifyPlaylistPageSize), offset)
		if err != nil {
			return nil, err
		}

		for _, item := range page.Items {
			if len(tracks) == limit {
				break
			}
			if item.Track == nil || item.Track.Name == "" {
				tracks = append(tracks, nil)
				continue
			}
			track := item.Track.Track()
			tracks = append(tracks, &track)
		}

		if page.Next == nil || len(page.Items) == 0 {
			break
		}
		offset += len(page.Items)
	}

	return tracks, nil
}

// SearchTracks performs a keyword track search.
func (s *SpotifyService) SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error) {
	if limit <= 0 || limit > spotifySearchMaxLimit {
		limit = spotifySearchMaxLimit
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", strconv.Itoa(limit))

	var response SpotifySearchResponse
	if err := s.doRequest(ctx, "/search?"+params.Encode(), shared.ErrAPIRequest, &response); err != nil {
		return nil, err
	}

	tracks := make([]models.Track, 0, len(response.Tracks.Items))
	for _, item := range response.Tracks.Items {
		tracks = append(tracks, item.Track())
	}
	return tracks, nil
}
