// package models defines the data model for the lyric search service
package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/desertthunder/hearify/internal/shared"
)

// Column widths of the songs table.
const (
	MaxTitleLength  = 300
	MaxArtistLength = 300
	MaxURLLength    = 500
)

// PlaceholderURL is rendered for stored songs that carry no link.
const PlaceholderURL = "#"

// Model defines the base interface for all persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

var _ Model = (*Song)(nil)

// Song is a track with lyrics persisted by the crawler.
//
// Songs are written once and never updated.
type Song struct {
	id        string
	createdAt time.Time

	Title  string `json:"title"`
	Artist string `json:"artist"`
	Lyrics string `json:"lyrics"`
	URL    string `json:"url"`
}

// NewSong creates an unsaved Song. The store assigns its ID on insert.
func NewSong(title, artist, lyrics, url string) *Song {
	return &Song{
		createdAt: time.Now().UTC(),
		Title:     title,
		Artist:    artist,
		Lyrics:    lyrics,
		URL:       url,
	}
}

func (s *Song) ID() string           { return s.id }
func (s *Song) CreatedAt() time.Time { return s.createdAt }

// SetID sets the identifier; used by the store.
func (s *Song) SetID(id string) { s.id = id }

// SetCreatedAt sets the creation timestamp; used by the store when scanning rows.
func (s *Song) SetCreatedAt(t time.Time) { s.createdAt = t }

// Validate rejects songs that would not fit the songs table.
//
// Oversized fields are an error; they are never truncated.
func (s *Song) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return fmt.Errorf("%w: title is required", shared.ErrValidation)
	}

	for _, f := range []struct {
		name  string
		value string
		max   int
	}{
		{"title", s.Title, MaxTitleLength},
		{"artist", s.Artist, MaxArtistLength},
		{"url", s.URL, MaxURLLength},
	} {
		if n := utf8.RuneCountInString(f.value); n > f.max {
			return fmt.Errorf("%w: %s is %d characters, limit is %d", shared.ErrValidation, f.name, n, f.max)
		}
	}

	return nil
}

// LinkOrPlaceholder returns the song URL, or [PlaceholderURL] when it is empty.
func (s *Song) LinkOrPlaceholder() string {
	if s.URL == "" {
		return PlaceholderURL
	}
	return s.URL
}

// MarshalJSON includes the store-assigned id and creation time.
func (s *Song) MarshalJSON() ([]byte, error) {
	type fields Song
	return json.Marshal(struct {
		ID        string    `json:"id"`
		CreatedAt time.Time `json:"created_at"`
		*fields
	}{s.id, s.createdAt, (*fields)(s)})
}

// Source identifies which backend answered a search.
type Source string

const (
	SourceLocal   Source = "local"
	SourceCatalog Source = "catalog"
)

// Label is the human-readable name of the source.
func (s Source) Label() string {
	switch s {
	case SourceLocal:
		return "Local"
	case SourceCatalog:
		return "Spotify"
	default:
		return string(s)
	}
}

// SearchResult is one row of a search response. It is never persisted.
type SearchResult struct {
	Title      string  `json:"title"`
	Artist     string  `json:"artist"`
	URL        string  `json:"url"`
	AlbumCover *string `json:"album_cover"`
	PreviewURL *string `json:"preview_url"`
	Source     Source  `json:"source"`
}

// SearchResultFromSong builds a local result. Local hits carry no cover or preview.
func SearchResultFromSong(s *Song) SearchResult {
	return SearchResult{
		Title:  s.Title,
		Artist: s.Artist,
		URL:    s.LinkOrPlaceholder(),
		Source: SourceLocal,
	}
}

// SearchResultFromTrack builds a catalog result.
func SearchResultFromTrack(t Track) SearchResult {
	return SearchResult{
		Title:      t.Title,
		Artist:     t.Artist,
		URL:        t.URL,
		AlbumCover: t.Cover(),
		PreviewURL: t.PreviewURL,
		Source:     SourceCatalog,
	}
}

// Track represents a catalog track.
type Track struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Artist      string   `json:"artist"`                 // Primary artist
	URL         string   `json:"url"`                    // External link to the track
	AlbumCovers []string `json:"album_covers,omitempty"` // Largest first
	PreviewURL  *string  `json:"preview_url"`
}

// Cover returns the preferred album cover URL or nil when the album has no images.
func (t Track) Cover() *string {
	if len(t.AlbumCovers) == 0 || t.AlbumCovers[0] == "" {
		return nil
	}
	cover := t.AlbumCovers[0]
	return &cover
}

// Lyrics is the result of a lyrics lookup.
type Lyrics struct {
	Title  string `json:"title"`
	Artist string `json:"artist"`
	URL    string `json:"url"`
	Text   string `json:"text"`
}
