// package services defines the external API clients used by the crawler and the search engine
//
// Spotify (catalog), Genius (lyrics)
package services

import (
	"context"

	"github.com/desertthunder/hearify/internal/models"
)

// Catalog defines the music catalog operations the application relies on.
type Catalog interface {
	// PlaylistTracks returns up to limit entries of a playlist in playlist order.
	// Entries for tracks removed from the catalog are nil.
	PlaylistTracks(ctx context.Context, playlistID string, limit int) ([]*models.Track, error)

	// SearchTracks runs a keyword track search and returns up to limit tracks in catalog order.
	SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// Lyrics defines lyric lookups by title and artist.
type Lyrics interface {
	// SearchLyrics returns the lyrics of the best match for title and artist,
	// or an error wrapping [shared.ErrLyricsNotFound] when the service has none.
	SearchLyrics(ctx context.Context, title, artist string) (*models.Lyrics, error)

	// Name returns the name of the service (e.g., "Genius")
	Name() string
}
