package tasks

import (
	"context"

	"github.com/desertthunder/hearify/internal/models"
)

const (
	// SearchLimit caps both local and catalog results.
	SearchLimit = 20
	// CatalogWarningPrefix starts the warning surfaced when the catalog fallback fails.
	CatalogWarningPrefix = "Spotify search error: "
)

// SongStore is the subset of the song repository used by the engines.
type SongStore interface {
	Insert(ctx context.Context, song *models.Song) error
	ExistsByTitleArtist(ctx context.Context, title, artist string) (bool, error)
	FindBySubstring(ctx context.Context, text string, limit int) ([]*models.Song, error)
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
