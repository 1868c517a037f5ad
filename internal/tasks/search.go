package tasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/hearify/internal/metrics"
	"github.com/desertthunder/hearify/internal/models"
	"github.com/desertthunder/hearify/internal/services"
	"github.com/desertthunder/hearify/internal/shared"
)

// SearchResponse is the answer to a single query.
type SearchResponse struct {
	Query   string                `json:"query"`             // Trimmed query text
	Results []models.SearchResult `json:"results"`           // Local matches, or catalog matches when there are none
	Warning string                `json:"warning,omitempty"` // Set when the catalog fallback failed
}

// Source reports where the results came from, or the empty string when there are none.
func (r *SearchResponse) Source() models.Source {
	if len(r.Results) == 0 {
		return ""
	}
	return r.Results[0].Source
}

// SearchEngine answers lyric queries.
//
// Local substring matches take priority; the catalog is only queried when the store has none.
// Local and catalog results are never merged.
type SearchEngine struct {
	store   SongStore
	catalog services.Catalog
	logger  *log.Logger
	limit   int
}

// NewSearchEngine creates a [SearchEngine]. catalog may be nil, in which case
// every fallback reports a warning.
func NewSearchEngine(store SongStore, catalog services.Catalog, logger *log.Logger) *SearchEngine {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &SearchEngine{
		store:   store,
		catalog: catalog,
		logger:  shared.WithLogger(logger, "component", "search"),
		limit:   SearchLimit,
	}
}

// Search trims query, looks for stored lyrics containing it and falls back to the catalog.
//
// A catalog failure is reported through [SearchResponse.Warning] and never as an error;
// a store failure is returned as an error.
func (e *SearchEngine) Search(ctx context.Context, query string) (*SearchResponse, error) {
	resp := &SearchResponse{Query: strings.TrimSpace(query), Results: []models.SearchResult{}}
	if resp.Query == "" {
		return resp, nil
	}

	songs, err := e.store.FindBySubstring(ctx, resp.Query, e.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search stored lyrics: %w", err)
	}

	if len(songs) > 0 {
		for _, song := range songs {
			resp.Results = append(resp.Results, models.SearchResultFromSong(song))
		}
		metrics.ObserveSearch(string(models.SourceLocal))
		e.logger.Debug("Local matches", "query", resp.Query, "count", len(songs))
		return resp, nil
	}

	tracks, err := e.searchCatalog(ctx, resp.Query)
	if err != nil {
		metrics.ObserveCatalogError()
		e.logger.Warn("Catalog search failed", "query", resp.Query, "error", err)
		resp.Warning = CatalogWarningPrefix + err.Error()
		return resp, nil
	}

	for _, track := range tracks {
		resp.Results = append(resp.Results, models.SearchResultFromTrack(track))
	}

	source := string(models.SourceCatalog)
	if len(tracks) == 0 {
		source = "none"
	}
	metrics.ObserveSearch(source)
	e.logger.Debug("Catalog matches", "query", resp.Query, "count", len(tracks))
	return resp, nil
}

func (e *SearchEngine) searchCatalog(ctx context.Context, query string) ([]models.Track, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog credentials are not configured", shared.ErrMissingCredentials)
	}
	return e.catalog.SearchTracks(ctx, query, e.limit)
}
