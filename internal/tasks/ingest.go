package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/hearify/internal/metrics"
	"github.com/desertthunder/hearify/internal/models"
	"github.com/desertthunder/hearify/internal/services"
	"github.com/desertthunder/hearify/internal/shared"
)

// DefaultDelay is the pause after each successful insert.
const DefaultDelay = time.Second

// Outcome classifies what happened to a single playlist entry.
type Outcome string

const (
	OutcomeSkipped   Outcome = "skipped"   // Entry had no track (removed from the catalog)
	OutcomeDuplicate Outcome = "duplicate" // Title and artist already stored
	OutcomeInserted  Outcome = "inserted"
	OutcomeMissed    Outcome = "missed" // Lyrics provider has no lyrics
	OutcomeFailed    Outcome = "failed" // Lookup or storage error
)

// TrackOutcome records the result of processing one playlist entry.
type TrackOutcome struct {
	Position int     // 1-based position in the fetched playlist
	Title    string  // Track title (empty when skipped)
	Artist   string  // Primary artist (empty when skipped)
	Outcome  Outcome // Classification
	SongID   string  // Id of the inserted song
	Err      error   // Cause for failed outcomes
}

// IngestResult summarizes a crawler run.
type IngestResult struct {
	PlaylistID string         // Source playlist
	Fetched    int            // Playlist entries returned by the catalog
	Skipped    int            // Entries without a track
	Duplicates int            // Tracks already stored
	Inserted   int            // Songs written
	Missed     int            // Tracks without lyrics
	Failed     int            // Tracks whose lookup or insert failed
	Tracks     []TrackOutcome // Per-entry outcomes in playlist order
	Duration   time.Duration  // Wall time of the run
}

func (r *IngestResult) record(outcome TrackOutcome) {
	switch outcome.Outcome {
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeDuplicate:
		r.Duplicates++
	case OutcomeInserted:
		r.Inserted++
	case OutcomeMissed:
		r.Missed++
	case OutcomeFailed:
		r.Failed++
	}
	r.Tracks = append(r.Tracks, outcome)
}

// IngestOpts configures an [IngestEngine].
type IngestOpts struct {
	Catalog services.Catalog
	Lyrics  services.Lyrics
	Store   SongStore
	Logger  *log.Logger
	Delay   time.Duration // Pause after each insert; negative disables it
}

// IngestEngine copies playlist tracks that have lyrics into the song store.
//
// Tracks are processed sequentially; a failing track never aborts the run.
type IngestEngine struct {
	catalog services.Catalog
	lyrics  services.Lyrics
	store   SongStore
	logger  *log.Logger
	delay   time.Duration
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewIngestEngine creates an [IngestEngine]. A zero delay uses [DefaultDelay].
func NewIngestEngine(opts IngestOpts) *IngestEngine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Delay == 0 {
		opts.Delay = DefaultDelay
	} else if opts.Delay < 0 {
		opts.Delay = 0
	}

	return &IngestEngine{
		catalog: opts.Catalog,
		lyrics:  opts.Lyrics,
		store:   opts.Store,
		logger:  shared.WithLogger(opts.Logger, "component", "crawler"),
		delay:   opts.Delay,
		sleep:   sleepContext,
	}
}

// Run fetches up to maxTracks entries of a playlist and stores every track with lyrics
// that is not stored yet.
//
// A playlist fetch failure aborts the run. Cancelling ctx stops the run between tracks
// and returns the partial result together with the context error.
func (e *IngestEngine) Run(ctx context.Context, playlistID string, maxTracks int, progress chan<- ProgressUpdate) (*IngestResult, error) {
	if e.catalog == nil {
		return nil, fmt.Errorf("%w: catalog service not initialized", shared.ErrServiceUnavailable)
	}
	if e.lyrics == nil {
		return nil, fmt.Errorf("%w: lyrics service not initialized", shared.ErrServiceUnavailable)
	}
	if e.store == nil {
		return nil, fmt.Errorf("%w: song store not initialized", shared.ErrStorage)
	}

	start := time.Now()
	result := &IngestResult{PlaylistID: playlistID}

	sendProgress(progress, fetchPlaylistUpdate(playlistID, maxTracks))
	e.logger.Info("Fetching playlist", "playlist", playlistID, "limit", maxTracks)

	tracks, err := e.catalog.PlaylistTracks(ctx, playlistID, maxTracks)
	if err != nil {
		if errors.Is(err, shared.ErrAPIRequest) {
			return nil, fmt.Errorf("failed to fetch playlist %s: %w", playlistID, err)
		}
		return nil, fmt.Errorf("%w: failed to fetch playlist %s: %w", shared.ErrAPIRequest, playlistID, err)
	}

	result.Fetched = len(tracks)
	sendProgress(progress, fetchedPlaylistUpdate(len(tracks)))

	for i, track := range tracks {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(start)
			return result, err
		}

		outcome := e.processTrack(ctx, track)
		outcome.Position = i + 1
		result.record(outcome)
		metrics.ObserveIngest(string(outcome.Outcome))
		sendProgress(progress, trackUpdate(i+1, len(tracks), outcome))

		if outcome.Outcome == OutcomeInserted {
			if err := e.sleep(ctx, e.delay); err != nil {
				result.Duration = time.Since(start)
				return result, err
			}
		}
	}

	result.Duration = time.Since(start)
	sendProgress(progress, summaryUpdate(result))
	e.logger.Info("Crawl finished",
		"fetched", result.Fetched,
		"inserted", result.Inserted,
		"duplicates", result.Duplicates,
		"missed", result.Missed,
		"failed", result.Failed,
		"skipped", result.Skipped,
		"duration", result.Duration.Round(time.Millisecond),
	)
	return result, nil
}

// processTrack runs the exists → lookup → insert pipeline for one playlist entry.
func (e *IngestEngine) processTrack(ctx context.Context, track *models.Track) TrackOutcome {
	if track == nil {
		e.logger.Debug("Skipping removed track")
		return TrackOutcome{Outcome: OutcomeSkipped}
	}

	outcome := TrackOutcome{Title: track.Title, Artist: track.Artist}

	exists, err := e.store.ExistsByTitleArtist(ctx, track.Title, track.Artist)
	if err != nil {
		e.logger.Error("Failed to check song", "title", track.Title, "artist", track.Artist, "error", err)
		outcome.Outcome, outcome.Err = OutcomeFailed, err
		return outcome
	}
	if exists {
		e.logger.Info("Skipping stored song", "title", track.Title, "artist", track.Artist)
		outcome.Outcome = OutcomeDuplicate
		return outcome
	}

	lyrics, err := e.lyrics.SearchLyrics(ctx, track.Title, track.Artist)
	switch {
	case errors.Is(err, shared.ErrLyricsNotFound):
		e.logger.Info("No lyrics found", "title", track.Title, "artist", track.Artist)
		outcome.Outcome = OutcomeMissed
		return outcome
	case err != nil:
		e.logger.Error("Failed to look up lyrics", "title", track.Title, "artist", track.Artist, "error", err)
		outcome.Outcome, outcome.Err = OutcomeFailed, err
		return outcome
	}

	song := models.NewSong(track.Title, track.Artist, lyrics.Text, track.URL)
	if err := e.store.Insert(ctx, song); err != nil {
		e.logger.Error("Failed to store song", "title", track.Title, "artist", track.Artist, "error", err)
		outcome.Outcome, outcome.Err = OutcomeFailed, err
		return outcome
	}

	e.logger.Info("Inserted song", "title", track.Title, "artist", track.Artist, "id", song.ID())
	outcome.Outcome, outcome.SongID = OutcomeInserted, song.ID()
	return outcome
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
