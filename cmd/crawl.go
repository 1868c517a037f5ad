package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/hearify/internal/shared"
	"github.com/desertthunder/hearify/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Crawl copies lyrics for a playlist's tracks into the song store.
//
// Missing credentials abort before any request is made. Ctrl-C stops the run
// between tracks and still prints the summary of what was stored.
func (r *Runner) Crawl(ctx context.Context, cmd *cli.Command) error {
	if err := r.config.RequireCrawlerCredentials(); err != nil {
		return err
	}
	if r.catalog == nil || r.lyrics == nil {
		return fmt.Errorf("%w: crawler clients not initialized", shared.ErrServiceUnavailable)
	}
	if err := r.requireStore(); err != nil {
		return err
	}

	playlistID := cmd.String("playlist")
	if playlistID == "" {
		playlistID = r.config.Crawler.PlaylistID
	}
	if playlistID == "" {
		return fmt.Errorf("%w: --playlist or crawler.playlist_id is required", shared.ErrMissingArgument)
	}

	limit := cmd.Int("limit")
	if limit <= 0 {
		limit = r.config.Crawler.MaxTracks
	}

	delay := r.config.Crawler.Delay()
	if cmd.IsSet("delay") {
		if delay = cmd.Duration("delay"); delay <= 0 {
			delay = -1
		}
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	r.logger.Info("starting crawl", "playlist", playlistID, "limit", limit, "delay", delay)
	r.writePlain("Crawling playlist %s (up to %d tracks)\n\n", playlistID, limit)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchPlaylist:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.ProcessTracks:
				r.writePlain("   %s\n", update.Message)
			}
		}
	}()

	result, err := r.ingestEngine(delay).Run(ctx, playlistID, limit, progressCh)
	close(progressCh)
	<-done

	if result == nil {
		return err
	}

	title := "Crawl Complete!"
	if err != nil {
		title = "Crawl Interrupted"
	}
	r.writePlain("\n")
	r.writePlainHeader(title)
	r.writePlain("Playlist: %s (%d entries)\n", result.PlaylistID, result.Fetched)
	r.writePlain("Inserted: %d\n", result.Inserted)
	r.writePlain("Already stored: %d\n", result.Duplicates)
	r.writePlain("Without lyrics: %d\n", result.Missed)
	r.writePlain("Removed tracks: %d\n", result.Skipped)
	r.writePlain("Failed: %d\n", result.Failed)
	r.writePlain("Duration: %s\n", result.Duration.Round(time.Millisecond))

	if result.Failed > 0 {
		r.writePlain("\nFailed tracks:\n")
		for _, track := range result.Tracks {
			if track.Outcome == tasks.OutcomeFailed {
				r.writePlain("  - %s - %s: %v\n", track.Artist, track.Title, track.Err)
			}
		}
	}

	if errors.Is(err, context.Canceled) {
		r.logger.Warn("crawl interrupted", "processed", len(result.Tracks), "fetched", result.Fetched)
		return nil
	}
	return err
}
