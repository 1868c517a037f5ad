package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/hearify/internal/formatter"
	"github.com/desertthunder/hearify/internal/shared"
	"github.com/urfave/cli/v3"
)

// SongsList prints stored songs in insertion order.
func (r *Runner) SongsList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	songs, err := r.store.List(ctx, cmd.Int("limit"))
	if err != nil {
		return fmt.Errorf("failed to list songs: %w", err)
	}

	data, err := formatter.FormatSongs(songs, format)
	if err != nil {
		return err
	}
	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// SongsCount prints the number of stored songs.
func (r *Runner) SongsCount(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}

	count, err := r.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count songs: %w", err)
	}
	return r.writePlain("%d\n", count)
}

// SongsShow prints a single stored song including its lyrics.
func (r *Runner) SongsShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.StringArg("id")
	if id == "" {
		return fmt.Errorf("%w: song id is required", shared.ErrMissingArgument)
	}
	if err := r.requireStore(); err != nil {
		return err
	}

	song, err := r.store.Get(ctx, id)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		return r.writeJSON(song, true)
	}
	_, err = r.output.Write(formatter.SongToText(song))
	return err
}
