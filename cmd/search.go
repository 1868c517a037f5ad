package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/hearify/internal/formatter"
	"github.com/desertthunder/hearify/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search runs a lyric query: stored lyrics first, then Spotify tracks.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("%w: query is required", shared.ErrMissingArgument)
	}
	if err := r.requireStore(); err != nil {
		return err
	}

	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		format = formatter.FormatJSON
	}

	r.logger.Debug("searching", "query", query, "format", format)

	resp, err := r.search.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if resp.Warning != "" {
		r.logger.Warn(resp.Warning)
	}

	data, err := formatter.FormatSearch(resp, format)
	if err != nil {
		return err
	}

	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteFile(path, data); err != nil {
			return err
		}
		r.logger.Info("results saved", "path", path, "results", len(resp.Results))
		return nil
	}

	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
