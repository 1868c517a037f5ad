package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/hearify/internal/shared"
	"github.com/desertthunder/hearify/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive terminal UI for search and crawling.
//
// Crawling from the TUI is only offered when both crawler clients are configured.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireStore(); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/hearify-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	opts := ui.ModelOpts{
		Searcher:   r.search,
		PlaylistID: r.config.Crawler.PlaylistID,
		MaxTracks:  r.config.Crawler.MaxTracks,
	}
	if r.config.RequireCrawlerCredentials() == nil && r.catalog != nil && r.lyrics != nil {
		opts.Crawler = r.ingestEngine(r.config.Crawler.Delay())
	}

	p := tea.NewProgram(ui.NewModel(ctx, opts))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
