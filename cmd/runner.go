package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/hearify/internal/models"
	"github.com/desertthunder/hearify/internal/services"
	"github.com/desertthunder/hearify/internal/shared"
	"github.com/desertthunder/hearify/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Store is the song store as seen by the CLI: the engine contract plus the read-only lookups behind `songs`.
type Store interface {
	tasks.SongStore
	Get(ctx context.Context, id string) (*models.Song, error)
	List(ctx context.Context, limit int) ([]*models.Song, error)
	Count(ctx context.Context) (int, error)
}

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config  *shared.Config
	catalog services.Catalog
	lyrics  services.Lyrics
	store   Store
	logger  *log.Logger
	output  io.Writer
	search  *tasks.SearchEngine
}

// RunnerOpts contains configuration options for creating a Runner.
//
// Catalog and Lyrics are nil when their credentials are not configured.
type RunnerOpts struct {
	Config  *shared.Config
	Catalog services.Catalog
	Lyrics  services.Lyrics
	Store   Store
	Logger  *log.Logger
	Output  io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	r := &Runner{
		config:  opts.Config,
		catalog: opts.Catalog,
		lyrics:  opts.Lyrics,
		store:   opts.Store,
		output:  opts.Output,
	}
	r.SetLogger(opts.Logger)
	return r
}

// SetLogger replaces the logger and rebuilds the engines that log through it.
func (r *Runner) SetLogger(logger *log.Logger) {
	r.logger = logger
	if r.store != nil {
		r.search = tasks.NewSearchEngine(r.store, r.catalog, logger)
	}
}

// ingestEngine builds a crawler with the given delay; zero uses [tasks.DefaultDelay] and negative disables it.
func (r *Runner) ingestEngine(delay time.Duration) *tasks.IngestEngine {
	return tasks.NewIngestEngine(tasks.IngestOpts{
		Catalog: r.catalog,
		Lyrics:  r.lyrics,
		Store:   r.store,
		Logger:  r.logger,
		Delay:   delay,
	})
}

func (r *Runner) requireStore() error {
	if r.store == nil || r.search == nil {
		return fmt.Errorf("%w: song store not initialized", shared.ErrServiceUnavailable)
	}
	return nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, crawlCommand, searchCommand, songsCommand, serveCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
