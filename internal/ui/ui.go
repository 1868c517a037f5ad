package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/hearify/internal/models"
	"github.com/desertthunder/hearify/internal/tasks"
)

// progressLines is the number of recent crawl messages kept on screen.
const progressLines = 8

// ViewState represents the current view in the TUI.
type ViewState int

const (
	SearchView ViewState = iota
	ResultsView
	CrawlView
	CrawlResultView
)

// Searcher answers lyric queries. Implemented by [tasks.SearchEngine].
type Searcher interface {
	Search(ctx context.Context, query string) (*tasks.SearchResponse, error)
}

// Crawler populates the song store. Implemented by [tasks.IngestEngine].
type Crawler interface {
	Run(ctx context.Context, playlistID string, maxTracks int, progress chan<- tasks.ProgressUpdate) (*tasks.IngestResult, error)
}

// ModelOpts configures a [Model]. Crawler may be nil, which disables the crawl workflow.
type ModelOpts struct {
	Searcher   Searcher
	Crawler    Crawler
	PlaylistID string
	MaxTracks  int
}

// Model represents the TUI application state.
type Model struct {
	ctx          context.Context
	view         ViewState
	searcher     Searcher
	crawler      Crawler
	playlistID   string
	maxTracks    int
	width        int
	height       int
	input        textinput.Model
	resultList   list.Model
	response     *tasks.SearchResponse
	searching    bool
	progressChan chan tasks.ProgressUpdate
	crawlDone    chan Msg
	progress     tasks.ProgressUpdate
	recent       []string
	crawlResult  *tasks.IngestResult
	err          error
	help         help.Model
	keys         keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts ModelOpts) *Model {
	input := textinput.New()
	input.Placeholder = "all my troubles seemed so far away"
	input.Prompt = "› "
	input.CharLimit = 200
	input.Focus()

	results := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	results.SetFilteringEnabled(false)
	results.SetShowHelp(false)

	return &Model{
		ctx:        ctx,
		view:       SearchView,
		searcher:   opts.Searcher,
		crawler:    opts.Crawler,
		playlistID: opts.PlaylistID,
		maxTracks:  opts.MaxTracks,
		input:      input,
		resultList: results,
		help:       help.New(),
		keys:       newKeyMap(),
	}
}

// Init starts the cursor blink of the search input.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-6, 10)
		m.resultList.SetSize(max(msg.Width-4, 0), max(msg.Height-8, 0))
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		switch m.view {
		case SearchView:
			return m.handleSearchKeys(msg)
		case ResultsView:
			return m.handleResultsKeys(msg)
		case CrawlResultView:
			return m.handleCrawlResultKeys(msg)
		}
		return m, nil

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateComponents(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSearchComplete:
		data := msg.data.(searchCompleteData)
		m.searching = false
		m.err = data.err
		if data.err != nil {
			return m, nil
		}
		m.response = data.response
		m.resultList.SetItems(resultItems(data.response.Results))
		m.resultList.Title = fmt.Sprintf("Results for %q", data.response.Query)
		m.resultList.ResetSelected()
		m.view = ResultsView
		m.input.Blur()
		return m, nil

	case MsgProgressUpdate:
		update := msg.data.(tasks.ProgressUpdate)
		m.progress = update
		m.recent = append(m.recent, update.Message)
		if len(m.recent) > progressLines {
			m.recent = m.recent[len(m.recent)-progressLines:]
		}
		return m, m.waitForProgress()

	case MsgCrawlComplete:
		data := msg.data.(crawlCompleteData)
		m.crawlResult = data.result
		m.err = data.err
		m.progressChan = nil
		m.crawlDone = nil
		m.view = CrawlResultView
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case SearchView:
		return m.renderSearch()
	case ResultsView:
		return m.renderResults()
	case CrawlView:
		return m.renderCrawl()
	case CrawlResultView:
		return m.renderCrawlResult()
	default:
		return ""
	}
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.search):
		if m.searching || strings.TrimSpace(m.input.Value()) == "" {
			return m, nil
		}
		m.searching = true
		m.err = nil
		return m, m.search(m.input.Value())
	case key.Matches(msg, m.keys.crawl):
		if m.crawler == nil || m.searching {
			return m, nil
		}
		m.view = CrawlView
		m.err = nil
		m.recent = nil
		m.input.Blur()
		return m, m.startCrawl()
	case key.Matches(msg, m.keys.back):
		m.input.Reset()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleResultsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.again):
		return m.backToSearch()
	case msg.String() == "q":
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.resultList, cmd = m.resultList.Update(msg)
	return m, cmd
}

func (m *Model) handleCrawlResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.back), key.Matches(msg, m.keys.again):
		return m.backToSearch()
	case msg.String() == "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) backToSearch() (tea.Model, tea.Cmd) {
	m.view = SearchView
	m.err = nil
	m.input.SetValue("")
	return m, m.input.Focus()
}

func (m *Model) updateComponents(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case SearchView:
		m.input, cmd = m.input.Update(msg)
	case ResultsView:
		m.resultList, cmd = m.resultList.Update(msg)
	}
	return m, cmd
}

func (m *Model) search(query string) tea.Cmd {
	return func() tea.Msg {
		resp, err := m.searcher.Search(m.ctx, query)
		return searchCompleteMsg(resp, err)
	}
}

// startCrawl runs the crawler in a goroutine. The progress channel is closed when the run returns,
// after which the completion message is delivered on crawlDone.
func (m *Model) startCrawl() tea.Cmd {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan Msg, 1)
	m.progressChan = progress
	m.crawlDone = done

	go func() {
		result, err := m.crawler.Run(m.ctx, m.playlistID, m.maxTracks, progress)
		close(progress)
		done <- crawlCompleteMsg(result, err)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	progress, done := m.progressChan, m.crawlDone
	if progress == nil {
		return nil
	}

	return func() tea.Msg {
		update, ok := <-progress
		if !ok {
			return <-done
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) renderSearch() string {
	title := styles.title.Render("Hearify · lyric search")

	var status string
	switch {
	case m.searching:
		status = styles.help.Render("Searching...")
	case m.err != nil:
		status = styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	}

	helpKeys := []key.Binding{m.keys.search, m.keys.quit}
	if m.crawler != nil {
		helpKeys = []key.Binding{m.keys.search, m.keys.crawl, m.keys.quit}
	}

	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, m.input.View(), status, m.help.ShortHelpView(helpKeys))
}

func (m *Model) renderResults() string {
	var b strings.Builder

	if m.response != nil && m.response.Warning != "" {
		b.WriteString(styles.warn.Render(m.response.Warning))
		b.WriteString("\n\n")
	}

	if m.response == nil || len(m.response.Results) == 0 {
		b.WriteString(styles.help.Render("No results."))
	} else {
		label := m.response.Source().Label()
		if m.response.Source() == models.SourceCatalog {
			label = styles.catalog.Render(label)
		} else {
			label = styles.ok.Render(label)
		}
		fmt.Fprintf(&b, "%s results\n", label)
		b.WriteString(m.resultList.View())
	}

	helpKeys := []key.Binding{m.keys.up, m.keys.down, m.keys.again, m.keys.back, m.keys.quit}
	fmt.Fprintf(&b, "\n\n%s", m.help.ShortHelpView(helpKeys))
	return b.String()
}

func (m *Model) renderCrawl() string {
	title := styles.title.Render(fmt.Sprintf("Crawling playlist %s", m.playlistID))

	var phase string
	switch m.progress.Phase {
	case tasks.FetchPlaylist:
		phase = "Fetching playlist..."
	case tasks.ProcessTracks:
		phase = fmt.Sprintf("Processing tracks (%d/%d)", m.progress.Step, m.progress.Total)
	case tasks.Summary:
		phase = "Finishing..."
	}

	return fmt.Sprintf("%s\n\n%s\n%s", title, phase, strings.Join(m.recent, "\n"))
}

func (m *Model) renderCrawlResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.again, m.keys.quit})

	if m.crawlResult == nil {
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(fmt.Sprintf("Crawl failed: %v", m.err)), helpView)
	}

	title := styles.ok.Render("✓ Crawl Complete")
	if m.err != nil {
		title = styles.warn.Render(fmt.Sprintf("Crawl stopped: %v", m.err))
	}

	r := m.crawlResult
	info := fmt.Sprintf(
		"\nFetched: %d\nInserted: %d\nAlready stored: %d\nWithout lyrics: %d\nFailed: %d\nRemoved tracks: %d",
		r.Fetched, r.Inserted, r.Duplicates, r.Missed, r.Failed, r.Skipped,
	)

	var failed string
	if r.Failed > 0 {
		failed = "\n\n" + styles.warn.Render(fmt.Sprintf("Failed %d tracks:", r.Failed))
		for _, t := range r.Tracks {
			if t.Outcome == tasks.OutcomeFailed {
				failed += fmt.Sprintf("\n  • %s - %s", t.Artist, t.Title)
			}
		}
	}

	return fmt.Sprintf("%s\n%s%s\n\n%s", title, info, failed, helpView)
}
