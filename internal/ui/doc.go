// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides two workflows:
//  1. [SearchView] → [ResultsView] : type a lyric fragment and browse local or Spotify matches
//  2. [CrawlView] → [CrawlResultView] : run the crawler over the configured playlist and watch per-track progress
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the IngestEngine, providing non-blocking status reporting during crawls.
//
// Keyboard navigation uses enter/esc, j/k in lists, "/" for a new search and ctrl+r to start a crawl,
// with contextual help displayed via charmbracelet/bubbles/help.
package ui
