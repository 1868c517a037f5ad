package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/hearify/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgSearchComplete MsgKind = iota
	MsgProgressUpdate
	MsgCrawlComplete
)

type searchCompleteData struct {
	response *tasks.SearchResponse
	err      error
}

type crawlCompleteData struct {
	result *tasks.IngestResult
	err    error
}

// searchCompleteMsg is the constructor for [MsgSearchComplete]
func searchCompleteMsg(resp *tasks.SearchResponse, err error) Msg {
	return Msg{kind: MsgSearchComplete, data: searchCompleteData{resp, err}}
}

// progressUpdateMsg is the constructor for [MsgProgressUpdate]
func progressUpdateMsg(update tasks.ProgressUpdate) Msg {
	return Msg{kind: MsgProgressUpdate, data: update}
}

// crawlCompleteMsg is the constructor for [MsgCrawlComplete]
func crawlCompleteMsg(result *tasks.IngestResult, err error) Msg {
	return Msg{kind: MsgCrawlComplete, data: crawlCompleteData{result, err}}
}
