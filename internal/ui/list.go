package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/hearify/internal/models"
)

var _ list.Item = resultItem{}

// resultItem wraps [models.SearchResult] to implement [list.Item].
type resultItem struct {
	result models.SearchResult
}

func (i resultItem) FilterValue() string { return i.result.Title + " " + i.result.Artist }
func (i resultItem) Title() string       { return i.result.Title }
func (i resultItem) Description() string {
	desc := fmt.Sprintf("%s • %s", i.result.Artist, i.result.Source.Label())
	if i.result.URL != "" && i.result.URL != models.PlaceholderURL {
		desc = fmt.Sprintf("%s • %s", desc, i.result.URL)
	}
	return desc
}

func resultItems(results []models.SearchResult) []list.Item {
	items := make([]list.Item, len(results))
	for i, r := range results {
		items[i] = resultItem{result: r}
	}
	return items
}
