// package formatter renders search results and stored songs in various formats (plain text, Markdown, CSV, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/desertthunder/hearify/internal/models"
	"github.com/desertthunder/hearify/internal/shared"
	"github.com/desertthunder/hearify/internal/tasks"
)

// Format selects an output representation.
type Format string

const (
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

// ParseFormat maps a flag value to a [Format]. "md" is accepted for markdown and "" for text.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return FormatText, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "csv":
		return FormatCSV, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (text, markdown, csv, json)", shared.ErrInvalidArgument, s)
	}
}

// FormatSearch renders a search response.
func FormatSearch(resp *tasks.SearchResponse, format Format) ([]byte, error) {
	switch format {
	case FormatText:
		return SearchToText(resp), nil
	case FormatMarkdown:
		return SearchToMarkdown(resp), nil
	case FormatCSV:
		return ResultsToCSV(resp.Results)
	case FormatJSON:
		return shared.MarshalJSON(resp, true)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// FormatSongs renders a list of stored songs without lyrics.
func FormatSongs(songs []*models.Song, format Format) ([]byte, error) {
	switch format {
	case FormatText:
		return SongsToText(songs), nil
	case FormatMarkdown:
		return SongsToMarkdown(songs), nil
	case FormatCSV:
		return SongsToCSV(songs)
	case FormatJSON:
		return shared.MarshalJSON(songs, true)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
}

// SearchToText renders results as numbered lines, preceded by the warning when present.
func SearchToText(resp *tasks.SearchResponse) []byte {
	var buf bytes.Buffer

	if resp.Warning != "" {
		fmt.Fprintf(&buf, "Warning: %s\n", resp.Warning)
	}
	if len(resp.Results) == 0 {
		if resp.Query != "" {
			fmt.Fprintf(&buf, "No results for %q\n", resp.Query)
		}
		return buf.Bytes()
	}

	fmt.Fprintf(&buf, "%s results for %q: %d\n\n", resp.Source().Label(), resp.Query, len(resp.Results))
	for i, r := range resp.Results {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, r.Artist, r.Title)
		if r.URL != "" && r.URL != models.PlaceholderURL {
			fmt.Fprintf(&buf, "   %s\n", r.URL)
		}
		if r.PreviewURL != nil {
			fmt.Fprintf(&buf, "   preview: %s\n", *r.PreviewURL)
		}
	}
	return buf.Bytes()
}

// SearchToMarkdown renders results as a Markdown list with cover thumbnails.
func SearchToMarkdown(resp *tasks.SearchResponse) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# Results for \"%s\"\n\n", resp.Query)
	if resp.Warning != "" {
		fmt.Fprintf(&buf, "> **Warning**: %s\n\n", resp.Warning)
	}
	if len(resp.Results) == 0 {
		buf.WriteString("_No results._\n")
		return buf.Bytes()
	}

	fmt.Fprintf(&buf, "**Source**: %s\n\n", resp.Source().Label())
	for i, r := range resp.Results {
		fmt.Fprintf(&buf, "%d. [%s](%s) - %s", i+1, r.Title, r.URL, r.Artist)
		if r.AlbumCover != nil {
			fmt.Fprintf(&buf, " ![Cover](%s)", *r.AlbumCover)
		}
		if r.PreviewURL != nil {
			fmt.Fprintf(&buf, " [preview](%s)", *r.PreviewURL)
		}
		buf.WriteString("\n")
	}
	return buf.Bytes()
}

// ResultsToCSV converts results to CSV with columns: Title, Artist, Source, URL, AlbumCover, PreviewURL
func ResultsToCSV(results []models.SearchResult) ([]byte, error) {
	records := make([][]string, 0, len(results))
	for _, r := range results {
		records = append(records, []string{r.Title, r.Artist, string(r.Source), r.URL, deref(r.AlbumCover), deref(r.PreviewURL)})
	}
	return writeCSV([]string{"Title", "Artist", "Source", "URL", "AlbumCover", "PreviewURL"}, records)
}

// SongsToText renders stored songs as numbered lines.
func SongsToText(songs []*models.Song) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Songs: %d\n\n", len(songs))
	for i, s := range songs {
		fmt.Fprintf(&buf, "%d. %s - %s [%s]\n", i+1, s.Artist, s.Title, s.ID())
	}
	return buf.Bytes()
}

// SongsToMarkdown renders stored songs as a Markdown table.
func SongsToMarkdown(songs []*models.Song) []byte {
	var buf bytes.Buffer
	buf.WriteString("# Songs\n\n")
	fmt.Fprintf(&buf, "**Count**: %d\n\n", len(songs))
	buf.WriteString("| # | Title | Artist | Link |\n|---|-------|--------|------|\n")
	for i, s := range songs {
		fmt.Fprintf(&buf, "| %d | %s | %s | %s |\n", i+1, escapeCell(s.Title), escapeCell(s.Artist), s.LinkOrPlaceholder())
	}
	return buf.Bytes()
}

// SongsToCSV converts songs to CSV with columns: ID, Title, Artist, URL, CreatedAt
func SongsToCSV(songs []*models.Song) ([]byte, error) {
	records := make([][]string, 0, len(songs))
	for _, s := range songs {
		created := ""
		if !s.CreatedAt().IsZero() {
			created = s.CreatedAt().UTC().Format(time.RFC3339)
		}
		records = append(records, []string{s.ID(), s.Title, s.Artist, s.URL, created})
	}
	return writeCSV([]string{"ID", "Title", "Artist", "URL", "CreatedAt"}, records)
}

// SongToText renders a single song including its lyrics.
func SongToText(s *models.Song) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s - %s\n", s.Artist, s.Title)
	fmt.Fprintf(&buf, "ID: %s\n", s.ID())
	if s.URL != "" {
		fmt.Fprintf(&buf, "URL: %s\n", s.URL)
	}
	if !s.CreatedAt().IsZero() {
		fmt.Fprintf(&buf, "Added: %s\n", s.CreatedAt().Local().Format(time.DateTime))
	}
	fmt.Fprintf(&buf, "\n%s\n", s.Lyrics)
	return buf.Bytes()
}

// WriteFile writes data to path, creating parent directories as needed.
func WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func writeCSV(headers []string, records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
