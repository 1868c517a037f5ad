// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/hearify/internal/models"
	"github.com/desertthunder/hearify/internal/shared"
)

// MockCatalog is a test double for [services.Catalog]
type MockCatalog struct {
	Playlist    []*models.Track // Entries returned by PlaylistTracks, truncated to the limit
	PlaylistErr error
	Tracks      []models.Track // Tracks returned by SearchTracks, truncated to the limit
	SearchErr   error

	mu            sync.Mutex
	PlaylistCalls int
	Queries       []string // Queries received by SearchTracks
}

func (m *MockCatalog) PlaylistTracks(ctx context.Context, playlistID string, limit int) ([]*models.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PlaylistCalls++
	if m.PlaylistErr != nil {
		return nil, m.PlaylistErr
	}
	return m.Playlist[:min(limit, len(m.Playlist))], nil
}

func (m *MockCatalog) SearchTracks(ctx context.Context, query string, limit int) ([]models.Track, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queries = append(m.Queries, query)
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	return m.Tracks[:min(limit, len(m.Tracks))], nil
}

// SearchCalls returns the number of SearchTracks calls.
func (m *MockCatalog) SearchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Queries)
}

func (m *MockCatalog) Name() string { return "mock" }

// MockLyrics is a test double for [services.Lyrics] keyed by [LyricsKey].
//
// Unknown songs return [shared.ErrLyricsNotFound].
type MockLyrics struct {
	Texts  map[string]string
	Errors map[string]error

	mu    sync.Mutex
	Calls []string
}

// LyricsKey builds the lookup key used by [MockLyrics].
func LyricsKey(title, artist string) string {
	return title + "|" + artist
}

func (m *MockLyrics) SearchLyrics(ctx context.Context, title, artist string) (*models.Lyrics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := LyricsKey(title, artist)
	m.Calls = append(m.Calls, key)

	if err, ok := m.Errors[key]; ok {
		return nil, err
	}
	text, ok := m.Texts[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", shared.ErrLyricsNotFound, key)
	}
	return &models.Lyrics{Title: title, Artist: artist, URL: "https://genius.com/" + key, Text: text}, nil
}

func (m *MockLyrics) Name() string { return "mock" }

// MockStore is an in-memory song store with injectable failures.
type MockStore struct {
	Songs     []*models.Song
	InsertErr error
	ExistsErr error
	FindErr   error

	mu          sync.Mutex
	FindCalls   int
	InsertCalls int
}

func (m *MockStore) Insert(ctx context.Context, song *models.Song) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InsertCalls++
	if m.InsertErr != nil {
		return m.InsertErr
	}
	if err := song.Validate(); err != nil {
		return err
	}
	song.SetID(shared.GenerateID())
	m.Songs = append(m.Songs, song)
	return nil
}

func (m *MockStore) ExistsByTitleArtist(ctx context.Context, title, artist string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ExistsErr != nil {
		return false, m.ExistsErr
	}
	for _, s := range m.Songs {
		if s.Title == title && s.Artist == artist {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockStore) FindBySubstring(ctx context.Context, text string, limit int) ([]*models.Song, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FindCalls++
	if m.FindErr != nil {
		return nil, m.FindErr
	}
	var songs []*models.Song
	for _, s := range m.Songs {
		if len(songs) == limit {
			break
		}
		if strings.Contains(s.Lyrics, text) {
			songs = append(songs, s)
		}
	}
	return songs, nil
}

// NewTrack builds a catalog track with a deterministic external URL.
func NewTrack(title, artist string) *models.Track {
	return &models.Track{
		ID:     strings.ReplaceAll(strings.ToLower(title), " ", "-"),
		Title:  title,
		Artist: artist,
		URL:    "https://open.spotify.com/track/" + strings.ReplaceAll(strings.ToLower(title), " ", "-"),
	}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// LimitedWriter fails after a certain number of writes
type LimitedWriter struct {
	maxWrites int
	written   int
	target    io.Writer
}

func (l *LimitedWriter) Write(p []byte) (n int, err error) {
	if l.written >= l.maxWrites {
		return 0, errors.New("write limit exceeded")
	}
	l.written++
	return l.target.Write(p)
}

func NewLimitedWriter(maxWrites, written int, target io.Writer) LimitedWriter {
	return LimitedWriter{maxWrites: maxWrites, written: written, target: target}
}

// MockRoundTripper answers every request with the same response or transport error and counts attempts.
type MockRoundTripper struct {
	response *http.Response
	err      error

	mu    sync.Mutex
	calls int
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.response, m.err
}

// Calls returns the number of round trips made.
func (m *MockRoundTripper) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// FailingBodyResponse is a 200 response whose body fails on the first read.
func FailingBodyResponse() *http.Response {
	return &http.Response{
		StatusCode: http.StatusOK,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       &FCloser{},
	}
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func AssertDirExists(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		t.Errorf("Directory does not exist: %s", path)
		return
	}
	if !info.IsDir() {
		t.Errorf("Path is not a directory: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
