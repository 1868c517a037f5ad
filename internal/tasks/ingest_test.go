package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/hearify/internal/models"
	"github.com/desertthunder/hearify/internal/shared"
	th "github.com/desertthunder/hearify/internal/testing"
)

type sleepRecorder struct {
	calls []time.Duration
	err   error
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.calls = append(s.calls, d)
	return s.err
}

func newTestIngestEngine(catalog *th.MockCatalog, lyrics *th.MockLyrics, store SongStore) (*IngestEngine, *sleepRecorder) {
	engine := NewIngestEngine(IngestOpts{
		Catalog: catalog,
		Lyrics:  lyrics,
		Store:   store,
		Logger:  quietLogger(),
	})
	rec := &sleepRecorder{}
	engine.sleep = rec.sleep
	return engine, rec
}

func TestIngestEngine_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("Inserts Tracks With Lyrics", func(t *testing.T) {
		store := newSongStore(t)
		catalog := &th.MockCatalog{Playlist: []*models.Track{
			th.NewTrack("Yesterday", "The Beatles"),
			nil,
			th.NewTrack("Instrumental", "Nobody"),
			th.NewTrack("Blinding Lights", "The Weeknd"),
		}}
		lyrics := &th.MockLyrics{Texts: map[string]string{
			th.LyricsKey("Yesterday", "The Beatles"):      "Yesterday, all my troubles seemed so far away",
			th.LyricsKey("Blinding Lights", "The Weeknd"): "I said, ooh, I'm blinded by the lights",
		}}

		engine, sleeps := newTestIngestEngine(catalog, lyrics, store)
		result, err := engine.Run(ctx, "playlist", 500, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if result.Fetched != 4 || result.Inserted != 2 || result.Skipped != 1 || result.Missed != 1 {
			t.Errorf("unexpected counters %+v", result)
		}
		if len(result.Tracks) != 4 {
			t.Fatalf("expected 4 outcomes, got %d", len(result.Tracks))
		}
		if result.Tracks[1].Outcome != OutcomeSkipped || result.Tracks[2].Outcome != OutcomeMissed {
			t.Errorf("unexpected outcomes %+v", result.Tracks)
		}
		if result.Tracks[0].SongID == "" {
			t.Error("expected song id for inserted track")
		}

		count, _ := store.Count(ctx)
		if count != 2 {
			t.Errorf("expected 2 stored songs, got %d", count)
		}

		songs, _ := store.FindBySubstring(ctx, "troubles", 20)
		if len(songs) != 1 || songs[0].URL != "https://open.spotify.com/track/yesterday" || songs[0].Artist != "The Beatles" {
			t.Errorf("expected stored song with catalog url, got %+v", songs)
		}

		if len(sleeps.calls) != 2 {
			t.Errorf("expected a delay after each of 2 inserts, got %d", len(sleeps.calls))
		}
		for _, d := range sleeps.calls {
			if d != DefaultDelay {
				t.Errorf("expected default delay, got %v", d)
			}
		}
	})

	t.Run("Idempotent Re-Run", func(t *testing.T) {
		store := newSongStore(t)
		catalog := &th.MockCatalog{Playlist: []*models.Track{
			th.NewTrack("Yesterday", "The Beatles"),
			th.NewTrack("Let It Be", "The Beatles"),
		}}
		lyrics := &th.MockLyrics{Texts: map[string]string{
			th.LyricsKey("Yesterday", "The Beatles"): "all my troubles",
			th.LyricsKey("Let It Be", "The Beatles"): "words of wisdom",
		}}

		engine, _ := newTestIngestEngine(catalog, lyrics, store)
		if _, err := engine.Run(ctx, "playlist", 500, nil); err != nil {
			t.Fatalf("first run failed: %v", err)
		}
		before, _ := store.Count(ctx)

		result, err := engine.Run(ctx, "playlist", 500, nil)
		if err != nil {
			t.Fatalf("second run failed: %v", err)
		}
		after, _ := store.Count(ctx)

		if before != 2 || after != before {
			t.Errorf("expected count to stay at 2, got %d then %d", before, after)
		}
		if result.Duplicates != 2 || result.Inserted != 0 {
			t.Errorf("expected 2 duplicates on re-run, got %+v", result)
		}
		if len(lyrics.Calls) != 2 {
			t.Errorf("expected lyrics lookups only on the first run, got %d", len(lyrics.Calls))
		}
	})

	t.Run("Lookup Error Does Not Stop Batch", func(t *testing.T) {
		store := newSongStore(t)
		catalog := &th.MockCatalog{Playlist: []*models.Track{
			th.NewTrack("Broken", "Artist"),
			th.NewTrack("Working", "Artist"),
		}}
		lyrics := &th.MockLyrics{
			Texts:  map[string]string{th.LyricsKey("Working", "Artist"): "la la la"},
			Errors: map[string]error{th.LyricsKey("Broken", "Artist"): shared.ErrServiceUnavailable},
		}

		engine, _ := newTestIngestEngine(catalog, lyrics, store)
		result, err := engine.Run(ctx, "playlist", 10, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Failed != 1 || result.Inserted != 1 {
			t.Errorf("expected 1 failure and 1 insert, got %+v", result)
		}
		if !errors.Is(result.Tracks[0].Err, shared.ErrServiceUnavailable) {
			t.Errorf("expected lookup error on outcome, got %v", result.Tracks[0].Err)
		}
		if exists, _ := store.ExistsByTitleArtist(ctx, "Working", "Artist"); !exists {
			t.Error("expected second track to be stored")
		}
	})

	t.Run("Insert Error Does Not Stop Batch", func(t *testing.T) {
		store := newSongStore(t)
		long := make([]rune, models.MaxTitleLength+1)
		for i := range long {
			long[i] = 'a'
		}
		catalog := &th.MockCatalog{Playlist: []*models.Track{
			th.NewTrack(string(long), "Artist"),
			th.NewTrack("Short", "Artist"),
		}}
		lyrics := &th.MockLyrics{Texts: map[string]string{
			th.LyricsKey(string(long), "Artist"): "too long",
			th.LyricsKey("Short", "Artist"):      "fits",
		}}

		engine, sleeps := newTestIngestEngine(catalog, lyrics, store)
		result, err := engine.Run(ctx, "playlist", 10, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Failed != 1 || result.Inserted != 1 {
			t.Errorf("expected 1 failure and 1 insert, got %+v", result)
		}
		if !errors.Is(result.Tracks[0].Err, shared.ErrValidation) {
			t.Errorf("expected validation error, got %v", result.Tracks[0].Err)
		}
		if count, _ := store.Count(ctx); count != 1 {
			t.Errorf("expected only the valid song stored, got %d", count)
		}
		if len(sleeps.calls) != 1 {
			t.Errorf("expected no delay after a failed insert, got %d delays", len(sleeps.calls))
		}
	})

	t.Run("Exists Check Failure", func(t *testing.T) {
		store := &th.MockStore{ExistsErr: shared.ErrStorage}
		catalog := &th.MockCatalog{Playlist: []*models.Track{th.NewTrack("A", "B")}}
		lyrics := &th.MockLyrics{}

		engine, _ := newTestIngestEngine(catalog, lyrics, store)
		result, err := engine.Run(ctx, "playlist", 10, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Failed != 1 || len(lyrics.Calls) != 0 {
			t.Errorf("expected failure without lookup, got %+v", result)
		}
	})

	t.Run("Respects Max Tracks", func(t *testing.T) {
		catalog := &th.MockCatalog{Playlist: []*models.Track{
			th.NewTrack("One", "A"), th.NewTrack("Two", "A"), th.NewTrack("Three", "A"),
		}}

		engine, _ := newTestIngestEngine(catalog, &th.MockLyrics{}, &th.MockStore{})
		result, err := engine.Run(ctx, "playlist", 2, nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if result.Fetched != 2 || result.Missed != 2 {
			t.Errorf("expected 2 fetched misses, got %+v", result)
		}
	})

	t.Run("Playlist Fetch Failure", func(t *testing.T) {
		catalog := &th.MockCatalog{PlaylistErr: shared.ErrPlaylistNotFound}

		engine, _ := newTestIngestEngine(catalog, &th.MockLyrics{}, &th.MockStore{})
		_, err := engine.Run(ctx, "missing", 10, nil)
		if !errors.Is(err, shared.ErrAPIRequest) || !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected wrapped playlist error, got %v", err)
		}
	})

	t.Run("Cancelled During Delay", func(t *testing.T) {
		store := &th.MockStore{}
		catalog := &th.MockCatalog{Playlist: []*models.Track{th.NewTrack("One", "A"), th.NewTrack("Two", "A")}}
		lyrics := &th.MockLyrics{Texts: map[string]string{
			th.LyricsKey("One", "A"): "one",
			th.LyricsKey("Two", "A"): "two",
		}}

		engine, sleeps := newTestIngestEngine(catalog, lyrics, store)
		sleeps.err = context.Canceled

		result, err := engine.Run(ctx, "playlist", 10, nil)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
		if result == nil || result.Inserted != 1 || len(store.Songs) != 1 {
			t.Errorf("expected partial result with 1 insert, got %+v", result)
		}
	})

	t.Run("Missing Dependencies", func(t *testing.T) {
		engine := NewIngestEngine(IngestOpts{Logger: quietLogger()})
		if _, err := engine.Run(ctx, "playlist", 10, nil); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("Progress Updates", func(t *testing.T) {
		catalog := &th.MockCatalog{Playlist: []*models.Track{th.NewTrack("One", "A"), nil}}
		lyrics := &th.MockLyrics{Texts: map[string]string{th.LyricsKey("One", "A"): "one"}}
		progress := make(chan ProgressUpdate, 10)

		engine, _ := newTestIngestEngine(catalog, lyrics, &th.MockStore{})
		if _, err := engine.Run(ctx, "playlist", 10, progress); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		close(progress)

		var phases []Phase
		for update := range progress {
			phases = append(phases, update.Phase)
		}

		want := []Phase{FetchPlaylist, FetchPlaylist, ProcessTracks, ProcessTracks, Summary}
		if len(phases) != len(want) {
			t.Fatalf("expected phases %v, got %v", want, phases)
		}
		for i := range want {
			if phases[i] != want[i] {
				t.Errorf("phase %d: expected %s, got %s", i, want[i], phases[i])
			}
		}
	})
}

func TestIngestEngine_Delay(t *testing.T) {
	t.Run("Negative Disables Delay", func(t *testing.T) {
		engine := NewIngestEngine(IngestOpts{Delay: -1, Logger: quietLogger()})
		if engine.delay != 0 {
			t.Errorf("expected no delay, got %v", engine.delay)
		}
	})

	t.Run("Sleep Honours Cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		start := time.Now()
		if err := sleepContext(ctx, time.Minute); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if time.Since(start) > time.Second {
			t.Error("expected sleep to return immediately")
		}
	})
}

func TestProgressUpdate_NonBlocking(t *testing.T) {
	progress := make(chan ProgressUpdate)
	done := make(chan struct{})

	go func() {
		sendProgress(progress, ProgressUpdate{Phase: Summary})
		sendProgress(nil, ProgressUpdate{Phase: Summary})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sendProgress blocked on an unbuffered channel")
	}
}
