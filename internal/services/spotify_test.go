package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/desertthunder/hearify/internal/shared"
	tu "github.com/desertthunder/hearify/internal/testing"
)

// newSpotifyTestServer serves the token endpoint and delegates API routes to api.
func newSpotifyTestServer(t *testing.T, api http.HandlerFunc) (*httptest.Server, *SpotifyService) {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if id, secret, ok := r.BasicAuth(); !ok || id != "test_client_id" || secret != "test_client_secret" {
			http.Error(w, "bad client", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"test-token","token_type":"bearer","expires_in":3600}`))
	})
	mux.HandleFunc("/v1/", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		api(w, r)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	srv, err := NewSpotifyService(SpotifyOpts{
		ClientID:     "test_client_id",
		ClientSecret: "test_client_secret",
		TokenURL:     server.URL + "/token",
		BaseURL:      server.URL + "/v1",
		HTTPClient:   server.Client(),
	})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	return server, srv
}

func playlistItem(n int) map[string]any {
	return map[string]any{
		"added_at": "2024-01-01T00:00:00Z",
		"track": map[string]any{
			"id":            fmt.Sprintf("track%d", n),
			"name":          fmt.Sprintf("Song %d", n),
			"artists":       []map[string]any{{"id": "a", "name": "Artist A"}, {"id": "b", "name": "Artist B"}},
			"external_urls": map[string]any{"spotify": fmt.Sprintf("https://open.spotify.com/track/%d", n)},
			"album": map[string]any{
				"images": []map[string]any{{"url": "https://i.scdn.co/large"}, {"url": "https://i.scdn.co/small"}},
			},
			"preview_url": nil,
		},
	}
}

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			srv, err := NewSpotifyService(SpotifyOpts{ClientID: "id", ClientSecret: "secret"})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}
			if srv.baseURL != spotifyBaseURL {
				t.Errorf("expected default base URL, got %s", srv.baseURL)
			}
		})

		t.Run("Missing Client ID", func(t *testing.T) {
			_, err := NewSpotifyService(SpotifyOpts{ClientSecret: "secret"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})

		t.Run("Missing Client Secret", func(t *testing.T) {
			_, err := NewSpotifyService(SpotifyOpts{ClientID: "id"})
			if !errors.Is(err, shared.ErrMissingCredentials) {
				t.Errorf("expected ErrMissingCredentials, got %v", err)
			}
		})
	})

	t.Run("PlaylistTracks", func(t *testing.T) {
		t.Run("Pages Until Limit", func(t *testing.T) {
			var offsets []int
			_, srv := newSpotifyTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/v1/playlists/abc/tracks" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
				offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
				offsets = append(offsets, offset)

				items := []map[string]any{}
				for i := offset; i < offset+limit && i < 120; i++ {
					items = append(items, playlistItem(i))
				}
				next := "more"
				json.NewEncoder(w).Encode(map[string]any{"items": items, "total": 120, "next": next})
			})

			tracks, err := srv.PlaylistTracks(context.Background(), "abc", 70)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(tracks) != 70 {
				t.Fatalf("expected 70 tracks, got %d", len(tracks))
			}
			if len(offsets) != 2 || offsets[0] != 0 || offsets[1] != 50 {
				t.Errorf("expected offsets [0 50], got %v", offsets)
			}

			first := tracks[0]
			if first.Title != "Song 0" || first.Artist != "Artist A" {
				t.Errorf("unexpected first track %+v", first)
			}
			if first.URL != "https://open.spotify.com/track/0" {
				t.Errorf("unexpected url %s", first.URL)
			}
			if cover := first.Cover(); cover == nil || *cover != "https://i.scdn.co/large" {
				t.Errorf("expected first album image as cover, got %v", cover)
			}
			if first.PreviewURL != nil {
				t.Errorf("expected nil preview, got %v", *first.PreviewURL)
			}
		})

		t.Run("Stops When Playlist Ends", func(t *testing.T) {
			calls := 0
			_, srv := newSpotifyTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				calls++
				json.NewEncoder(w).Encode(map[string]any{
					"items": []map[string]any{playlistItem(1), playlistItem(2)},
					"total": 2,
					"next":  nil,
				})
			})

			tracks, err := srv.PlaylistTracks(context.Background(), "abc", 500)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(tracks) != 2 || calls != 1 {
				t.Errorf("expected 2 tracks from 1 call, got %d tracks from %d calls", len(tracks), calls)
			}
		})

		t.Run("Removed Tracks Are Nil", func(t *testing.T) {
			_, srv := newSpotifyTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"items":[{"track":null},{"track":{"name":"Yesterday","artists":[{"name":"The Beatles"}],"external_urls":{"spotify":"u1"},"album":{"images":[]},"preview_url":"p1"}}],"next":null}`))
			})

			tracks, err := srv.PlaylistTracks(context.Background(), "abc", 10)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(tracks) != 2 {
				t.Fatalf("expected 2 entries, got %d", len(tracks))
			}
			if tracks[0] != nil {
				t.Errorf("expected nil entry for removed track, got %+v", tracks[0])
			}
			if tracks[1].Title != "Yesterday" || tracks[1].PreviewURL == nil || *tracks[1].PreviewURL != "p1" {
				t.Errorf("unexpected track %+v", tracks[1])
			}
			if tracks[1].Cover() != nil {
				t.Error("expected nil cover without images")
			}
		})

		t.Run("Not Found", func(t *testing.T) {
			_, srv := newSpotifyTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "not found", http.StatusNotFound)
			})

			_, err := srv.PlaylistTracks(context.Background(), "missing", 10)
			if !errors.Is(err, shared.ErrPlaylistNotFound) {
				t.Errorf("expected ErrPlaylistNotFound, got %v", err)
			}
		})

		t.Run("Server Error", func(t *testing.T) {
			_, srv := newSpotifyTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			})

			_, err := srv.PlaylistTracks(context.Background(), "abc", 10)
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})

		t.Run("Missing Playlist ID", func(t *testing.T) {
			srv, _ := NewSpotifyService(SpotifyOpts{ClientID: "id", ClientSecret: "secret"})
			_, err := srv.PlaylistTracks(context.Background(), "", 10)
			if !errors.Is(err, shared.ErrMissingArgument) {
				t.Errorf("expected ErrMissingArgument, got %v", err)
			}
		})
	})

	t.Run("SearchTracks", func(t *testing.T) {
		t.Run("Maps Items", func(t *testing.T) {
			_, srv := newSpotifyTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				if r.URL.Path != "/v1/search" || q.Get("type") != "track" || q.Get("limit") != "20" {
					t.Errorf("unexpected request %s", r.URL.String())
				}
				if q.Get("q") != "blinding lights" {
					t.Errorf("expected query 'blinding lights', got %q", q.Get("q"))
				}
				w.Write([]byte(`{"tracks":{"items":[{"name":"Blinding Lights","artists":[{"name":"The Weeknd"}],"external_urls":{"spotify":"u1"},"album":{"images":[{"url":"c1"}]},"preview_url":"p1"}],"total":1}}`))
			})

			tracks, err := srv.SearchTracks(context.Background(), "blinding lights", 20)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if len(tracks) != 1 {
				t.Fatalf("expected 1 track, got %d", len(tracks))
			}
			if tracks[0].Title != "Blinding Lights" || tracks[0].Artist != "The Weeknd" || tracks[0].URL != "u1" {
				t.Errorf("unexpected track %+v", tracks[0])
			}
		})

		t.Run("Rate Limited", func(t *testing.T) {
			_, srv := newSpotifyTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Retry-After", "3")
				w.WriteHeader(http.StatusTooManyRequests)
			})

			_, err := srv.SearchTracks(context.Background(), "x", 20)
			if !errors.Is(err, shared.ErrRateLimited) || !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected rate limit API error, got %v", err)
			}
		})

		t.Run("Malformed Response", func(t *testing.T) {
			_, srv := newSpotifyTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{not json`))
			})

			_, err := srv.SearchTracks(context.Background(), "x", 20)
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
		})

		t.Run("Not Found Is Not A Missing Playlist", func(t *testing.T) {
			_, srv := newSpotifyTestServer(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "not found", http.StatusNotFound)
			})

			_, err := srv.SearchTracks(context.Background(), "x", 20)
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
			if errors.Is(err, shared.ErrPlaylistNotFound) {
				t.Errorf("expected search 404 not to report a missing playlist, got %v", err)
			}
		})

		t.Run("Transport Failure", func(t *testing.T) {
			rt := tu.NewMockRoundTripper(nil, errors.New("dial tcp: connection refused"))
			srv, err := NewSpotifyService(SpotifyOpts{
				ClientID:     "test_client_id",
				ClientSecret: "test_client_secret",
				TokenURL:     "https://accounts.test/token",
				BaseURL:      "https://api.test/v1",
				HTTPClient:   &http.Client{Transport: rt},
			})
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			_, err = srv.SearchTracks(context.Background(), "x", 20)
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
			if rt.Calls() == 0 {
				t.Error("expected the transport to be used")
			}
		})

		t.Run("Unreadable Body", func(t *testing.T) {
			rt := tu.NewMockRoundTripper(tu.FailingBodyResponse(), nil)
			srv := &SpotifyService{baseURL: "https://api.test/v1", httpClient: &http.Client{Transport: rt}}

			_, err := srv.SearchTracks(context.Background(), "x", 20)
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Errorf("expected ErrAPIRequest, got %v", err)
			}
			if !strings.Contains(err.Error(), "failed to decode response") {
				t.Errorf("expected decode failure, got %v", err)
			}
		})
	})
}
