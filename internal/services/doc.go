// Package services implements the external API clients: [Catalog] for the music catalog and [Lyrics] for song lyrics.
//
// # Spotify
//
// [SpotifyService] authenticates with the OAuth2 client-credentials flow. The [clientcredentials.Config]
// client fetches and refreshes app tokens on its own; no user authorization is involved.
//
// Playlist items are paged 50 at a time. Items whose track was removed from the catalog come back as
// a null track and are surfaced as nil entries so callers can count them.
//
// # Genius
//
// [GeniusService] searches songs through the API and scrapes lyrics from the song page, since the API
// does not return lyric text. Lyric containers are selected with goquery and bracketed section headers
// are stripped.
//
// Every request is throttled by a [rate.Limiter] and retried with exponential backoff on network errors,
// 429 and 5xx responses (3 retries by default). Other 4xx responses fail immediately.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrMissingCredentials] : constructor called without credentials
//   - [shared.ErrAPIRequest] : HTTP request failed
//   - [shared.ErrRateLimited] : remote service returned 429
//   - [shared.ErrPlaylistNotFound] : playlist ID not found
//   - [shared.ErrLyricsNotFound] : no song hit or empty lyrics
package services
