// Package tasks implements the crawler and the lyric search service with real-time progress reporting.
//
// # Core Operations
//
//  1. [IngestEngine.Run] : Playlist → song store crawl
//     - Fetches up to N playlist entries from the catalog
//     - Skips removed tracks and tracks whose title and artist are already stored
//     - Looks up lyrics and inserts a song for every hit
//     - Pauses after each insert to stay under the lyrics provider's rate limit
//     - Returns per-track outcomes and counters
//
//  2. [SearchEngine.Search] : Local-first lyric search
//     - Substring match on stored lyrics (case-sensitive, at most 20 results)
//     - Falls back to a catalog track search when nothing is stored
//     - Catalog failures become a warning on the response instead of an error
//
// # Progress Reporting
//
// The crawler uses a non-blocking channel for progress updates.
// The [ProgressUpdate] struct contains phase, step counters, a message and the [TrackOutcome] or final
// [IngestResult] as data. Updates use select with default to prevent blocking.
//
// # Failure Isolation
//
// A lookup or insert failure is logged with the track's title and artist and the run continues.
// Missing lyrics are expected and logged at info level. Only a playlist fetch failure or cancellation ends a run early.
//
// # Implementation
//
// Both engines depend on interfaces so tests can swap them for doubles:
//   - [SongStore] : implemented by repositories.SongRepository
//   - [services.Catalog] : Spotify API client
//   - [services.Lyrics] : Genius API client
package tasks
