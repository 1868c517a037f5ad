// Package models defines the domain entities shared by the crawler, the search engine and the presentation layers.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): lightweight structs carrying external service data
//   - [Track] : a catalog (Spotify) track with cover art and preview links
//   - [Lyrics] : a lyrics (Genius) lookup result
//   - [SearchResult] : one row of a search response, tagged with its [Source]
//
// 2. Persistent Entities
//   - [Song] : a track with its full lyric text, stored by the crawler
//
// Persistent entities implement [Model], which provides identity, timestamps and validation.
package models
