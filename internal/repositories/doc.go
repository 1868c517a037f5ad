// Package repositories implements SQLite persistence for songs.
//
// [SongRepository] is the song store used by the crawler and the search engine:
//   - [SongRepository.Insert] : validated, transactional single-row insert with a generated UUID
//   - [SongRepository.ExistsByTitleArtist] : exact, case-sensitive duplicate check used for idempotent crawling
//   - [SongRepository.FindBySubstring] : case-sensitive substring match on lyrics via SQLite instr()
//
// Errors wrap [shared.ErrStorage], [shared.ErrValidation] or [shared.ErrSongNotFound].
package repositories
