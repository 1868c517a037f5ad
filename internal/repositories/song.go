package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/hearify/internal/models"
	"github.com/desertthunder/hearify/internal/shared"
)

const songColumns = "id, title, artist, lyrics, url, created_at"

// SongRepository persists [models.Song] rows in SQLite.
//
// Every Insert runs in its own transaction: it is durable once Insert returns,
// and a failed insert is rolled back without touching earlier rows.
type SongRepository struct {
	db *sql.DB
}

// NewSongRepository creates a new SongRepository with the given database connection
func NewSongRepository(db *sql.DB) *SongRepository {
	return &SongRepository{db: db}
}

// Insert validates song, assigns it a new ID and stores it.
func (r *SongRepository) Insert(ctx context.Context, song *models.Song) error {
	if err := song.Validate(); err != nil {
		return err
	}

	id := shared.GenerateID()
	createdAt := song.CreatedAt()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %v", shared.ErrStorage, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO songs (id, title, artist, lyrics, url, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, song.Title, song.Artist, song.Lyrics, song.URL, createdAt,
	)
	if err != nil {
		rollback(tx)
		return fmt.Errorf("%w: failed to insert song: %v", shared.ErrStorage, err)
	}

	if err := tx.Commit(); err != nil {
		rollback(tx)
		return fmt.Errorf("%w: failed to commit song: %v", shared.ErrStorage, err)
	}

	song.SetID(id)
	song.SetCreatedAt(createdAt)
	return nil
}

// ExistsByTitleArtist reports whether a song with exactly this title and artist is stored.
//
// Comparison is case-sensitive.
func (r *SongRepository) ExistsByTitleArtist(ctx context.Context, title, artist string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM songs WHERE title = ? AND artist = ?)",
		title, artist,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("%w: failed to check song: %v", shared.ErrStorage, err)
	}
	return exists, nil
}

// FindBySubstring returns up to limit songs whose lyrics contain text, case-sensitively, in insertion order.
//
// An empty text matches every song.
func (r *SongRepository) FindBySubstring(ctx context.Context, text string, limit int) ([]*models.Song, error) {
	query := "SELECT " + songColumns + " FROM songs WHERE instr(lyrics, ?) > 0 ORDER BY rowid ASC"
	args := []any{text}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	return r.query(ctx, query, args...)
}

// Get retrieves a song by ID.
func (r *SongRepository) Get(ctx context.Context, id string) (*models.Song, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+songColumns+" FROM songs WHERE id = ?", id)

	song, err := scanSong(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrSongNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to scan song: %v", shared.ErrStorage, err)
	}
	return song, nil
}

// List returns up to limit songs in insertion order. A non-positive limit returns all songs.
func (r *SongRepository) List(ctx context.Context, limit int) ([]*models.Song, error) {
	query := "SELECT " + songColumns + " FROM songs ORDER BY rowid ASC"
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return r.query(ctx, query, args...)
}

// Count returns the number of stored songs.
func (r *SongRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM songs").Scan(&count); err != nil {
		return 0, fmt.Errorf("%w: failed to count songs: %v", shared.ErrStorage, err)
	}
	return count, nil
}

func (r *SongRepository) query(ctx context.Context, query string, args ...any) ([]*models.Song, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to query songs: %v", shared.ErrStorage, err)
	}
	defer rows.Close()

	var songs []*models.Song
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to scan song: %v", shared.ErrStorage, err)
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: row iteration error: %v", shared.ErrStorage, err)
	}

	return songs, nil
}

// scanner is satisfied by both [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

func scanSong(s scanner) (*models.Song, error) {
	var (
		id        string
		title     string
		artist    string
		lyrics    string
		url       string
		createdAt time.Time
	)

	if err := s.Scan(&id, &title, &artist, &lyrics, &url, &createdAt); err != nil {
		return nil, err
	}

	song := models.NewSong(title, artist, lyrics, url)
	song.SetID(id)
	song.SetCreatedAt(createdAt)
	return song, nil
}

func rollback(tx *sql.Tx) {
	_ = tx.Rollback()
}
