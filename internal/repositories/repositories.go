// package repositories provides the SQLite persistence layer.
package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/hearify/internal/shared"
)

// Open opens the configured database, runs migrations and returns a ready [SongRepository] along with the
// underlying connection so the caller can close it.
func Open(cfg shared.DatabaseConfig) (*SongRepository, *sql.DB, error) {
	db, err := shared.OpenDatabase(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", shared.ErrStorage, err)
	}
	return NewSongRepository(db), db, nil
}
