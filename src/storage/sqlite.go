package storage

import (
	"database/sql"
	"fmt"
	"time"

	"platform-observer/src/logger"
	"platform-observer/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

// SQLiteSnapshotStore caches the last-known-good snapshot per feature so a
// restart can serve recent data before the backend answers. One row per
// feature, last write wins.
type SQLiteSnapshotStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewSQLiteSnapshotStore(cfg *models.MConfig, log *logger.Logger) (*SQLiteSnapshotStore, error) {
	return &SQLiteSnapshotStore{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (s *SQLiteSnapshotStore) Initialize() error {
	db, err := sql.Open("sqlite", s.Config.Storage.DBPath)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	s.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		s.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		s.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	query := `
		CREATE TABLE IF NOT EXISTS snapshots (
			feature TEXT PRIMARY KEY,
			payload BLOB NOT NULL,
			saved_at INTEGER NOT NULL
		);
	`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to create snapshots table: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (s *SQLiteSnapshotStore) Save(feature string, payload []byte, savedAt time.Time) error {
	if s.DB == nil {
		return errNotInitialized
	}
	query := `
		INSERT INTO snapshots (feature, payload, saved_at) VALUES (?, ?, ?)
		ON CONFLICT(feature) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at;
	`
	if _, err := s.DB.Exec(query, feature, payload, savedAt.Unix()); err != nil {
		return fmt.Errorf("failed to save snapshot for %s: %w", feature, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *SQLiteSnapshotStore) Load(feature string) ([]byte, time.Time, error) {
	if s.DB == nil {
		return nil, time.Time{}, errNotInitialized
	}
	var payload []byte
	var savedAt int64

	row := s.DB.QueryRow("SELECT payload, saved_at FROM snapshots WHERE feature = ?", feature)
	if err := row.Scan(&payload, &savedAt); err != nil {
		return nil, time.Time{}, fmt.Errorf("no cached snapshot for %s: %w", feature, err)
	}
	return payload, time.Unix(savedAt, 0), nil
}

// -----------------------------------------------------------------------------

func (s *SQLiteSnapshotStore) CleanupExpired(maxAge time.Duration) error {
	if s.DB == nil {
		return errNotInitialized
	}
	cutoff := time.Now().Add(-maxAge).Unix()
	res, err := s.DB.Exec("DELETE FROM snapshots WHERE saved_at < ?", cutoff)
	if err != nil {
		return fmt.Errorf("failed to clean up snapshots: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		s.Logger.Debug("Removed %d expired snapshots", n)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *SQLiteSnapshotStore) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
