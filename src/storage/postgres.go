package storage

import (
	"database/sql"
	"fmt"
	"time"

	"platform-observer/src/logger"
	"platform-observer/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

// PostgresSnapshotStore is the shared-deployment variant of the snapshot
// cache: several observer instances can point at one database.
type PostgresSnapshotStore struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresSnapshotStore(cfg *models.MConfig, log *logger.Logger) (*PostgresSnapshotStore, error) {
	return &PostgresSnapshotStore{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (s *PostgresSnapshotStore) Initialize() error {
	db, err := sql.Open("postgres", s.Config.Storage.DBConnectionString)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	s.DB = db

	query := `
		CREATE TABLE IF NOT EXISTS snapshots (
			feature TEXT PRIMARY KEY,
			payload BYTEA NOT NULL,
			saved_at BIGINT NOT NULL
		);
	`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to create snapshots table: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (s *PostgresSnapshotStore) Save(feature string, payload []byte, savedAt time.Time) error {
	if s.DB == nil {
		return errNotInitialized
	}
	query := `
		INSERT INTO snapshots (feature, payload, saved_at) VALUES ($1, $2, $3)
		ON CONFLICT (feature) DO UPDATE SET payload = EXCLUDED.payload, saved_at = EXCLUDED.saved_at;
	`
	if _, err := s.DB.Exec(query, feature, payload, savedAt.Unix()); err != nil {
		return fmt.Errorf("failed to save snapshot for %s: %w", feature, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *PostgresSnapshotStore) Load(feature string) ([]byte, time.Time, error) {
	if s.DB == nil {
		return nil, time.Time{}, errNotInitialized
	}
	var payload []byte
	var savedAt int64

	row := s.DB.QueryRow("SELECT payload, saved_at FROM snapshots WHERE feature = $1", feature)
	if err := row.Scan(&payload, &savedAt); err != nil {
		return nil, time.Time{}, fmt.Errorf("no cached snapshot for %s: %w", feature, err)
	}
	return payload, time.Unix(savedAt, 0), nil
}

// -----------------------------------------------------------------------------

func (s *PostgresSnapshotStore) CleanupExpired(maxAge time.Duration) error {
	if s.DB == nil {
		return errNotInitialized
	}
	cutoff := time.Now().Add(-maxAge).Unix()
	res, err := s.DB.Exec("DELETE FROM snapshots WHERE saved_at < $1", cutoff)
	if err != nil {
		return fmt.Errorf("failed to clean up snapshots: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		s.Logger.Debug("Removed %d expired snapshots", n)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *PostgresSnapshotStore) Close() error {
	if s.DB == nil {
		return nil
	}
	return s.DB.Close()
}
