package interfaces

import "time"

// -----------------------------------------------------------------------------
// ISnapshotStore defines the contract for the last-known-good snapshot cache.
// -----------------------------------------------------------------------------

type ISnapshotStore interface {

	// -----------------------------------------------------------------------------

	// Initialize sets up the schema.
	Initialize() error

	// -----------------------------------------------------------------------------

	// Save upserts the serialized snapshot for a feature.
	Save(feature string, payload []byte, savedAt time.Time) error

	// -----------------------------------------------------------------------------

	// Load returns the cached snapshot and the time it was saved.
	// A missing row is an error.
	Load(feature string) ([]byte, time.Time, error)

	// -----------------------------------------------------------------------------

	// CleanupExpired removes snapshots older than maxAge.
	CleanupExpired(maxAge time.Duration) error

	// -----------------------------------------------------------------------------

	// Close the database connection
	Close() error
}
