package interfaces

import "platform-observer/src/models"

// -----------------------------------------------------------------------------
// IFeatureManager is the common lifecycle of every domain snapshot owner.
// -----------------------------------------------------------------------------

type IFeatureManager interface {

	// Name returns the unique identifier of the feature
	Name() string

	// -----------------------------------------------------------------------------

	// Init loads the initial snapshot (API, then cache, then built-in
	// defaults), subscribes to socket topics and starts the polling
	// ticker. Idempotent: a second call logs a warning and does nothing.
	Init() error

	// -----------------------------------------------------------------------------

	// Refresh re-fetches the snapshot from the backend. On failure the
	// previous snapshot stays untouched.
	Refresh() error

	// -----------------------------------------------------------------------------

	// Destroy stops the ticker, unsubscribes from the socket and marks
	// the manager uninitialized. Safe to call when never initialized.
	Destroy()

	// -----------------------------------------------------------------------------

	// Export serializes the current snapshot to JSON. Pure.
	Export() ([]byte, error)

	// -----------------------------------------------------------------------------

	// Page returns the navigation page this feature backs.
	Page() models.Page
}
