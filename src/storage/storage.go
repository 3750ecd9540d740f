package storage

import "errors"

// -----------------------------------------------------------------------------

// errNotInitialized is returned when a store is used before Initialize
// succeeded. The platform treats the cache as optional, so callers see a
// plain error instead of a nil dereference.
var errNotInitialized = errors.New("snapshot store not initialized")
