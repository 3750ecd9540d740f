package interfaces

// -----------------------------------------------------------------------------
// IDataExchanger defines the interface for sharing state with local UI
// clients (HTTP snapshot reads plus websocket push).
// -----------------------------------------------------------------------------

type IDataExchanger interface {

	// -----------------------------------------------------------------------------

	// Broadcast pushes a feature snapshot change to connected clients and
	// updates the served state.
	Broadcast(feature string, payload interface{})

	// -----------------------------------------------------------------------------

	// Start the server
	Start() error

	// -----------------------------------------------------------------------------

	// Stop the server gracefully
	Stop() error
}
