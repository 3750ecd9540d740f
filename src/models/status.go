package models

// -----------------------------------------------------------------------------
// Platform Status
// -----------------------------------------------------------------------------

// ConnectionState mirrors the socket manager state machine.
type ConnectionState string

const (
	StateDisconnected ConnectionState = "disconnected"
	StateConnecting   ConnectionState = "connecting"
	StateConnected    ConnectionState = "connected"
	StateError        ConnectionState = "error"
)

// -----------------------------------------------------------------------------

// MPlatformStatus is the bootstrap diagnostic record surfaced on /api/status.
// Errors accumulates per-component initialization failures; a failing
// feature manager never blocks the others from starting.
type MPlatformStatus struct {
	Name        string          `json:"name"`
	Connection  ConnectionState `json:"connection"`
	APIMode     bool            `json:"api_mode"` // true once socket reconnects are exhausted
	Initialized []string        `json:"initialized"`
	Errors      []string        `json:"errors"`
	StartedAt   int64           `json:"started_at"`
}
