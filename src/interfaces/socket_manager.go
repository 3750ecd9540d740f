package interfaces

import (
	"context"

	"platform-observer/src/models"
)

// -----------------------------------------------------------------------------
// ISocketManager defines the contract for the single shared backend socket.
// -----------------------------------------------------------------------------

type ISocketManager interface {

	// -----------------------------------------------------------------------------

	// Connect opens the socket and starts the read/reconnect loops.
	// A connection failure is returned but must never block platform
	// startup; polling covers for a missing socket.
	Connect(ctx context.Context) error

	// -----------------------------------------------------------------------------

	// Subscribe registers fn for every inbound message whose type is in
	// topics. An empty topic list matches all messages. Subscriptions are
	// owned by the manager and survive reconnects.
	Subscribe(ownerID string, topics []models.Topic, fn func(models.MSocketMessage))

	// -----------------------------------------------------------------------------

	// Unsubscribe removes every subscription of the owner. Idempotent.
	Unsubscribe(ownerID string)

	// -----------------------------------------------------------------------------

	// IsConnected reports whether the socket is currently open.
	IsConnected() bool

	// -----------------------------------------------------------------------------

	// State returns the current connection state.
	State() models.ConnectionState

	// -----------------------------------------------------------------------------

	// Close shuts the socket down and stops reconnecting.
	Close()
}
