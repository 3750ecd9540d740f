package socket

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"platform-observer/src/helpers"
	"platform-observer/src/logger"
	"platform-observer/src/models"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Constants
// -----------------------------------------------------------------------------

const (
	handshakeTimeout = 5 * time.Second
	maxMessageSize   = 1024 * 1024 // 1MB for larger JSON messages
)

// -----------------------------------------------------------------------------
// Subscription
// -----------------------------------------------------------------------------

// Subscription binds an owner's callback to a topic set. An empty topic
// set matches every message. Subscriptions are manager-owned: they survive
// reconnects and are replayed against the new connection automatically.
type Subscription struct {
	OwnerID  string
	Topics   []models.Topic
	Callback func(models.MSocketMessage)
}

// -----------------------------------------------------------------------------

func (s *Subscription) matches(topic models.Topic) bool {
	if len(s.Topics) == 0 {
		return true
	}
	for _, t := range s.Topics {
		if t == topic {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------
// Manager
// -----------------------------------------------------------------------------

// Manager owns the single shared backend socket and fans inbound messages
// out to topic subscribers.
//
// State machine: disconnected -> connecting -> connected -> (disconnected | error).
// After an unexpected close it reconnects up to MaxReconnectAttempts; once
// exhausted it settles in the error state and the platform runs on polling
// alone ("API mode").
type Manager struct {
	Config *models.MConfig
	Logger *logger.Logger

	mu       sync.RWMutex
	state    models.ConnectionState
	conn     *websocket.Conn
	subs     map[string]*Subscription
	attempts int
	closed   bool
}

// -----------------------------------------------------------------------------

func NewManager(cfg *models.MConfig, log *logger.Logger) *Manager {
	return &Manager{
		Config: cfg,
		Logger: log,
		state:  models.StateDisconnected,
		subs:   make(map[string]*Subscription),
	}
}

// -----------------------------------------------------------------------------
// Connection Lifecycle
// -----------------------------------------------------------------------------

// Connect dials the backend socket. The returned error reports the initial
// dial outcome only; on failure the reconnect loop keeps trying in the
// background, so callers can proceed regardless.
func (m *Manager) Connect(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return &helpers.SocketError{PlatformError: helpers.PlatformError{Message: "socket manager is closed"}}
	}
	if m.state == models.StateConnected || m.state == models.StateConnecting {
		m.mu.Unlock()
		return nil
	}
	m.state = models.StateConnecting
	m.mu.Unlock()

	conn, err := m.dial(ctx)
	if err != nil {
		m.mu.Lock()
		m.state = models.StateError
		m.mu.Unlock()
		m.Logger.Warning("Initial socket connect failed: %v", err)
		go m.reconnectLoop()
		return &helpers.SocketError{PlatformError: helpers.PlatformError{
			Message: fmt.Sprintf("failed to connect to %s", m.Config.Socket.URL),
			Cause:   err,
		}}
	}

	m.adopt(conn)
	return nil
}

// -----------------------------------------------------------------------------

func (m *Manager) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.DialContext(ctx, m.Config.Socket.URL, nil)
	if err != nil {
		return nil, err
	}
	conn.SetReadLimit(maxMessageSize)
	return conn, nil
}

// -----------------------------------------------------------------------------

// adopt installs a fresh connection and starts its read loop. A dial that
// raced with Close (the reconnect loop only checks closed before sleeping)
// lands here with a live connection for a dead manager; that connection is
// discarded instead of resurrecting the socket.
func (m *Manager) adopt(conn *websocket.Conn) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		conn.Close()
		return
	}
	m.conn = conn
	m.state = models.StateConnected
	m.attempts = 0
	m.mu.Unlock()

	m.Logger.Info("Socket connected to %s", m.Config.Socket.URL)
	go m.readLoop(conn)
}

// -----------------------------------------------------------------------------

// readLoop decodes inbound envelopes and dispatches them until the
// connection drops. It owns exactly one connection; a reconnect spawns a
// new loop for the new connection.
func (m *Manager) readLoop(conn *websocket.Conn) {
	defer conn.Close()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			m.mu.Lock()
			// A stale loop whose connection was already replaced must not
			// touch the manager state.
			if m.conn != conn {
				m.mu.Unlock()
				return
			}
			m.conn = nil
			closed := m.closed
			if !closed {
				m.state = models.StateDisconnected
			}
			m.mu.Unlock()

			if closed {
				return
			}
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				m.Logger.Warning("Socket read error: %v", err)
			}
			go m.reconnectLoop()
			return
		}

		var msg models.MSocketMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			m.Logger.Warning("Dropping undecodable socket message: %v", err)
			continue
		}
		if !models.IsKnownTopic(msg.Type) {
			m.Logger.Debug("Dropping message with unknown topic %q", msg.Type)
			continue
		}

		m.dispatch(msg)
	}
}

// -----------------------------------------------------------------------------

// reconnectLoop retries the dial with the configured interval until it
// succeeds or the attempt budget is spent.
func (m *Manager) reconnectLoop() {
	interval := time.Duration(m.Config.Socket.ReconnectIntervalMs) * time.Millisecond

	for {
		m.mu.Lock()
		if m.closed || m.state == models.StateConnected {
			m.mu.Unlock()
			return
		}
		if m.attempts >= m.Config.Socket.MaxReconnectAttempts {
			m.state = models.StateError
			m.mu.Unlock()
			m.Logger.Error("Socket reconnect attempts exhausted (%d); running in API mode", m.Config.Socket.MaxReconnectAttempts)
			return
		}
		m.attempts++
		attempt := m.attempts
		m.state = models.StateConnecting
		m.mu.Unlock()

		time.Sleep(interval)

		ctx, cancel := context.WithTimeout(context.Background(), handshakeTimeout)
		conn, err := m.dial(ctx)
		cancel()
		if err != nil {
			m.Logger.Warning("Reconnect attempt %d/%d failed: %v", attempt, m.Config.Socket.MaxReconnectAttempts, err)
			m.mu.Lock()
			m.state = models.StateDisconnected
			m.mu.Unlock()
			continue
		}

		m.adopt(conn)
		return
	}
}

// -----------------------------------------------------------------------------

// Close shuts the socket down for good.
func (m *Manager) Close() {
	m.mu.Lock()
	m.closed = true
	m.state = models.StateDisconnected
	conn := m.conn
	m.conn = nil
	m.mu.Unlock()

	if conn != nil {
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
	}
}

// -----------------------------------------------------------------------------
// Queries
// -----------------------------------------------------------------------------

func (m *Manager) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == models.StateConnected
}

// -----------------------------------------------------------------------------

func (m *Manager) State() models.ConnectionState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// -----------------------------------------------------------------------------
// Subscriptions
// -----------------------------------------------------------------------------

// Subscribe registers fn for every message whose type is in topics.
// One subscription per owner; a repeat call replaces the previous one.
func (m *Manager) Subscribe(ownerID string, topics []models.Topic, fn func(models.MSocketMessage)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[ownerID] = &Subscription{
		OwnerID:  ownerID,
		Topics:   topics,
		Callback: fn,
	}
}

// -----------------------------------------------------------------------------

// Unsubscribe removes every subscription of the owner. Idempotent.
func (m *Manager) Unsubscribe(ownerID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subs, ownerID)
}

// -----------------------------------------------------------------------------

// dispatch delivers one message to every matching subscriber.
// Callbacks run against a stable snapshot of the subscriber list so a
// handler may subscribe or unsubscribe mid-dispatch without corrupting
// the iteration. Each subscriber sees the message at most once.
func (m *Manager) dispatch(msg models.MSocketMessage) {
	m.mu.RLock()
	matched := make([]*Subscription, 0, len(m.subs))
	for _, sub := range m.subs {
		if sub.matches(msg.Type) {
			matched = append(matched, sub)
		}
	}
	m.mu.RUnlock()

	for _, sub := range matched {
		sub.Callback(msg)
	}
}
