package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"platform-observer/src/logger"
	"platform-observer/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func newTestServer() *FanoutServer {
	cfg := &models.MConfig{
		LogLevel: "ERROR",
		Server:   models.MServerConfig{Host: "127.0.0.1", Port: 8090},
	}
	status := func() models.MPlatformStatus {
		return models.MPlatformStatus{
			Name:        "platform-observer",
			Connection:  models.StateConnected,
			Initialized: []string{"dashboard", "analytics"},
		}
	}
	nav := func() models.MNavigationState {
		return models.MNavigationState{
			CurrentPage: models.PageDashboard,
			History:     []models.Page{models.PageDashboard},
		}
	}
	return NewFanoutServer(cfg, logger.NewLogger("ERROR", "server-test"), status, nav)
}

func doRequest(s *FanoutServer, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	s.engine.ServeHTTP(w, req)
	return w
}

// -----------------------------------------------------------------------------

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer()

	w := doRequest(s, http.MethodGet, "/api/health")
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.EqualValues(t, 0, body["connections"])
}

// -----------------------------------------------------------------------------

func TestHealthCountsHubClients(t *testing.T) {
	s := newTestServer()
	go s.handleWebsockets()

	connections := func() float64 {
		w := doRequest(s, http.MethodGet, "/api/health")
		require.Equal(t, http.StatusOK, w.Code)
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return body["connections"].(float64)
	}

	c := &Client{hub: s, send: make(chan *hubEvent, 8)}
	s.register <- c
	require.Eventually(t, func() bool { return connections() == 1 }, 2*time.Second, 10*time.Millisecond)

	s.unregister <- c
	require.Eventually(t, func() bool { return connections() == 0 }, 2*time.Second, 10*time.Millisecond)
}

// -----------------------------------------------------------------------------

func TestStatusEndpoint(t *testing.T) {
	s := newTestServer()

	w := doRequest(s, http.MethodGet, "/api/status")
	require.Equal(t, http.StatusOK, w.Code)

	var status models.MPlatformStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.Contains(t, status.Initialized, "dashboard")
	assert.Equal(t, models.StateConnected, status.Connection)
}

// -----------------------------------------------------------------------------

func TestNavigationEndpoint(t *testing.T) {
	s := newTestServer()

	w := doRequest(s, http.MethodGet, "/api/navigation")
	require.Equal(t, http.StatusOK, w.Code)

	var nav models.MNavigationState
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &nav))
	assert.Equal(t, models.PageDashboard, nav.CurrentPage)
}

// -----------------------------------------------------------------------------

func TestSnapshotEndpoint(t *testing.T) {
	s := newTestServer()

	w := doRequest(s, http.MethodGet, "/api/snapshots/dashboard")
	assert.Equal(t, http.StatusNotFound, w.Code)

	s.Broadcast("dashboard", map[string]interface{}{"version": 3})

	w = doRequest(s, http.MethodGet, "/api/snapshots/dashboard")
	require.Equal(t, http.StatusOK, w.Code)

	var snap map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &snap))
	assert.EqualValues(t, 3, snap["version"])
}

// -----------------------------------------------------------------------------

func TestBroadcastNeverBlocks(t *testing.T) {
	s := newTestServer()

	// No hub goroutine is draining the queue; pushing far past the buffer
	// must drop events instead of stalling.
	for i := 0; i < 1000; i++ {
		s.Broadcast("dashboard", i)
	}

	w := doRequest(s, http.MethodGet, "/api/snapshots/dashboard")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "999", w.Body.String())
}

// -----------------------------------------------------------------------------

func TestCORSAllowsLoopbackOnly(t *testing.T) {
	s := newTestServer()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	s.engine.ServeHTTP(w, req)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "http://evil.example.com")
	s.engine.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
