package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"platform-observer/src/logger"
	"platform-observer/src/models"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// FanoutServer
// -----------------------------------------------------------------------------

// StatusProvider returns the current platform status for /api/status.
type StatusProvider func() models.MPlatformStatus

// NavigationProvider returns the current navigation state.
type NavigationProvider func() models.MNavigationState

// -----------------------------------------------------------------------------

// hubEvent is one snapshot change pushed to local UI clients.
type hubEvent struct {
	Feature   string      `json:"feature"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"`
}

// -----------------------------------------------------------------------------

// FanoutServer re-exposes the synchronized snapshots to local UI clients:
// plain reads over HTTP plus a websocket hub that pushes every change.
type FanoutServer struct {
	Config *models.MConfig
	Logger *logger.Logger
	engine *gin.Engine
	httpd  *http.Server

	// WebSocket clients. The map belongs to the hub goroutine alone;
	// everyone else reads the counter.
	clients     map[*Client]struct{}
	clientCount atomic.Int64
	broadcast   chan *hubEvent // Buffered Queue
	register    chan *Client
	unregister  chan *Client

	// Served state
	snapshots  map[string]interface{}
	stateMutex sync.RWMutex

	status StatusProvider
	nav    NavigationProvider
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewFanoutServer(cfg *models.MConfig, log *logger.Logger, status StatusProvider, nav NavigationProvider) *FanoutServer {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &FanoutServer{
		Config:  cfg,
		Logger:  log,
		engine:  gin.Default(),
		clients: make(map[*Client]struct{}),
		// Buffered channel so bursts of snapshot changes never block the
		// feature managers.
		broadcast:  make(chan *hubEvent, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		snapshots:  make(map[string]interface{}),
		status:     status,
		nav:        nav,
	}

	// Local UI only: allow loopback origins.
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *FanoutServer) setupRoutes() {
	// REST API endpoints
	s.engine.GET("/api/health", s.getHealth)
	s.engine.GET("/api/status", s.getStatus)
	s.engine.GET("/api/navigation", s.getNavigation)
	s.engine.GET("/api/snapshots/:feature", s.getSnapshot)

	// WebSocket endpoint
	s.engine.GET("/ws", s.handleWebSocket)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *FanoutServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)
	s.Logger.Info("Starting fan-out server on %s", addr)

	go s.handleWebsockets()

	s.httpd = &http.Server{Addr: addr, Handler: s.engine}
	if err := s.httpd.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// -----------------------------------------------------------------------------

func (s *FanoutServer) Stop() error {
	if s.httpd == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return s.httpd.Shutdown(ctx)
}

// -----------------------------------------------------------------------------
// Data Exchange Interface Implementation
// -----------------------------------------------------------------------------

// Broadcast stores the new snapshot and queues it for hub fan-out.
func (s *FanoutServer) Broadcast(feature string, payload interface{}) {
	s.stateMutex.Lock()
	s.snapshots[feature] = payload
	s.stateMutex.Unlock()

	event := &hubEvent{
		Feature:   feature,
		Data:      payload,
		Timestamp: time.Now().Unix(),
	}

	// Non-blocking send: the buffer absorbs bursts; a full queue drops
	// the event rather than stalling a feature manager.
	select {
	case s.broadcast <- event:
	default:
		s.Logger.Warning("Hub queue full, dropping %s event", feature)
	}
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *FanoutServer) getHealth(c *gin.Context) {
	s.stateMutex.RLock()
	features := len(s.snapshots)
	s.stateMutex.RUnlock()

	c.JSON(200, gin.H{
		"status":      "ok",
		"connections": s.clientCount.Load(),
		"features":    features,
	})
}

// -----------------------------------------------------------------------------

func (s *FanoutServer) getStatus(c *gin.Context) {
	c.JSON(200, s.status())
}

// -----------------------------------------------------------------------------

func (s *FanoutServer) getNavigation(c *gin.Context) {
	c.JSON(200, s.nav())
}

// -----------------------------------------------------------------------------

func (s *FanoutServer) getSnapshot(c *gin.Context) {
	feature := c.Param("feature")

	s.stateMutex.RLock()
	snapshot, ok := s.snapshots[feature]
	s.stateMutex.RUnlock()

	if !ok {
		c.JSON(404, gin.H{"error": fmt.Sprintf("no snapshot for feature %q", feature)})
		return
	}
	c.JSON(200, snapshot)
}
