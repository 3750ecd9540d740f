package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"platform-observer/src/config"
	"platform-observer/src/features"
	"platform-observer/src/interfaces"
	"platform-observer/src/logger"
	"platform-observer/src/models"
	"platform-observer/src/navigation"
	"platform-observer/src/network"
	"platform-observer/src/server"
	"platform-observer/src/socket"
	"platform-observer/src/storage"
)

// -----------------------------------------------------------------------------
// Platform
// -----------------------------------------------------------------------------

// Platform is the composition root. It owns every component lifecycle
// explicitly: construction here, Init on Start, Destroy on Stop. No
// module-level singletons.
type Platform struct {
	Config *config.Config
	Logger *logger.Logger

	Store      interfaces.ISnapshotStore
	API        interfaces.IAPIClient
	Socket     interfaces.ISocketManager
	Server     *server.FanoutServer
	Navigation *navigation.Manager

	Dashboard   *features.DashboardManager
	Analytics   *features.AnalyticsManager
	Simulations *features.SimulationsManager
	Agents      *features.AgentsManager

	managers []interfaces.IFeatureManager

	mu          sync.Mutex
	status      models.MPlatformStatus
	stopCleanup chan struct{}
	started     bool
}

// -----------------------------------------------------------------------------
// Construction
// -----------------------------------------------------------------------------

func New(conf *config.Config) (*Platform, error) {
	appLogger := logger.NewLogger(conf.LogLevel, conf.Name)

	p := &Platform{
		Config: conf,
		Logger: appLogger,
		status: models.MPlatformStatus{
			Name:       conf.Name,
			Connection: models.StateDisconnected,
		},
	}

	// Storage backend per config
	var store interfaces.ISnapshotStore
	var err error
	switch conf.Storage.DBType {
	case "postgres":
		store, err = storage.NewPostgresSnapshotStore(conf.MConfig, logger.NewLogger(conf.LogLevel, "PostgresStore"))
	default:
		store, err = storage.NewSQLiteSnapshotStore(conf.MConfig, logger.NewLogger(conf.LogLevel, "SQLiteStore"))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build snapshot store: %w", err)
	}
	p.Store = store

	p.API = network.NewAPIClient(conf.MConfig, logger.NewLogger(conf.LogLevel, "APIClient"))
	p.Socket = socket.NewManager(conf.MConfig, logger.NewLogger(conf.LogLevel, "SocketManager"))
	p.Server = server.NewFanoutServer(conf.MConfig, logger.NewLogger(conf.LogLevel, "FanoutServer"), p.Status, p.NavigationState)
	p.Navigation = navigation.NewManager(models.PageDashboard, logger.NewLogger(conf.LogLevel, "Navigation"))

	p.Dashboard = features.NewDashboardManager(conf.MConfig, logger.NewLogger(conf.LogLevel, "Dashboard"), p.API, p.Socket, p.Store, p.Server)
	p.Analytics = features.NewAnalyticsManager(conf.MConfig, logger.NewLogger(conf.LogLevel, "Analytics"), p.API, p.Socket, p.Store, p.Server)
	p.Simulations = features.NewSimulationsManager(conf.MConfig, logger.NewLogger(conf.LogLevel, "Simulations"), p.API, p.Socket, p.Store, p.Server)
	p.Agents = features.NewAgentsManager(conf.MConfig, logger.NewLogger(conf.LogLevel, "Agents"), p.API, p.Socket, p.Store, p.Server)
	p.managers = []interfaces.IFeatureManager{p.Dashboard, p.Analytics, p.Simulations, p.Agents}

	// One navigation handler per feature. Init is idempotent, so
	// revisiting a page is a cheap no-op.
	for _, mgr := range p.managers {
		m := mgr
		p.Navigation.RegisterHandler(m.Page(), func(ctx context.Context) error {
			return m.Init()
		})
	}
	// Intel shares the dashboard dataset; its page just re-enters the
	// dashboard manager.
	p.Navigation.RegisterHandler(models.PageIntel, func(ctx context.Context) error {
		return p.Dashboard.Init()
	})

	return p, nil
}

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

// Start brings the platform up. Component failures are contained: they are
// recorded in the status object and the remaining components keep going.
func (p *Platform) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		p.Logger.Warning("Platform already started; ignoring repeat Start")
		return nil
	}
	p.started = true
	p.status.StartedAt = time.Now().Unix()
	p.stopCleanup = make(chan struct{})
	stopCleanup := p.stopCleanup
	p.mu.Unlock()

	if err := p.Store.Initialize(); err != nil {
		p.recordError(fmt.Sprintf("storage: %v", err))
		p.Logger.Warning("Snapshot store unavailable, running without cache: %v", err)
	}

	// Backend reachability check; failure is diagnostic only, the managers
	// fall back to cache or built-in datasets on their own.
	var health struct {
		Status string `json:"status"`
	}
	if err := p.API.Get(ctx, "/health", &health); err != nil {
		p.recordError(fmt.Sprintf("backend health: %v", err))
		p.Logger.Warning("Backend health check failed: %v", err)
	} else {
		p.Logger.Info("Backend reachable, status %q", health.Status)
	}

	// Socket failure must not block the rest of initialization; polling
	// keeps the snapshots warm meanwhile.
	if err := p.Socket.Connect(ctx); err != nil {
		p.recordError(fmt.Sprintf("socket: %v", err))
	}

	go func() {
		if err := p.Server.Start(); err != nil {
			p.recordError(fmt.Sprintf("server: %v", err))
			p.Logger.Error("Fan-out server failed: %v", err)
		}
	}()

	// Bring every feature up; one failing manager never blocks the others.
	for _, mgr := range p.managers {
		if err := mgr.Init(); err != nil {
			p.recordError(fmt.Sprintf("%s: %v", mgr.Name(), err))
			p.Logger.Error("Failed to initialize %s manager: %v", mgr.Name(), err)
			continue
		}
		p.mu.Lock()
		p.status.Initialized = append(p.status.Initialized, mgr.Name())
		p.mu.Unlock()
	}

	// Enter the initial page through the replay path so the history does
	// not get a duplicate first entry.
	if err := p.Navigation.HandleHistoryNavigation(ctx, models.PageDashboard); err != nil {
		p.recordError(fmt.Sprintf("navigation: %v", err))
	}

	go p.cleanupLoop(stopCleanup)

	p.Logger.Info("Platform started")
	return nil
}

// -----------------------------------------------------------------------------

// cleanupLoop expires stale cached snapshots on the cache-duration cadence.
func (p *Platform) cleanupLoop(stop chan struct{}) {
	maxAge := time.Duration(p.Config.Storage.CacheDurationMinutes) * time.Minute
	ticker := time.NewTicker(maxAge)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := p.Store.CleanupExpired(maxAge); err != nil {
				p.Logger.Warning("Snapshot cleanup failed: %v", err)
			}
		}
	}
}

// -----------------------------------------------------------------------------

// Stop tears everything down in reverse construction order.
func (p *Platform) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	close(p.stopCleanup)
	p.mu.Unlock()

	for _, mgr := range p.managers {
		mgr.Destroy()
	}
	p.Socket.Close()
	if err := p.Server.Stop(); err != nil {
		p.Logger.Warning("Fan-out server shutdown: %v", err)
	}
	if err := p.Store.Close(); err != nil {
		p.Logger.Warning("Snapshot store close: %v", err)
	}

	p.Logger.Info("Platform stopped")
}

// -----------------------------------------------------------------------------
// Queries
// -----------------------------------------------------------------------------

func (p *Platform) recordError(msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status.Errors = append(p.status.Errors, msg)
}

// -----------------------------------------------------------------------------

// Status returns a copy of the diagnostic record with the live connection
// state folded in.
func (p *Platform) Status() models.MPlatformStatus {
	p.mu.Lock()
	status := p.status
	status.Initialized = append([]string(nil), p.status.Initialized...)
	status.Errors = append([]string(nil), p.status.Errors...)
	p.mu.Unlock()

	status.Connection = p.Socket.State()
	status.APIMode = status.Connection == models.StateError
	return status
}

// -----------------------------------------------------------------------------

// NavigationState returns the current navigation state.
func (p *Platform) NavigationState() models.MNavigationState {
	return p.Navigation.State()
}

// -----------------------------------------------------------------------------
// Export
// -----------------------------------------------------------------------------

// exportNames maps feature managers to their artifact file names.
var exportNames = map[string]string{
	"dashboard":   "dashboard-data.json",
	"analytics":   "analytics-results.json",
	"simulations": "simulation-results.json",
	"agents":      "agents-data.json",
}

// -----------------------------------------------------------------------------

// ExportAll writes every feature snapshot plus a platform-wide artifact to
// the configured export directory and returns the written paths.
func (p *Platform) ExportAll() ([]string, error) {
	dir := p.Config.Export.Directory
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory '%s': %w", dir, err)
	}

	var written []string
	combined := make(map[string]json.RawMessage, len(p.managers)+1)

	for _, mgr := range p.managers {
		payload, err := mgr.Export()
		if err != nil {
			return written, fmt.Errorf("failed to export %s: %w", mgr.Name(), err)
		}

		path := filepath.Join(dir, exportNames[mgr.Name()])
		if err := os.WriteFile(path, payload, 0644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", path, err)
		}
		written = append(written, path)
		combined[mgr.Name()] = payload
	}

	statusPayload, err := json.Marshal(p.Status())
	if err != nil {
		return written, fmt.Errorf("failed to encode status: %w", err)
	}
	combined["status"] = statusPayload

	full, err := json.MarshalIndent(combined, "", "  ")
	if err != nil {
		return written, fmt.Errorf("failed to encode platform export: %w", err)
	}
	path := filepath.Join(dir, "platform-export.json")
	if err := os.WriteFile(path, full, 0644); err != nil {
		return written, fmt.Errorf("failed to write %s: %w", path, err)
	}
	written = append(written, path)

	p.Logger.Info("Exported %d artifacts to %s", len(written), dir)
	return written, nil
}
