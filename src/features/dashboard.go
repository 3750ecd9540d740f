package features

import (
	"context"
	"encoding/json"
	"time"

	"platform-observer/src/analysis"
	"platform-observer/src/interfaces"
	"platform-observer/src/logger"
	"platform-observer/src/models"
	"platform-observer/src/utils"

	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// DashboardManager
// -----------------------------------------------------------------------------

const dashboardFeature = "dashboard"

// dashboardPayload is the shape of GET /intel.
type dashboardPayload struct {
	Companies []models.MCompany      `json:"companies"`
	Market    models.MMarketOverview `json:"market"`
}

// -----------------------------------------------------------------------------

// DashboardManager owns the intelligence-board snapshot: tracked companies,
// the market overview and the bounded live-update feed. Polling cadence is
// market-aware; socket pushes patch the snapshot incrementally.
type DashboardManager struct {
	base
	scheduler *utils.MarketScheduler

	// guarded by base.mu
	snapshot models.MDashboardData
	feed     *utils.UpdateFeed
}

// -----------------------------------------------------------------------------

func NewDashboardManager(cfg *models.MConfig, log *logger.Logger, api interfaces.IAPIClient,
	sock interfaces.ISocketManager, store interfaces.ISnapshotStore,
	exchange interfaces.IDataExchanger) *DashboardManager {
	return &DashboardManager{
		base:      newBase(cfg, log, api, sock, store, exchange),
		scheduler: utils.NewMarketScheduler(cfg.Polling.MarketSymbols, log),
		feed:      utils.NewUpdateFeed(cfg.Updates.MaxEntries),
	}
}

// -----------------------------------------------------------------------------

func (dm *DashboardManager) Name() string      { return dashboardFeature }
func (dm *DashboardManager) Page() models.Page { return models.PageDashboard }

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

func (dm *DashboardManager) Init() error {
	if !dm.beginInit(dashboardFeature) {
		dm.Logger.Warning("Dashboard manager already initialized; ignoring repeat Init")
		return nil
	}

	data := dm.loadInitial()

	dm.mu.Lock()
	dm.snapshot = data
	dm.feed.Reset()
	// Feed stores newest-first; replay cached entries oldest-first.
	for i := len(data.RealTimeUpdates) - 1; i >= 0; i-- {
		dm.feed.Push(data.RealTimeUpdates[i])
	}
	dm.snapshot.RealTimeUpdates = dm.feed.Items()
	dm.snapshot.Version = 1
	dm.snapshot.Metrics = analysis.ComputeDashboardMetrics(dm.snapshot.Companies)
	snap := dm.snapshot
	stop := dm.stop
	owner := dm.ownerID
	dm.mu.Unlock()

	dm.Socket.Subscribe(owner, []models.Topic{
		models.TopicMarketData,
		models.TopicCompanyUpdate,
		models.TopicRealTimeUpdate,
		models.TopicThreatAlert,
	}, dm.handleMessage)
	if !dm.confirmSubscription(owner) {
		return nil
	}

	go dm.pollLoop(stop, dm.interval, func() { _ = dm.Refresh() })

	dm.broadcast(dashboardFeature, snap)
	return nil
}

// -----------------------------------------------------------------------------

// loadInitial resolves the first snapshot: backend, then cache, then the
// built-in default dataset. Never fails.
func (dm *DashboardManager) loadInitial() models.MDashboardData {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(dm.Config.API.RequestTimeout)*time.Second)
	defer cancel()

	var payload dashboardPayload
	if err := dm.API.Get(ctx, "/intel", &payload); err == nil {
		return models.MDashboardData{
			Companies:   payload.Companies,
			Market:      payload.Market,
			LastUpdated: time.Now().Unix(),
		}
	} else {
		dm.Logger.Warning("Initial dashboard fetch failed: %v", err)
	}

	if cached, ok := dm.loadCached(dashboardFeature); ok {
		var data models.MDashboardData
		if err := json.Unmarshal(cached, &data); err == nil {
			dm.Logger.Info("Dashboard snapshot restored from cache")
			return data
		}
	}

	dm.Logger.Info("Dashboard falling back to built-in dataset")
	return defaultDashboardData()
}

// -----------------------------------------------------------------------------

// interval is the market-aware polling cadence.
func (dm *DashboardManager) interval() time.Duration {
	fast := time.Duration(dm.Config.Polling.IntervalSeconds) * time.Second
	slow := time.Duration(dm.Config.Polling.OffHoursIntervalSeconds) * time.Second
	return dm.scheduler.Interval(fast, slow)
}

// -----------------------------------------------------------------------------

// Refresh re-fetches the full snapshot. A failure keeps the previous
// snapshot; a refresh overtaken by an interleaving socket patch (version
// moved since the fetch started) is discarded.
func (dm *DashboardManager) Refresh() error {
	g := dm.currentGeneration()
	dm.mu.Lock()
	startVersion := dm.snapshot.Version
	dm.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(dm.Config.API.RequestTimeout)*time.Second)
	defer cancel()

	var payload dashboardPayload
	if err := dm.API.Get(ctx, "/intel", &payload); err != nil {
		dm.Logger.Warning("Dashboard refresh failed, keeping previous snapshot: %v", err)
		return err
	}

	dm.mu.Lock()
	if !dm.stillCurrent(g) {
		dm.mu.Unlock()
		return nil
	}
	if dm.snapshot.Version != startVersion {
		dm.mu.Unlock()
		dm.Logger.Debug("Discarding dashboard refresh: snapshot moved during fetch")
		return nil
	}
	dm.snapshot.Companies = payload.Companies
	dm.snapshot.Market = payload.Market
	dm.snapshot.Version++
	dm.snapshot.Metrics = analysis.ComputeDashboardMetrics(dm.snapshot.Companies)
	dm.snapshot.LastUpdated = time.Now().Unix()
	snap := dm.snapshot
	dm.mu.Unlock()

	if encoded, err := json.Marshal(snap); err == nil {
		dm.persist(dashboardFeature, encoded)
	}
	dm.broadcast(dashboardFeature, snap)
	return nil
}

// -----------------------------------------------------------------------------

func (dm *DashboardManager) Destroy() {
	owner, ok := dm.beginDestroy()
	if !ok {
		return
	}
	dm.Socket.Unsubscribe(owner)
	dm.Logger.Info("Dashboard manager destroyed")
}

// -----------------------------------------------------------------------------
// Socket Patches
// -----------------------------------------------------------------------------

func (dm *DashboardManager) handleMessage(msg models.MSocketMessage) {
	dm.mu.Lock()
	if !dm.initialized {
		dm.mu.Unlock()
		return
	}

	mutated := false
	switch msg.Type {
	case models.TopicMarketData:
		var p models.MMarketDataPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			dm.Logger.Warning("Bad market_data payload: %v", err)
			break
		}
		dm.snapshot.Market = p.Overview
		mutated = true

	case models.TopicCompanyUpdate:
		var p models.MCompanyUpdatePayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			dm.Logger.Warning("Bad company_update payload: %v", err)
			break
		}
		dm.mergeCompany(p.Company)
		mutated = true

	case models.TopicRealTimeUpdate:
		var p models.MRealTimeUpdatePayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			dm.Logger.Warning("Bad real_time_update payload: %v", err)
			break
		}
		dm.feed.Push(p.Update)
		dm.snapshot.RealTimeUpdates = dm.feed.Items()
		mutated = true

	case models.TopicThreatAlert:
		var p models.MThreatAlertPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			dm.Logger.Warning("Bad threat_alert payload: %v", err)
			break
		}
		ts := msg.Timestamp
		if ts == 0 {
			ts = time.Now().Unix()
		}
		dm.feed.Push(models.MRealTimeUpdate{
			ID:        uuid.NewString(),
			Source:    p.Source,
			Category:  "threat_alert",
			Message:   p.Message,
			Severity:  p.Severity,
			Timestamp: ts,
		})
		dm.snapshot.RealTimeUpdates = dm.feed.Items()
		mutated = true
	}

	if !mutated {
		dm.mu.Unlock()
		return
	}

	dm.snapshot.Version++
	dm.snapshot.Metrics = analysis.ComputeDashboardMetrics(dm.snapshot.Companies)
	dm.snapshot.LastUpdated = time.Now().Unix()
	snap := dm.snapshot
	dm.mu.Unlock()

	dm.broadcast(dashboardFeature, snap)
}

// -----------------------------------------------------------------------------

// mergeCompany replaces the matching entity by id, or appends a new one.
// Must be called with dm.mu held.
func (dm *DashboardManager) mergeCompany(company models.MCompany) {
	for i := range dm.snapshot.Companies {
		if dm.snapshot.Companies[i].ID == company.ID {
			dm.snapshot.Companies[i] = company
			return
		}
	}
	dm.snapshot.Companies = append(dm.snapshot.Companies, company)
}

// -----------------------------------------------------------------------------
// Queries & Export
// -----------------------------------------------------------------------------

// Snapshot returns a copy of the current snapshot.
func (dm *DashboardManager) Snapshot() models.MDashboardData {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	return dm.snapshot
}

// -----------------------------------------------------------------------------

// Export serializes the snapshot to pretty JSON. Pure, no network call.
func (dm *DashboardManager) Export() ([]byte, error) {
	dm.mu.Lock()
	snap := dm.snapshot
	dm.mu.Unlock()
	return json.MarshalIndent(snap, "", "  ")
}
