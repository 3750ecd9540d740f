package features

import (
	"context"
	"encoding/json"
	"time"

	"platform-observer/src/analysis"
	"platform-observer/src/interfaces"
	"platform-observer/src/logger"
	"platform-observer/src/models"
)

// -----------------------------------------------------------------------------
// AgentsManager
// -----------------------------------------------------------------------------

const agentsFeature = "agents"

// agentsPayload is the shape of GET /agents.
type agentsPayload struct {
	Agents []models.MAgent `json:"agents"`
}

// -----------------------------------------------------------------------------

// AgentsManager owns the autonomous-agent roster. Live updates with the
// "agent" category bump the matching agent's heartbeat.
type AgentsManager struct {
	base

	// guarded by base.mu
	snapshot models.MAgentsData
}

// -----------------------------------------------------------------------------

func NewAgentsManager(cfg *models.MConfig, log *logger.Logger, api interfaces.IAPIClient,
	sock interfaces.ISocketManager, store interfaces.ISnapshotStore,
	exchange interfaces.IDataExchanger) *AgentsManager {
	return &AgentsManager{base: newBase(cfg, log, api, sock, store, exchange)}
}

// -----------------------------------------------------------------------------

func (gm *AgentsManager) Name() string      { return agentsFeature }
func (gm *AgentsManager) Page() models.Page { return models.PageAgents }

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

func (gm *AgentsManager) Init() error {
	if !gm.beginInit(agentsFeature) {
		gm.Logger.Warning("Agents manager already initialized; ignoring repeat Init")
		return nil
	}

	data := gm.loadInitial()

	gm.mu.Lock()
	gm.snapshot = data
	gm.snapshot.Version = 1
	gm.snapshot.Metrics = analysis.ComputeAgentMetrics(gm.snapshot.Agents)
	snap := gm.snapshot
	stop := gm.stop
	owner := gm.ownerID
	gm.mu.Unlock()

	gm.Socket.Subscribe(owner, []models.Topic{models.TopicRealTimeUpdate}, gm.handleMessage)
	if !gm.confirmSubscription(owner) {
		return nil
	}

	interval := time.Duration(gm.Config.Polling.IntervalSeconds) * time.Second
	go gm.pollLoop(stop, func() time.Duration { return interval }, func() { _ = gm.Refresh() })

	gm.broadcast(agentsFeature, snap)
	return nil
}

// -----------------------------------------------------------------------------

func (gm *AgentsManager) loadInitial() models.MAgentsData {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(gm.Config.API.RequestTimeout)*time.Second)
	defer cancel()

	var payload agentsPayload
	if err := gm.API.Get(ctx, "/agents", &payload); err == nil {
		return models.MAgentsData{
			Agents:      payload.Agents,
			LastUpdated: time.Now().Unix(),
		}
	} else {
		gm.Logger.Warning("Initial agents fetch failed: %v", err)
	}

	if cached, ok := gm.loadCached(agentsFeature); ok {
		var data models.MAgentsData
		if err := json.Unmarshal(cached, &data); err == nil {
			gm.Logger.Info("Agents snapshot restored from cache")
			return data
		}
	}

	gm.Logger.Info("Agents falling back to built-in dataset")
	return defaultAgentsData()
}

// -----------------------------------------------------------------------------

func (gm *AgentsManager) Refresh() error {
	g := gm.currentGeneration()
	gm.mu.Lock()
	startVersion := gm.snapshot.Version
	gm.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(gm.Config.API.RequestTimeout)*time.Second)
	defer cancel()

	var payload agentsPayload
	if err := gm.API.Get(ctx, "/agents", &payload); err != nil {
		gm.Logger.Warning("Agents refresh failed, keeping previous snapshot: %v", err)
		return err
	}

	gm.mu.Lock()
	if !gm.stillCurrent(g) {
		gm.mu.Unlock()
		return nil
	}
	if gm.snapshot.Version != startVersion {
		gm.mu.Unlock()
		gm.Logger.Debug("Discarding agents refresh: snapshot moved during fetch")
		return nil
	}
	gm.snapshot.Agents = payload.Agents
	gm.snapshot.Version++
	gm.snapshot.Metrics = analysis.ComputeAgentMetrics(gm.snapshot.Agents)
	gm.snapshot.LastUpdated = time.Now().Unix()
	snap := gm.snapshot
	gm.mu.Unlock()

	if encoded, err := json.Marshal(snap); err == nil {
		gm.persist(agentsFeature, encoded)
	}
	gm.broadcast(agentsFeature, snap)
	return nil
}

// -----------------------------------------------------------------------------

func (gm *AgentsManager) Destroy() {
	owner, ok := gm.beginDestroy()
	if !ok {
		return
	}
	gm.Socket.Unsubscribe(owner)
	gm.Logger.Info("Agents manager destroyed")
}

// -----------------------------------------------------------------------------
// Socket Patches
// -----------------------------------------------------------------------------

func (gm *AgentsManager) handleMessage(msg models.MSocketMessage) {
	if msg.Type != models.TopicRealTimeUpdate {
		return
	}

	var p models.MRealTimeUpdatePayload
	if err := json.Unmarshal(msg.Data, &p); err != nil {
		gm.Logger.Warning("Bad real_time_update payload: %v", err)
		return
	}
	if p.Update.Category != "agent" {
		return
	}

	gm.mu.Lock()
	if !gm.initialized {
		gm.mu.Unlock()
		return
	}

	mutated := false
	for i := range gm.snapshot.Agents {
		if gm.snapshot.Agents[i].ID == p.Update.Source {
			gm.snapshot.Agents[i].LastSeen = p.Update.Timestamp
			gm.snapshot.Agents[i].Status = "active"
			mutated = true
			break
		}
	}

	if !mutated {
		gm.mu.Unlock()
		return
	}

	gm.snapshot.Version++
	gm.snapshot.Metrics = analysis.ComputeAgentMetrics(gm.snapshot.Agents)
	gm.snapshot.LastUpdated = time.Now().Unix()
	snap := gm.snapshot
	gm.mu.Unlock()

	gm.broadcast(agentsFeature, snap)
}

// -----------------------------------------------------------------------------
// Queries & Export
// -----------------------------------------------------------------------------

func (gm *AgentsManager) Snapshot() models.MAgentsData {
	gm.mu.Lock()
	defer gm.mu.Unlock()
	return gm.snapshot
}

// -----------------------------------------------------------------------------

func (gm *AgentsManager) Export() ([]byte, error) {
	gm.mu.Lock()
	snap := gm.snapshot
	gm.mu.Unlock()
	return json.MarshalIndent(snap, "", "  ")
}
