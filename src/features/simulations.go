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
// SimulationsManager
// -----------------------------------------------------------------------------

const simulationsFeature = "simulations"

// simulationsPayload is the shape of GET /simulations.
type simulationsPayload struct {
	Simulations []models.MSimulation `json:"simulations"`
}

// -----------------------------------------------------------------------------

// SimulationsManager owns the business-simulation run history and can
// launch new runs.
type SimulationsManager struct {
	base

	// guarded by base.mu
	snapshot models.MSimulationHistory
}

// -----------------------------------------------------------------------------

func NewSimulationsManager(cfg *models.MConfig, log *logger.Logger, api interfaces.IAPIClient,
	sock interfaces.ISocketManager, store interfaces.ISnapshotStore,
	exchange interfaces.IDataExchanger) *SimulationsManager {
	return &SimulationsManager{base: newBase(cfg, log, api, sock, store, exchange)}
}

// -----------------------------------------------------------------------------

func (sm *SimulationsManager) Name() string      { return simulationsFeature }
func (sm *SimulationsManager) Page() models.Page { return models.PageSimulations }

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

func (sm *SimulationsManager) Init() error {
	if !sm.beginInit(simulationsFeature) {
		sm.Logger.Warning("Simulations manager already initialized; ignoring repeat Init")
		return nil
	}

	data := sm.loadInitial()

	sm.mu.Lock()
	sm.snapshot = data
	sm.snapshot.Version = 1
	sm.snapshot.Metrics = analysis.ComputeSimulationMetrics(sm.snapshot.Simulations)
	snap := sm.snapshot
	stop := sm.stop
	owner := sm.ownerID
	sm.mu.Unlock()

	sm.Socket.Subscribe(owner, []models.Topic{
		models.TopicSimulationUpdate,
		models.TopicSimulationProgress,
		models.TopicSimulationResult,
	}, sm.handleMessage)
	if !sm.confirmSubscription(owner) {
		return nil
	}

	interval := time.Duration(sm.Config.Polling.IntervalSeconds) * time.Second
	go sm.pollLoop(stop, func() time.Duration { return interval }, func() { _ = sm.Refresh() })

	sm.broadcast(simulationsFeature, snap)
	return nil
}

// -----------------------------------------------------------------------------

func (sm *SimulationsManager) loadInitial() models.MSimulationHistory {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(sm.Config.API.RequestTimeout)*time.Second)
	defer cancel()

	var payload simulationsPayload
	if err := sm.API.Get(ctx, "/simulations", &payload); err == nil {
		return models.MSimulationHistory{
			Simulations: payload.Simulations,
			LastUpdated: time.Now().Unix(),
		}
	} else {
		sm.Logger.Warning("Initial simulations fetch failed: %v", err)
	}

	if cached, ok := sm.loadCached(simulationsFeature); ok {
		var data models.MSimulationHistory
		if err := json.Unmarshal(cached, &data); err == nil {
			sm.Logger.Info("Simulations snapshot restored from cache")
			return data
		}
	}

	sm.Logger.Info("Simulations falling back to built-in dataset")
	return defaultSimulationHistory()
}

// -----------------------------------------------------------------------------

func (sm *SimulationsManager) Refresh() error {
	g := sm.currentGeneration()
	sm.mu.Lock()
	startVersion := sm.snapshot.Version
	sm.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(sm.Config.API.RequestTimeout)*time.Second)
	defer cancel()

	var payload simulationsPayload
	if err := sm.API.Get(ctx, "/simulations", &payload); err != nil {
		sm.Logger.Warning("Simulations refresh failed, keeping previous snapshot: %v", err)
		return err
	}

	sm.mu.Lock()
	if !sm.stillCurrent(g) {
		sm.mu.Unlock()
		return nil
	}
	if sm.snapshot.Version != startVersion {
		sm.mu.Unlock()
		sm.Logger.Debug("Discarding simulations refresh: snapshot moved during fetch")
		return nil
	}
	sm.snapshot.Simulations = payload.Simulations
	sm.snapshot.Version++
	sm.snapshot.Metrics = analysis.ComputeSimulationMetrics(sm.snapshot.Simulations)
	sm.snapshot.LastUpdated = time.Now().Unix()
	snap := sm.snapshot
	sm.mu.Unlock()

	if encoded, err := json.Marshal(snap); err == nil {
		sm.persist(simulationsFeature, encoded)
	}
	sm.broadcast(simulationsFeature, snap)
	return nil
}

// -----------------------------------------------------------------------------

func (sm *SimulationsManager) Destroy() {
	owner, ok := sm.beginDestroy()
	if !ok {
		return
	}
	sm.Socket.Unsubscribe(owner)
	sm.Logger.Info("Simulations manager destroyed")
}

// -----------------------------------------------------------------------------
// Operations
// -----------------------------------------------------------------------------

// Launch starts a new simulation run on the backend and merges the
// returned run into the snapshot.
func (sm *SimulationsManager) Launch(ctx context.Context, scenario string) (models.MSimulation, error) {
	var created models.MSimulation
	err := sm.API.Post(ctx, "/simulations", models.MSimulationRequest{Scenario: scenario}, &created)
	if err != nil {
		return models.MSimulation{}, err
	}

	sm.mu.Lock()
	if !sm.initialized {
		sm.mu.Unlock()
		return created, nil
	}
	sm.mergeSimulation(created)
	sm.snapshot.Version++
	sm.snapshot.Metrics = analysis.ComputeSimulationMetrics(sm.snapshot.Simulations)
	sm.snapshot.LastUpdated = time.Now().Unix()
	snap := sm.snapshot
	sm.mu.Unlock()

	sm.broadcast(simulationsFeature, snap)
	return created, nil
}

// -----------------------------------------------------------------------------
// Socket Patches
// -----------------------------------------------------------------------------

func (sm *SimulationsManager) handleMessage(msg models.MSocketMessage) {
	sm.mu.Lock()
	if !sm.initialized {
		sm.mu.Unlock()
		return
	}

	mutated := false
	switch msg.Type {
	case models.TopicSimulationUpdate:
		var p models.MSimulationUpdatePayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			sm.Logger.Warning("Bad simulation_update payload: %v", err)
			break
		}
		sm.mergeSimulation(p.Simulation)
		mutated = true

	case models.TopicSimulationProgress:
		var p models.MSimulationProgressPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			sm.Logger.Warning("Bad simulation_progress payload: %v", err)
			break
		}
		for i := range sm.snapshot.Simulations {
			if sm.snapshot.Simulations[i].ID == p.SimulationID {
				sm.snapshot.Simulations[i].Progress = p.Progress
				sm.snapshot.Simulations[i].Status = models.SimulationRunning
				mutated = true
				break
			}
		}

	case models.TopicSimulationResult:
		var p models.MSimulationResultPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			sm.Logger.Warning("Bad simulation_result payload: %v", err)
			break
		}
		for i := range sm.snapshot.Simulations {
			if sm.snapshot.Simulations[i].ID == p.SimulationID {
				sm.snapshot.Simulations[i].Status = models.SimulationCompleted
				sm.snapshot.Simulations[i].Progress = 100
				sm.snapshot.Simulations[i].Outcome = p.Outcome
				sm.snapshot.Simulations[i].Confidence = p.Confidence
				sm.snapshot.Simulations[i].FinishedAt = time.Now().Unix()
				mutated = true
				break
			}
		}
	}

	if !mutated {
		sm.mu.Unlock()
		return
	}

	sm.snapshot.Version++
	sm.snapshot.Metrics = analysis.ComputeSimulationMetrics(sm.snapshot.Simulations)
	sm.snapshot.LastUpdated = time.Now().Unix()
	snap := sm.snapshot
	sm.mu.Unlock()

	sm.broadcast(simulationsFeature, snap)
}

// -----------------------------------------------------------------------------

// mergeSimulation replaces the matching run by id, or appends a new one.
// Must be called with sm.mu held.
func (sm *SimulationsManager) mergeSimulation(sim models.MSimulation) {
	for i := range sm.snapshot.Simulations {
		if sm.snapshot.Simulations[i].ID == sim.ID {
			sm.snapshot.Simulations[i] = sim
			return
		}
	}
	sm.snapshot.Simulations = append(sm.snapshot.Simulations, sim)
}

// -----------------------------------------------------------------------------
// Queries & Export
// -----------------------------------------------------------------------------

func (sm *SimulationsManager) Snapshot() models.MSimulationHistory {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.snapshot
}

// -----------------------------------------------------------------------------

func (sm *SimulationsManager) Export() ([]byte, error) {
	sm.mu.Lock()
	snap := sm.snapshot
	sm.mu.Unlock()
	return json.MarshalIndent(snap, "", "  ")
}
