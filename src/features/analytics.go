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
// AnalyticsManager
// -----------------------------------------------------------------------------

const analyticsFeature = "analytics"

// quantPayload is the shape of GET /quant.
type quantPayload struct {
	Performance models.MPerformanceMetrics `json:"performance"`
	TestResults []models.MTestResult       `json:"test_results"`
}

// streamsPayload is the shape of GET /streams.
type streamsPayload struct {
	Features []models.MFeatureStatus `json:"features"`
}

// -----------------------------------------------------------------------------

// AnalyticsManager owns backend performance metrics, test runs and feature
// toggles.
type AnalyticsManager struct {
	base

	// guarded by base.mu
	snapshot models.MAnalyticsData
}

// -----------------------------------------------------------------------------

func NewAnalyticsManager(cfg *models.MConfig, log *logger.Logger, api interfaces.IAPIClient,
	sock interfaces.ISocketManager, store interfaces.ISnapshotStore,
	exchange interfaces.IDataExchanger) *AnalyticsManager {
	return &AnalyticsManager{base: newBase(cfg, log, api, sock, store, exchange)}
}

// -----------------------------------------------------------------------------

func (am *AnalyticsManager) Name() string      { return analyticsFeature }
func (am *AnalyticsManager) Page() models.Page { return models.PageAnalytics }

// -----------------------------------------------------------------------------
// Lifecycle
// -----------------------------------------------------------------------------

func (am *AnalyticsManager) Init() error {
	if !am.beginInit(analyticsFeature) {
		am.Logger.Warning("Analytics manager already initialized; ignoring repeat Init")
		return nil
	}

	data := am.loadInitial()

	am.mu.Lock()
	am.snapshot = data
	if am.snapshot.Features == nil {
		am.snapshot.Features = make(map[string]models.MFeatureStatus)
	}
	am.snapshot.Version = 1
	am.snapshot.Metrics = analysis.ComputeAnalyticsMetrics(am.snapshot.TestResults, am.snapshot.Features, am.snapshot.Performance)
	snap := am.snapshot
	stop := am.stop
	owner := am.ownerID
	am.mu.Unlock()

	am.Socket.Subscribe(owner, []models.Topic{
		models.TopicPerformanceMetrics,
		models.TopicTestResults,
		models.TopicFeatureStatus,
	}, am.handleMessage)
	if !am.confirmSubscription(owner) {
		return nil
	}

	interval := time.Duration(am.Config.Polling.IntervalSeconds) * time.Second
	go am.pollLoop(stop, func() time.Duration { return interval }, func() { _ = am.Refresh() })

	am.broadcast(analyticsFeature, snap)
	return nil
}

// -----------------------------------------------------------------------------

func (am *AnalyticsManager) loadInitial() models.MAnalyticsData {
	if data, err := am.fetch(); err == nil {
		return data
	} else {
		am.Logger.Warning("Initial analytics fetch failed: %v", err)
	}

	if cached, ok := am.loadCached(analyticsFeature); ok {
		var data models.MAnalyticsData
		if err := json.Unmarshal(cached, &data); err == nil {
			am.Logger.Info("Analytics snapshot restored from cache")
			return data
		}
	}

	am.Logger.Info("Analytics falling back to built-in dataset")
	return defaultAnalyticsData()
}

// -----------------------------------------------------------------------------

// fetch pulls /quant and /streams and assembles one snapshot.
func (am *AnalyticsManager) fetch() (models.MAnalyticsData, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(am.Config.API.RequestTimeout)*time.Second)
	defer cancel()

	var quant quantPayload
	if err := am.API.Get(ctx, "/quant", &quant); err != nil {
		return models.MAnalyticsData{}, err
	}

	var streams streamsPayload
	if err := am.API.Get(ctx, "/streams", &streams); err != nil {
		return models.MAnalyticsData{}, err
	}

	features := make(map[string]models.MFeatureStatus, len(streams.Features))
	for _, f := range streams.Features {
		features[f.ID] = f
	}

	return models.MAnalyticsData{
		Performance: quant.Performance,
		TestResults: quant.TestResults,
		Features:    features,
		LastUpdated: time.Now().Unix(),
	}, nil
}

// -----------------------------------------------------------------------------

func (am *AnalyticsManager) Refresh() error {
	g := am.currentGeneration()
	am.mu.Lock()
	startVersion := am.snapshot.Version
	am.mu.Unlock()

	data, err := am.fetch()
	if err != nil {
		am.Logger.Warning("Analytics refresh failed, keeping previous snapshot: %v", err)
		return err
	}

	am.mu.Lock()
	if !am.stillCurrent(g) {
		am.mu.Unlock()
		return nil
	}
	if am.snapshot.Version != startVersion {
		am.mu.Unlock()
		am.Logger.Debug("Discarding analytics refresh: snapshot moved during fetch")
		return nil
	}
	version := am.snapshot.Version + 1
	am.snapshot = data
	am.snapshot.Version = version
	am.snapshot.Metrics = analysis.ComputeAnalyticsMetrics(am.snapshot.TestResults, am.snapshot.Features, am.snapshot.Performance)
	snap := am.snapshot
	am.mu.Unlock()

	if encoded, err := json.Marshal(snap); err == nil {
		am.persist(analyticsFeature, encoded)
	}
	am.broadcast(analyticsFeature, snap)
	return nil
}

// -----------------------------------------------------------------------------

func (am *AnalyticsManager) Destroy() {
	owner, ok := am.beginDestroy()
	if !ok {
		return
	}
	am.Socket.Unsubscribe(owner)
	am.Logger.Info("Analytics manager destroyed")
}

// -----------------------------------------------------------------------------
// Socket Patches
// -----------------------------------------------------------------------------

func (am *AnalyticsManager) handleMessage(msg models.MSocketMessage) {
	am.mu.Lock()
	if !am.initialized {
		am.mu.Unlock()
		return
	}

	mutated := false
	switch msg.Type {
	case models.TopicPerformanceMetrics:
		var p models.MPerformanceMetricsPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			am.Logger.Warning("Bad performance_metrics payload: %v", err)
			break
		}
		am.snapshot.Performance = p.Metrics
		mutated = true

	case models.TopicTestResults:
		var p models.MTestResultsPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			am.Logger.Warning("Bad test_results payload: %v", err)
			break
		}
		am.snapshot.TestResults = append(am.snapshot.TestResults, p.Results...)
		mutated = true

	case models.TopicFeatureStatus:
		var p models.MFeatureStatusPayload
		if err := json.Unmarshal(msg.Data, &p); err != nil {
			am.Logger.Warning("Bad feature_status payload: %v", err)
			break
		}
		am.snapshot.Features[p.Status.ID] = p.Status
		mutated = true
	}

	if !mutated {
		am.mu.Unlock()
		return
	}

	am.snapshot.Version++
	am.snapshot.Metrics = analysis.ComputeAnalyticsMetrics(am.snapshot.TestResults, am.snapshot.Features, am.snapshot.Performance)
	am.snapshot.LastUpdated = time.Now().Unix()
	snap := am.snapshot
	am.mu.Unlock()

	am.broadcast(analyticsFeature, snap)
}

// -----------------------------------------------------------------------------
// Queries & Export
// -----------------------------------------------------------------------------

func (am *AnalyticsManager) Snapshot() models.MAnalyticsData {
	am.mu.Lock()
	defer am.mu.Unlock()
	return am.snapshot
}

// -----------------------------------------------------------------------------

func (am *AnalyticsManager) Export() ([]byte, error) {
	am.mu.Lock()
	snap := am.snapshot
	am.mu.Unlock()
	return json.MarshalIndent(snap, "", "  ")
}
