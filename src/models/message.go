package models

import "encoding/json"

// -----------------------------------------------------------------------------
// Socket Message Envelope
// -----------------------------------------------------------------------------

// Topic identifies the kind of a socket message. The set is closed: payloads
// are decoded per-topic at the socket boundary, never forwarded untyped.
type Topic string

const (
	TopicMarketData         Topic = "market_data"
	TopicCompanyUpdate      Topic = "company_update"
	TopicRealTimeUpdate     Topic = "real_time_update"
	TopicThreatAlert        Topic = "threat_alert"
	TopicPerformanceMetrics Topic = "performance_metrics"
	TopicTestResults        Topic = "test_results"
	TopicFeatureStatus      Topic = "feature_status"
	TopicSimulationUpdate   Topic = "simulation_update"
	TopicSimulationResult   Topic = "simulation_result"
	TopicSimulationProgress Topic = "simulation_progress"
)

// -----------------------------------------------------------------------------

// KnownTopics lists every topic the backend emits.
var KnownTopics = []Topic{
	TopicMarketData,
	TopicCompanyUpdate,
	TopicRealTimeUpdate,
	TopicThreatAlert,
	TopicPerformanceMetrics,
	TopicTestResults,
	TopicFeatureStatus,
	TopicSimulationUpdate,
	TopicSimulationResult,
	TopicSimulationProgress,
}

// -----------------------------------------------------------------------------

// IsKnownTopic reports whether t belongs to the closed topic set.
func IsKnownTopic(t Topic) bool {
	for _, k := range KnownTopics {
		if k == t {
			return true
		}
	}
	return false
}

// -----------------------------------------------------------------------------

// MSocketMessage is the wire envelope for every backend push.
// Data stays raw until the subscriber decodes it with the payload type
// matching the topic.
type MSocketMessage struct {
	Type      Topic           `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp,omitempty"`
}

// -----------------------------------------------------------------------------
// Per-Topic Payloads
// -----------------------------------------------------------------------------

// MMarketDataPayload replaces the dashboard market overview wholesale.
type MMarketDataPayload struct {
	Overview MMarketOverview `json:"overview"`
}

// MCompanyUpdatePayload merges into one company by id.
type MCompanyUpdatePayload struct {
	Company MCompany `json:"company"`
}

// MRealTimeUpdatePayload is prepended to the bounded live-updates list.
type MRealTimeUpdatePayload struct {
	Update MRealTimeUpdate `json:"update"`
}

// MThreatAlertPayload is a flagged live update.
type MThreatAlertPayload struct {
	Severity string `json:"severity"`
	Source   string `json:"source"`
	Message  string `json:"message"`
}

// MPerformanceMetricsPayload replaces the analytics performance block.
type MPerformanceMetricsPayload struct {
	Metrics MPerformanceMetrics `json:"metrics"`
}

// MTestResultsPayload appends finished test runs.
type MTestResultsPayload struct {
	Results []MTestResult `json:"results"`
}

// MFeatureStatusPayload updates one feature toggle by id.
type MFeatureStatusPayload struct {
	Status MFeatureStatus `json:"status"`
}

// MSimulationUpdatePayload merges one simulation by id.
type MSimulationUpdatePayload struct {
	Simulation MSimulation `json:"simulation"`
}

// MSimulationProgressPayload advances only the progress of one simulation.
type MSimulationProgressPayload struct {
	SimulationID string  `json:"simulation_id"`
	Progress     float64 `json:"progress"`
}

// MSimulationResultPayload finalizes a simulation and carries its outcome.
type MSimulationResultPayload struct {
	SimulationID string  `json:"simulation_id"`
	Outcome      string  `json:"outcome"`
	Confidence   float64 `json:"confidence"`
}
