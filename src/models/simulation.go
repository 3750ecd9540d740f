package models

// -----------------------------------------------------------------------------
// Simulation Snapshot
// -----------------------------------------------------------------------------

// Simulation status values as reported by the backend.
const (
	SimulationPending   = "pending"
	SimulationRunning   = "running"
	SimulationCompleted = "completed"
	SimulationFailed    = "failed"
)

// -----------------------------------------------------------------------------

// MSimulation is one business simulation run.
type MSimulation struct {
	ID         string  `json:"id"`
	Scenario   string  `json:"scenario"`
	Status     string  `json:"status"`
	Progress   float64 `json:"progress"` // 0..100
	Confidence float64 `json:"confidence"`
	Outcome    string  `json:"outcome,omitempty"`
	StartedAt  int64   `json:"started_at"`
	FinishedAt int64   `json:"finished_at,omitempty"`
}

// -----------------------------------------------------------------------------

// MSimulationMetrics are derived aggregates over the run list.
type MSimulationMetrics struct {
	TotalRuns         int     `json:"total_runs"`
	Running           int     `json:"running"`
	Completed         int     `json:"completed"`
	AverageConfidence float64 `json:"average_confidence"`
}

// -----------------------------------------------------------------------------

// MSimulationHistory is the simulations manager snapshot.
type MSimulationHistory struct {
	Simulations []MSimulation      `json:"simulations"`
	Metrics     MSimulationMetrics `json:"metrics"`
	LastUpdated int64              `json:"last_updated"`
	Version     uint64             `json:"version"`
}

// -----------------------------------------------------------------------------

// MSimulationRequest launches a new run via POST /simulations.
type MSimulationRequest struct {
	Scenario string `json:"scenario"`
}
