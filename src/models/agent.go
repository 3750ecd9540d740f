package models

// -----------------------------------------------------------------------------
// Agents Snapshot
// -----------------------------------------------------------------------------

// MAgent is one autonomous analysis agent reported by the backend.
type MAgent struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Role     string  `json:"role"`
	Status   string  `json:"status"` // "active", "idle", "offline"
	Load     float64 `json:"load"`   // 0..1
	LastSeen int64   `json:"last_seen"`
}

// -----------------------------------------------------------------------------

// MAgentMetrics are derived aggregates over the agent list.
type MAgentMetrics struct {
	TotalAgents  int     `json:"total_agents"`
	ActiveAgents int     `json:"active_agents"`
	AverageLoad  float64 `json:"average_load"`
}

// -----------------------------------------------------------------------------

// MAgentsData is the agents manager snapshot.
type MAgentsData struct {
	Agents      []MAgent      `json:"agents"`
	Metrics     MAgentMetrics `json:"metrics"`
	LastUpdated int64         `json:"last_updated"`
	Version     uint64        `json:"version"`
}
