package features

import (
	"time"

	"platform-observer/src/models"
)

// -----------------------------------------------------------------------------
// Built-In Default Datasets
// -----------------------------------------------------------------------------
// Fallback of last resort: used when both the backend and the snapshot
// cache are unavailable, so panels always render something instead of an
// empty or crashed state.

func defaultDashboardData() models.MDashboardData {
	now := time.Now().Unix()
	companies := []models.MCompany{
		{ID: "cmp-001", Name: "Meridian Dynamics", Sector: "Defense", MarketCap: 14e9, RiskLevel: "low", ThreatScore: 0.21, LastActivity: now},
		{ID: "cmp-002", Name: "Aurora Capital Group", Sector: "Finance", MarketCap: 45e9, RiskLevel: "medium", ThreatScore: 0.48, LastActivity: now},
		{ID: "cmp-003", Name: "Helios Semiconductor", Sector: "Technology", MarketCap: 80e9, RiskLevel: "high", ThreatScore: 0.77, LastActivity: now},
		{ID: "cmp-004", Name: "Northgate Logistics", Sector: "Supply Chain", MarketCap: 25e9, RiskLevel: "low", ThreatScore: 0.18, LastActivity: now},
		{ID: "cmp-005", Name: "Vantage Biotech", Sector: "Healthcare", MarketCap: 38e9, RiskLevel: "medium", ThreatScore: 0.52, LastActivity: now},
	}

	return models.MDashboardData{
		Companies: companies,
		Market: models.MMarketOverview{
			IndexValue:    4820.5,
			IndexChange:   0.3,
			Volatility:    14.2,
			Sentiment:     "neutral",
			TradingVolume: 3.1e9,
		},
		RealTimeUpdates: []models.MRealTimeUpdate{},
		LastUpdated:     now,
	}
}

// -----------------------------------------------------------------------------

func defaultAnalyticsData() models.MAnalyticsData {
	now := time.Now().Unix()
	return models.MAnalyticsData{
		Performance: models.MPerformanceMetrics{
			RequestsPerSecond: 120,
			AverageLatencyMs:  42,
			ErrorRate:         0.004,
			UptimeSeconds:     86400,
		},
		TestResults: []models.MTestResult{
			{ID: "tr-001", Suite: "regulatory-prophecy", Passed: true, DurationMs: 310, Timestamp: now},
			{ID: "tr-002", Suite: "sovereign-security", Passed: true, DurationMs: 270, Timestamp: now},
			{ID: "tr-003", Suite: "supply-chain", Passed: false, DurationMs: 890, Timestamp: now},
		},
		Features: map[string]models.MFeatureStatus{
			"quant":   {ID: "quant", Name: "Quantitative Engine", Enabled: true, Health: "healthy"},
			"streams": {ID: "streams", Name: "Stream Processing", Enabled: true, Health: "healthy"},
			"prophecy": {ID: "prophecy", Name: "Regulatory Prophecy", Enabled: false, Health: "degraded"},
		},
		LastUpdated: now,
	}
}

// -----------------------------------------------------------------------------

func defaultSimulationHistory() models.MSimulationHistory {
	now := time.Now().Unix()
	return models.MSimulationHistory{
		Simulations: []models.MSimulation{
			{ID: "sim-001", Scenario: "market-shock", Status: models.SimulationCompleted, Progress: 100, Confidence: 0.82, Outcome: "resilient", StartedAt: now - 3600, FinishedAt: now - 3000},
			{ID: "sim-002", Scenario: "supply-disruption", Status: models.SimulationRunning, Progress: 45, Confidence: 0, StartedAt: now - 600},
		},
		LastUpdated: now,
	}
}

// -----------------------------------------------------------------------------

func defaultAgentsData() models.MAgentsData {
	now := time.Now().Unix()
	return models.MAgentsData{
		Agents: []models.MAgent{
			{ID: "agt-001", Name: "Sentinel", Role: "threat-analysis", Status: "active", Load: 0.35, LastSeen: now},
			{ID: "agt-002", Name: "Oracle", Role: "forecasting", Status: "active", Load: 0.6, LastSeen: now},
			{ID: "agt-003", Name: "Archivist", Role: "intel-curation", Status: "idle", Load: 0.05, LastSeen: now},
		},
		LastUpdated: now,
	}
}
