package analysis

import (
	"testing"

	"platform-observer/src/models"

	"github.com/stretchr/testify/assert"
)

// -----------------------------------------------------------------------------

func TestComputeDashboardMetrics(t *testing.T) {
	companies := []models.MCompany{
		{ID: "a", MarketCap: 14e9, RiskLevel: "low", ThreatScore: 0.2},
		{ID: "b", MarketCap: 45e9, RiskLevel: "medium", ThreatScore: 0.5},
		{ID: "c", MarketCap: 80e9, RiskLevel: "high", ThreatScore: 0.8},
		{ID: "d", MarketCap: 25e9, RiskLevel: "low", ThreatScore: 0.1},
		{ID: "e", MarketCap: 38e9, RiskLevel: "medium", ThreatScore: 0.4},
	}

	m := ComputeDashboardMetrics(companies)

	assert.Equal(t, 5, m.TotalCompanies)
	assert.InDelta(t, 40.4e9, m.AverageMarketCap, 1)
	assert.InDelta(t, 0.4, m.AverageThreat, 1e-9)
	assert.Equal(t, 2, m.RiskDistribution["low"])
	assert.Equal(t, 2, m.RiskDistribution["medium"])
	assert.Equal(t, 1, m.RiskDistribution["high"])
}

// -----------------------------------------------------------------------------

func TestComputeDashboardMetricsEmpty(t *testing.T) {
	m := ComputeDashboardMetrics(nil)

	assert.Equal(t, 0, m.TotalCompanies)
	assert.Zero(t, m.AverageMarketCap)
	assert.Zero(t, m.AverageThreat)
	// Risk buckets exist even when empty so consumers never nil-check.
	assert.Equal(t, 0, m.RiskDistribution["low"])
	assert.Equal(t, 0, m.RiskDistribution["medium"])
	assert.Equal(t, 0, m.RiskDistribution["high"])
}

// -----------------------------------------------------------------------------

func TestComputeAnalyticsMetrics(t *testing.T) {
	results := []models.MTestResult{
		{ID: "1", Passed: true},
		{ID: "2", Passed: true},
		{ID: "3", Passed: false},
		{ID: "4", Passed: true},
	}
	features := map[string]models.MFeatureStatus{
		"a": {ID: "a", Enabled: true},
		"b": {ID: "b", Enabled: false},
		"c": {ID: "c", Enabled: true},
	}
	perf := models.MPerformanceMetrics{AverageLatencyMs: 33}

	m := ComputeAnalyticsMetrics(results, features, perf)

	assert.Equal(t, 4, m.TotalTests)
	assert.InDelta(t, 0.75, m.PassRate, 1e-9)
	assert.InDelta(t, 33, m.AverageLatencyMs, 1e-9)
	assert.Equal(t, 2, m.EnabledFeatures)
}

// -----------------------------------------------------------------------------

func TestComputeAnalyticsMetricsNoTests(t *testing.T) {
	m := ComputeAnalyticsMetrics(nil, nil, models.MPerformanceMetrics{})
	assert.Zero(t, m.PassRate)
	assert.Zero(t, m.TotalTests)
}

// -----------------------------------------------------------------------------

func TestComputeSimulationMetricsAveragesCompletedOnly(t *testing.T) {
	sims := []models.MSimulation{
		{ID: "a", Status: models.SimulationCompleted, Confidence: 0.9},
		{ID: "b", Status: models.SimulationCompleted, Confidence: 0.5},
		{ID: "c", Status: models.SimulationRunning, Confidence: 0.99},
		{ID: "d", Status: models.SimulationFailed, Confidence: 0.01},
		{ID: "e", Status: models.SimulationPending},
	}

	m := ComputeSimulationMetrics(sims)

	assert.Equal(t, 5, m.TotalRuns)
	assert.Equal(t, 1, m.Running)
	assert.Equal(t, 2, m.Completed)
	assert.InDelta(t, 0.7, m.AverageConfidence, 1e-9)
}

// -----------------------------------------------------------------------------

func TestComputeAgentMetrics(t *testing.T) {
	agents := []models.MAgent{
		{ID: "a", Status: "active", Load: 0.5},
		{ID: "b", Status: "idle", Load: 0.1},
		{ID: "c", Status: "offline", Load: 0},
	}

	m := ComputeAgentMetrics(agents)

	assert.Equal(t, 3, m.TotalAgents)
	assert.Equal(t, 1, m.ActiveAgents)
	assert.InDelta(t, 0.2, m.AverageLoad, 1e-9)
}
