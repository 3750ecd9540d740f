package analysis

import (
	"platform-observer/src/analysis/core"
	"platform-observer/src/models"
)

// -----------------------------------------------------------------------------
// Derived Metric Computation
// -----------------------------------------------------------------------------
// Every feature manager recomputes its aggregates through these functions
// immediately after mutating its entity list. The functions are pure so a
// fresh recomputation always matches the stored aggregates exactly.

// ComputeDashboardMetrics aggregates the company list.
func ComputeDashboardMetrics(companies []models.MCompany) models.MDashboardMetrics {
	caps := make([]float64, 0, len(companies))
	threats := make([]float64, 0, len(companies))
	risk := map[string]int{"low": 0, "medium": 0, "high": 0}

	for _, c := range companies {
		caps = append(caps, c.MarketCap)
		threats = append(threats, c.ThreatScore)
		risk[c.RiskLevel]++
	}

	return models.MDashboardMetrics{
		TotalCompanies:   len(companies),
		AverageMarketCap: core.Mean(caps),
		RiskDistribution: risk,
		AverageThreat:    core.Mean(threats),
	}
}

// -----------------------------------------------------------------------------

// ComputeAnalyticsMetrics aggregates test results and feature toggles.
func ComputeAnalyticsMetrics(results []models.MTestResult, features map[string]models.MFeatureStatus, perf models.MPerformanceMetrics) models.MAnalyticsMetrics {
	passed := 0
	for _, r := range results {
		if r.Passed {
			passed++
		}
	}

	enabled := 0
	for _, f := range features {
		if f.Enabled {
			enabled++
		}
	}

	return models.MAnalyticsMetrics{
		TotalTests:       len(results),
		PassRate:         core.Ratio(passed, len(results)),
		AverageLatencyMs: perf.AverageLatencyMs,
		EnabledFeatures:  enabled,
	}
}

// -----------------------------------------------------------------------------

// ComputeSimulationMetrics aggregates the run list.
func ComputeSimulationMetrics(sims []models.MSimulation) models.MSimulationMetrics {
	running := 0
	completed := 0
	confidences := make([]float64, 0, len(sims))

	for _, s := range sims {
		switch s.Status {
		case models.SimulationRunning:
			running++
		case models.SimulationCompleted:
			completed++
			confidences = append(confidences, s.Confidence)
		}
	}

	return models.MSimulationMetrics{
		TotalRuns:         len(sims),
		Running:           running,
		Completed:         completed,
		AverageConfidence: core.Mean(confidences),
	}
}

// -----------------------------------------------------------------------------

// ComputeAgentMetrics aggregates the agent list.
func ComputeAgentMetrics(agents []models.MAgent) models.MAgentMetrics {
	active := 0
	loads := make([]float64, 0, len(agents))

	for _, a := range agents {
		if a.Status == "active" {
			active++
		}
		loads = append(loads, a.Load)
	}

	return models.MAgentMetrics{
		TotalAgents:  len(agents),
		ActiveAgents: active,
		AverageLoad:  core.Mean(loads),
	}
}
