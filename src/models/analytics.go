package models

// -----------------------------------------------------------------------------
// Analytics Snapshot
// -----------------------------------------------------------------------------

// MPerformanceMetrics is the backend-reported performance block.
type MPerformanceMetrics struct {
	RequestsPerSecond float64 `json:"requests_per_second"`
	AverageLatencyMs  float64 `json:"average_latency_ms"`
	ErrorRate         float64 `json:"error_rate"`
	UptimeSeconds     int64   `json:"uptime_seconds"`
}

// -----------------------------------------------------------------------------

// MTestResult is one finished backend test run.
type MTestResult struct {
	ID         string  `json:"id"`
	Suite      string  `json:"suite"`
	Passed     bool    `json:"passed"`
	DurationMs float64 `json:"duration_ms"`
	Timestamp  int64   `json:"timestamp"`
}

// -----------------------------------------------------------------------------

// MFeatureStatus is one backend feature toggle.
type MFeatureStatus struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
	Health  string `json:"health"`
}

// -----------------------------------------------------------------------------

// MAnalyticsMetrics are derived aggregates over test results and features.
type MAnalyticsMetrics struct {
	TotalTests       int     `json:"total_tests"`
	PassRate         float64 `json:"pass_rate"`
	AverageLatencyMs float64 `json:"average_latency_ms"`
	EnabledFeatures  int     `json:"enabled_features"`
}

// -----------------------------------------------------------------------------

// MAnalyticsData is the analytics manager snapshot.
type MAnalyticsData struct {
	Performance MPerformanceMetrics       `json:"performance"`
	TestResults []MTestResult             `json:"test_results"`
	Features    map[string]MFeatureStatus `json:"features"`
	Metrics     MAnalyticsMetrics         `json:"metrics"`
	LastUpdated int64                     `json:"last_updated"`
	Version     uint64                    `json:"version"`
}
